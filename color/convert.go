package color

import "math"

// HSV is the intermediate representation used for all cross-space
// conversions. S and V are in [0, 1], H in [0, 360).
type HSV struct {
	H, S, V  float64
	A        float64
	HasAlpha bool
}

// ConstrainHue normalizes hue into [0, 360).
func ConstrainHue(h float64) float64 {
	switch {
	case h < 0:
		h = math.Mod(h, 360) + 360
		if h >= 360 {
			h = 0
		}
	case h >= 360:
		h = math.Mod(h, 360)
	}
	return h
}

// SnapToInt rounds num to an integer when it is within 1e-3 of one.
func SnapToInt(num float64) float64 {
	i := jsRound(num)
	if math.Abs(i-num) < 1e-3 {
		return i
	}
	return num
}

func RGBToHSV(c Color) HSV {
	r, g, b := c.R/255, c.G/255, c.B/255
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	delta := maxC - minC

	var h float64
	switch {
	case delta == 0:
		h = 0
	case maxC == r:
		h = 60 * math.Mod((g-b)/delta, 6)
	case maxC == g:
		h = 60 * ((b-r)/delta + 2)
	default:
		h = 60 * ((r-g)/delta + 4)
	}

	hsv := HSV{H: ConstrainHue(h), V: maxC, A: c.A, HasAlpha: c.HasAlpha}
	if maxC != 0 {
		hsv.S = delta / maxC
	}
	return hsv
}

func HSVToRGB(hsv HSV) Color {
	h := ConstrainHue(hsv.H)
	c := hsv.S * hsv.V
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := hsv.V - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return Color{
		Type:     TypeRGB,
		R:        SnapToInt(jsRound((r + m) * 255)),
		G:        SnapToInt(jsRound((g + m) * 255)),
		B:        SnapToInt(jsRound((b + m) * 255)),
		A:        hsv.A,
		HasAlpha: hsv.HasAlpha,
	}
}

func HSLToHSV(c Color) HSV {
	l := c.L
	if l >= 50 {
		l = 100 - l
	}
	t := c.S * l / 100
	hsv := HSV{H: ConstrainHue(c.H), V: (t + c.L) / 100, A: c.A, HasAlpha: c.HasAlpha}
	if t+c.L != 0 {
		hsv.S = 200 * t / (t + c.L) / 100
	}
	return hsv
}

func HSVToHSL(hsv HSV) Color {
	l := (2 - hsv.S) * hsv.V / 2
	t := 2 - l*2
	if l < .5 {
		t = l * 2
	}
	c := Color{Type: TypeHSL, H: ConstrainHue(hsv.H), L: l * 100, A: hsv.A, HasAlpha: hsv.HasAlpha}
	if t != 0 {
		c.S = hsv.S * hsv.V / t * 100
	}
	return c
}

func HWBToHSV(c Color) HSV {
	w := constrain(0, 100, c.W) / 100
	b := constrain(0, 100, c.K) / 100
	hsv := HSV{H: ConstrainHue(c.H), V: 1 - b, A: c.A, HasAlpha: c.HasAlpha}
	if b != 1 {
		hsv.S = 1 - w/(1-b)
	}
	return hsv
}

func HSVToHWB(hsv HSV) Color {
	return Color{
		Type:     TypeHWB,
		H:        ConstrainHue(hsv.H),
		W:        (1 - hsv.S) * hsv.V * 100,
		K:        (1 - hsv.V) * 100,
		A:        hsv.A,
		HasAlpha: hsv.HasAlpha,
	}
}

// ToHSV converts c from its own color space to HSV.
func ToHSV(c Color) HSV {
	switch c.Type {
	case TypeHSL:
		return HSLToHSV(c)
	case TypeHWB:
		return HWBToHSV(c)
	default:
		return RGBToHSV(c)
	}
}

// FromHSV converts hsv into color of requested type. Hex produces RGB
// channels tagged as hex.
func FromHSV(hsv HSV, to Type) Color {
	switch to {
	case TypeHSL:
		return HSVToHSL(hsv)
	case TypeHWB:
		return HSVToHWB(hsv)
	default:
		c := HSVToRGB(hsv)
		c.Type = to
		return c
	}
}

func constrain(lo, hi, v float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
