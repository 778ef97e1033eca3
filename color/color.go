// Package color parses and formats CSS color literals and converts between
// RGB, HSV, HSL and HWB color spaces.
package color

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrNotColor is returned when text does not look like a color at all.
	ErrNotColor = errors.New("not a color")
	// ErrInvalid is returned when text looks like a color but fails validation.
	ErrInvalid = errors.New("invalid color")
)

// Type is the textual representation color was parsed from or should be
// formatted to.
type Type int

const (
	TypeHex Type = iota
	TypeRGB
	TypeHSL
	TypeHWB
)

func (t Type) String() string {
	switch t {
	case TypeHex:
		return "hex"
	case TypeRGB:
		return "rgb"
	case TypeHSL:
		return "hsl"
	case TypeHWB:
		return "hwb"
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

// ParseType converts name into Type.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(name) {
	case "hex":
		return TypeHex, nil
	case "rgb":
		return TypeRGB, nil
	case "hsl":
		return TypeHSL, nil
	case "hwb":
		return TypeHWB, nil
	}
	return 0, errors.New("unknown color type: " + name)
}

// Color is a parsed color value. Channels used depend on Type: R, G, B for
// hex and rgb; H, S, L for hsl; H, W, K for hwb. A is meaningful only when
// HasAlpha is set.
type Color struct {
	Type     Type
	R, G, B  float64
	H, S, L  float64
	W, K     float64
	A        float64
	HasAlpha bool
}

// WithoutAlpha returns copy of c with alpha channel removed.
func (c Color) WithoutAlpha() Color {
	c.A, c.HasAlpha = 0, false
	return c
}

// Parse parses CSS color text. It returns ErrNotColor when text has no
// recognizable color syntax and ErrInvalid when it does but the values are
// malformed or out of range.
func Parse(text string) (Color, error) {
	s := strings.TrimSpace(text)
	switch {
	case len(s) == 0:
		return Color{}, ErrNotColor
	case s[0] == '#':
		return parseHex(s)
	case strings.HasSuffix(s, ")"):
		if fn, body, ok := splitFunc(s); ok {
			return parseFunc(fn, body)
		}
	}
	if c, ok := named[s]; ok {
		return c, nil
	}
	return Color{}, ErrNotColor
}

// IsNamed reports whether name is a known color keyword.
func IsNamed(name string) bool {
	_, ok := named[name]
	return ok
}

func hexDigit(c byte) (int, bool) {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0'), true
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10, true
	case 'A' <= c && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}

func parseHex(s string) (Color, error) {
	digits := s[1:]
	vals := make([]int, len(digits))
	for i := 0; i < len(digits); i++ {
		v, ok := hexDigit(digits[i])
		if !ok {
			return Color{}, ErrInvalid
		}
		vals[i] = v
	}

	c := Color{Type: TypeHex}
	switch len(vals) {
	case 3, 4:
		c.R, c.G, c.B = float64(vals[0]*0x11), float64(vals[1]*0x11), float64(vals[2]*0x11)
		if len(vals) == 4 {
			c.A, c.HasAlpha = float64(vals[3]*0x11)/255, true
		}
	case 6, 8:
		c.R = float64(vals[0]<<4 | vals[1])
		c.G = float64(vals[2]<<4 | vals[3])
		c.B = float64(vals[4]<<4 | vals[5])
		if len(vals) == 8 {
			c.A, c.HasAlpha = float64(vals[6]<<4|vals[7])/255, true
		}
	default:
		return Color{}, ErrInvalid
	}
	return c, nil
}

// splitFunc recognizes rgb(a), hsl(a) and hwb function syntax.
func splitFunc(s string) (string, string, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return "", "", false
	}
	fn := strings.ToLower(s[:open])
	switch fn {
	case "rgb", "rgba":
		fn = "rgb"
	case "hsl", "hsla":
		fn = "hsl"
	case "hwb":
	default:
		return "", "", false
	}
	return fn, s[open+1 : len(s)-1], true
}

// number is a single numeric component with its optional unit.
type number struct {
	val  float64
	unit string
	none bool
}

func parseNumber(tok string) (number, bool) {
	if strings.EqualFold(tok, "none") {
		return number{none: true}, true
	}
	i := 0
	if i < len(tok) && (tok[i] == '+' || tok[i] == '-') {
		i++
	}
	digits := 0
	for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
		i++
		digits++
	}
	if i < len(tok) && tok[i] == '.' {
		i++
		for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return number{}, false
	}
	if i < len(tok) && (tok[i] == 'e' || tok[i] == 'E') {
		j := i + 1
		if j < len(tok) && (tok[j] == '+' || tok[j] == '-') {
			j++
		}
		k := j
		for k < len(tok) && tok[k] >= '0' && tok[k] <= '9' {
			k++
		}
		if k > j {
			i = k
		}
	}
	v, err := strconv.ParseFloat(tok[:i], 64)
	if err != nil {
		return number{}, false
	}
	return number{val: v, unit: strings.ToLower(tok[i:])}, true
}

// splitArgs splits function body into three components and optional alpha,
// accepting both legacy comma and modern space separated syntax.
func splitArgs(body string) ([]string, string, bool) {
	body = strings.TrimSpace(body)
	if strings.Contains(body, ",") {
		parts := strings.Split(body, ",")
		if len(parts) != 3 && len(parts) != 4 {
			return nil, "", false
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
			if len(parts[i]) == 0 || strings.ContainsAny(parts[i], " \t\n\r\f/") {
				return nil, "", false
			}
		}
		if len(parts) == 4 {
			return parts[:3], parts[3], true
		}
		return parts, "", true
	}

	var alpha string
	if before, after, found := strings.Cut(body, "/"); found {
		alpha = strings.TrimSpace(after)
		if len(alpha) == 0 || strings.ContainsAny(alpha, " \t\n\r\f/") {
			return nil, "", false
		}
		body = before
	}
	parts := strings.Fields(body)
	if len(parts) != 3 {
		return nil, "", false
	}
	return parts, alpha, true
}

var angleToDeg = map[string]float64{
	"":     1,
	"deg":  1,
	"grad": 360.0 / 400,
	"rad":  180 / math.Pi,
	"turn": 360,
}

func parseFunc(fn, body string) (Color, error) {
	parts, alpha, ok := splitArgs(body)
	if !ok {
		return Color{}, ErrInvalid
	}

	nums := make([]number, len(parts))
	for i, p := range parts {
		if nums[i], ok = parseNumber(p); !ok {
			return Color{}, ErrInvalid
		}
		if nums[i].none && fn != "hwb" {
			return Color{}, ErrInvalid
		}
	}

	var c Color
	if len(alpha) > 0 {
		a, ok := parseNumber(alpha)
		if !ok {
			return Color{}, ErrInvalid
		}
		switch {
		case a.none && fn == "hwb":
			a.val = 0
		case a.none:
			return Color{}, ErrInvalid
		case a.unit == "%":
			if a.val < 0 || a.val > 100 {
				return Color{}, ErrInvalid
			}
			a.val /= 100
		case a.unit == "":
			if a.val < 0 || a.val > 1 {
				return Color{}, ErrInvalid
			}
		default:
			return Color{}, ErrInvalid
		}
		c.A, c.HasAlpha = a.val, true
	}

	switch fn {
	case "rgb":
		c.Type = TypeRGB
		pct := nums[0].unit == "%"
		ch := make([]float64, 3)
		for i, n := range nums {
			switch {
			case pct && n.unit == "%":
				if n.val < 0 || n.val > 100 {
					return Color{}, ErrInvalid
				}
				ch[i] = jsRound(n.val * 2.55)
			case !pct && n.unit == "":
				if n.val < 0 || n.val > 255 {
					return Color{}, ErrInvalid
				}
				ch[i] = jsRound(n.val)
			default:
				return Color{}, ErrInvalid
			}
		}
		c.R, c.G, c.B = ch[0], ch[1], ch[2]
	case "hsl", "hwb":
		k, known := angleToDeg[nums[0].unit]
		if !known {
			return Color{}, ErrInvalid
		}
		c.H = ConstrainHue(nums[0].val * k)
		ch := make([]float64, 2)
		for i, n := range nums[1:] {
			if n.none {
				continue
			}
			if n.unit != "%" || n.val < 0 || n.val > 100 {
				return Color{}, ErrInvalid
			}
			ch[i] = n.val
		}
		if fn == "hsl" {
			c.Type, c.S, c.L = TypeHSL, ch[0], ch[1]
		} else {
			c.Type, c.W, c.K = TypeHWB, ch[0], ch[1]
		}
	}
	return c, nil
}

// jsRound rounds half up.
func jsRound(v float64) float64 {
	return math.Floor(v + 0.5)
}
