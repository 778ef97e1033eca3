package color

import (
	"math"
	"strconv"
	"strings"
)

// AlphaDigits is the number of decimal digits alpha is rounded to.
const AlphaDigits = 3

// FormatOptions tweak Format output.
type FormatOptions struct {
	HexUppercase bool
	// UsoMode keeps hex unshortened and renders rgb as bare "r, g, b".
	UsoMode bool
	// Round rounds hsl and hwb channels to integers.
	Round bool
}

// FormatAlpha renders alpha with AlphaDigits precision, dropping the leading
// zero before a nonzero fraction and insignificant trailing zeros. Fully
// opaque alpha renders as an empty string.
func FormatAlpha(a float64) string {
	if math.IsNaN(a) {
		return ""
	}
	s := strconv.FormatFloat(a+.5*math.Pow(10, -AlphaDigits), 'f', AlphaDigits+1, 64)
	s = s[:len(s)-1]

	if strings.HasPrefix(s, "1.") && strings.Trim(s[2:], "0") == "" {
		return ""
	}
	if len(s) > 2 && s[0] == '0' && s[1] == '.' && s[2] >= '1' && s[2] <= '9' {
		s = s[1:]
	}
	if t := strings.TrimRight(s, "0"); len(t) < len(s) {
		s = strings.TrimSuffix(t, ".")
	}
	return s
}

// Format renders c as text of requested type. Alpha is included only when
// c carries one and it is not fully opaque.
func Format(c Color, to Type, opts FormatOptions) string {
	var aFmt string
	if c.HasAlpha {
		aFmt = FormatAlpha(c.A)
	}
	aStr := ""
	if len(aFmt) > 0 {
		aStr = ", " + aFmt
	}

	if convType(c.Type) != convType(to) {
		c = FromHSV(ToHSV(c), to)
	}
	round := func(v float64) string { return jsNumber(v) }
	if opts.Round {
		round = func(v float64) string { return jsNumber(jsRound(v)) }
	}

	switch to {
	case TypeHex:
		res := "#" + hex2(c.R) + hex2(c.G) + hex2(c.B)
		if len(aStr) > 0 {
			res += hex2(jsRound(c.A * 255))
		}
		if !opts.UsoMode {
			res = shortenHex(res)
		}
		if opts.HexUppercase {
			res = strings.ToUpper(res)
		}
		return res
	case TypeRGB:
		rgb := jsNumber(jsRound(c.R)) + ", " + jsNumber(jsRound(c.G)) + ", " + jsNumber(jsRound(c.B))
		if opts.UsoMode {
			return rgb
		}
		if len(aStr) > 0 {
			return "rgba(" + rgb + aStr + ")"
		}
		return "rgb(" + rgb + ")"
	case TypeHSL:
		fn := "hsl("
		if len(aStr) > 0 {
			fn = "hsla("
		}
		return fn + round(c.H) + ", " + round(c.S) + "%, " + round(c.L) + "%" + aStr + ")"
	case TypeHWB:
		res := "hwb(" + round(c.H) + " " + round(c.W) + "% " + round(c.K) + "%"
		if len(aFmt) > 0 {
			res += " / " + aFmt
		}
		return res + ")"
	}
	return ""
}

// convType maps hex onto rgb since both share channels.
func convType(t Type) Type {
	if t == TypeHex {
		return TypeRGB
	}
	return t
}

func hex2(v float64) string {
	n := int(jsRound(v))
	n = max(0, min(255, n))
	const digits = "0123456789abcdef"
	return string([]byte{digits[n>>4], digits[n&0xf]})
}

// shortenHex collapses #aabbcc and #aabbccdd into #abc and #abcd.
func shortenHex(s string) string {
	if len(s) != 7 && len(s) != 9 {
		return s
	}
	short := []byte{'#'}
	for i := 1; i < len(s); i += 2 {
		if s[i] != s[i+1] {
			return s
		}
		short = append(short, s[i])
	}
	return string(short)
}

// jsNumber renders v the shortest way that round trips, without exponent for
// the magnitudes colors use.
func jsNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
