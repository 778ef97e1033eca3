package meta

import (
	"math"
	"net/url"
	"regexp"
	"slices"
	"strconv"

	"ucc/color"
)

var reVersion = regexp.MustCompile(`^v?\d+(\.\d+)*(?:-(\w[-\w]*(\.[-\w]+)*))?(?:\+(\w[-\w]*(\.[-\w]+)*))?$`)

// Units lists CSS units accepted for number and range variables.
var Units = []string{
	"em", "ex", "cap", "ch", "ic", "rem", "lh", "rlh", "vw", "vh", "vi", "vb", "vmin", "vmax",
	"cm", "mm", "Q", "in", "pt", "pc", "px", "deg", "grad", "rad", "turn", "s", "ms", "Hz", "kHz",
	"dpi", "dpcm", "dppx", "%",
}

func validateVersion(v string) (string, error) {
	if !reVersion.MatchString(v) {
		return "", newError(CodeInvalidVersion, noIndex, "Invalid version: "+v, v)
	}
	if len(v) > 0 && (v[0] == 'v' || v[0] == '=') {
		v = v[1:]
	}
	return v, nil
}

func validateURL(v string) error {
	u, err := url.Parse(v)
	if err != nil || len(u.Scheme) == 0 {
		return newError(CodeInvalidURL, noIndex, "Invalid URL: "+v, v)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return newError(CodeInvalidURLProtocol, noIndex, "Invalid protocol: "+u.Scheme+":", u.Scheme+":")
	}
	return nil
}

func validatePreprocessor(v string) error {
	if !slices.Contains(Preprocessors, v) {
		return newError(CodeUnknownPreprocessor, noIndex, "Unknown preprocessor: "+v, v)
	}
	return nil
}

// validateVar checks value against variable declaration and returns its
// normalized form.
func validateVar(va *Variable, value string) (string, error) {
	switch va.Type {
	case VarCheckbox:
		if value != "0" && value != "1" {
			return "", newError(CodeInvalidCheckboxDefault, noIndex, "value must be 0 or 1")
		}
	case VarNumber, VarRange:
		if err := validateRange(va, value); err != nil {
			return "", err
		}
	case VarSelect:
		if _, ok := va.Option(value); !ok {
			return "", newError(CodeInvalidSelectValueMismatch, noIndex, "value must be one of the options", value)
		}
	case VarColor:
		c, err := color.Parse(value)
		if err != nil {
			return "", newError(CodeInvalidColor, noIndex, "Invalid color: "+value, value)
		}
		return color.Format(c, c.Type, color.FormatOptions{}), nil
	}
	return value, nil
}

func validateRange(va *Variable, value string) error {
	typ := string(va.Type)
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return newError(CodeInvalidRangeDefault, noIndex, "the default value of @var "+typ+" must be a number", typ)
	}
	if va.Min != nil && v < *va.Min {
		return newError(CodeInvalidRangeMin, noIndex, "the value is smaller than the minimum", typ)
	}
	if va.Max != nil && v > *va.Max {
		return newError(CodeInvalidRangeMax, noIndex, "the value is larger than the maximum", typ)
	}
	if va.Step != nil {
		for _, n := range []*float64{&v, va.Min, va.Max} {
			if n != nil && !isMultipleOf(*n, *va.Step) {
				return newError(CodeInvalidRangeStep, noIndex, "the value is not a multiple of the step", typ)
			}
		}
	}
	if len(va.Units) > 0 && !slices.Contains(Units, va.Units) {
		return newError(CodeInvalidRangeUnits, noIndex, "Invalid CSS unit: "+va.Units, typ, va.Units)
	}
	return nil
}

// isMultipleOf tolerates the precision loss of float division, float64
// reliably keeps 15 decimal digits some of which the integer part occupies.
func isMultipleOf(value, step float64) bool {
	if step == 0 {
		return false
	}
	n := math.Abs(value / step)
	nInt := math.Floor(n + .5)
	digits := len(strconv.FormatFloat(nInt, 'f', -1, 64))
	return math.Abs(n-nInt) < math.Pow(10, float64(digits-16))
}

// ValidateVar checks current value of the variable against its declaration.
// Variables without a value are always valid.
func ValidateVar(va *Variable) error {
	if va.Value == nil {
		return nil
	}
	_, err := validateVar(va, *va.Value)
	return err
}

// NullifyInvalidVars resets values which no longer match their declaration so
// default is used instead. Consistent values are left alone.
func NullifyInvalidVars(vars *Vars) *Vars {
	for _, va := range vars.All() {
		if ValidateVar(va) != nil {
			va.Value = nil
		}
	}
	return vars
}
