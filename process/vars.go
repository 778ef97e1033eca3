package process

import (
	"fmt"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/zap"

	"ucc/color"
	"ucc/meta"
	"ucc/usercss"
)

// parseVarFlags turns "name=value" pairs into a map, last value wins.
func parseVarFlags(flags []string) (map[string]string, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	res := make(map[string]string, len(flags))
	for _, f := range flags {
		name, value, ok := strings.Cut(f, "=")
		name = strings.TrimSpace(name)
		if !ok || len(name) == 0 {
			return nil, fmt.Errorf("malformed variable assignment %q, expected name=value", f)
		}
		res[name] = value
	}
	return res, nil
}

// normalizeValue brings color values to canonical form in their own notation.
func normalizeValue(va *meta.Variable, value string, hexUppercase bool) string {
	if va.Type != meta.VarColor {
		return value
	}
	c, err := color.Parse(value)
	if err != nil {
		return value
	}
	return color.Format(c, c.Type, color.FormatOptions{HexUppercase: hexUppercase})
}

// applyOverrides sets requested variable values on the style. Unknown names
// and values not matching variable declaration are reported and ignored.
func applyOverrides(style *usercss.Style, vars map[string]string, hexUppercase bool, log *zap.Logger) {
	if len(vars) == 0 || style.Meta == nil {
		return
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))

	for _, name := range names {
		va, ok := style.Meta.Vars.Get(name)
		if !ok {
			log.Warn("Style does not declare variable, ignoring", zap.String("style", style.Name), zap.String("var", name))
			continue
		}
		value := normalizeValue(va, vars[name], hexUppercase)
		check := va.Clone()
		check.SetValue(value)
		if err := meta.ValidateVar(check); err != nil {
			log.Warn("Invalid variable value, ignoring", zap.String("style", style.Name), zap.String("var", name), zap.String("value", value), zap.Error(err))
			continue
		}
		va.SetValue(value)
	}
}
