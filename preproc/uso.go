package preproc

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"ucc/color"
	"ucc/meta"
)

// placeholder with optional inline alpha: /*[[name]]*/ or /*[[name]]*/80
var rePlaceholder = regexp.MustCompile(`/\*\[\[([\w-]+)\]\]\*/([0-9a-fA-F]{2})?`)

const rgbSuffix = "-rgb"

// Uso replaces /*[[name]]*/ placeholders in place, no compiler is involved.
type Uso struct {
	log *zap.Logger
}

func (*Uso) Name() string { return NameUso }

func (e *Uso) Pre(_ context.Context, source string, vars Values) (string, error) {
	r := &usoReplacer{log: e.log, vars: vars, pool: make(map[string]*string)}
	return r.replace(source), nil
}

// usoReplacer lives for a single compilation, pool memoizes substitutions.
type usoReplacer struct {
	log  *zap.Logger
	vars Values
	pool map[string]*string
}

func isWordByte(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

func (r *usoReplacer) replace(text string) string {
	matches := rePlaceholder.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		cmtEnd, end := m[1], m[1]
		name := text[m[2]:m[3]]
		alpha := ""
		if m[4] >= 0 {
			cmtEnd = m[4]
			// inline alpha must be followed by non word character
			if m[5] < len(text) && !isWordByte(text[m[5]]) {
				alpha = text[m[4]:m[5]]
			} else {
				end = cmtEnd
			}
		}

		key := name
		if len(alpha) > 0 {
			key = name + "[A]"
		}
		val, ok := r.pool[key]
		if !ok {
			val = r.value(name, false, alpha)
			r.pool[key] = val
		}

		b.WriteString(text[last:m[0]])
		if val != nil {
			b.WriteString(*val)
		} else {
			r.log.Debug("Unknown placeholder left in place", zap.String("name", name))
			b.WriteString(text[m[0]:cmtEnd])
		}
		b.WriteString(alpha)
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

// value returns substitution for the variable or nil when there is none.
func (r *usoReplacer) value(name string, usoRgb bool, alpha string) *string {
	v, ok := r.vars.Lookup(name)
	if !ok {
		if strings.HasSuffix(name, rgbSuffix) {
			return r.value(strings.TrimSuffix(name, rgbSuffix), true, "")
		}
		return nil
	}
	value := v.Value
	switch v.Type {
	case meta.VarColor:
		c, err := color.Parse(value)
		if err != nil {
			r.log.Debug("Color variable does not parse", zap.String("name", name), zap.String("value", value), zap.Error(err))
			return nil
		}
		// inline alpha replaces the one of the color
		if len(alpha) > 0 {
			c = c.WithoutAlpha()
		}
		isRgb := usoRgb || c.Type == color.TypeRGB || (c.HasAlpha && c.A != 1)
		to := color.TypeHex
		if isRgb {
			to = color.TypeRGB
		}
		value = color.Format(c, to, color.FormatOptions{UsoMode: usoRgb || !isRgb})
	case meta.VarSelect, meta.VarDropdown:
		// self references resolve to empty string
		empty := ""
		r.pool[name] = &empty
		value = r.replace(value)
	}
	return &value
}
