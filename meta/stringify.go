package meta

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Stringify formats.
const (
	FormatStylus = "stylus"
	FormatXStyle = "xstyle"
)

type StringifyOptions struct {
	// Format selects variable syntax: @var (stylus) or @advanced (xstyle).
	Format    string
	AlignKeys bool
	// Space is indentation of multi line values.
	Space int
}

// Stringify writes metadata back as ==UserStyle== comment block.
func Stringify(md *Metadata, opts StringifyOptions) (string, error) {
	var varKey string
	switch opts.Format {
	case FormatStylus, "":
		opts.Format, varKey = FormatStylus, keyVar
	case FormatXStyle:
		varKey = keyAdvanced
	default:
		return "", fmt.Errorf("unsupported metadata format %q", opts.Format)
	}

	type line struct{ key, text string }
	var lines []line
	for _, k := range []string{"name", "namespace", "version", "author", "description",
		"homepageURL", "supportURL", "updateURL", "license", "preprocessor"} {
		v := *md.field(k)
		if len(v) == 0 {
			continue
		}
		if strings.IndexByte(v, '\n') >= 0 {
			v = jsonString(v)
		}
		lines = append(lines, line{k, v})
	}
	for _, va := range md.Vars.All() {
		lines = append(lines, line{varKey, stringifyVar(va, opts)})
	}

	width := 0
	if opts.AlignKeys {
		for _, l := range lines {
			width = max(width, len(l.key))
		}
	}
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("@" + l.key)
		if pad := width - len(l.key); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		b.WriteString(" " + l.text)
	}
	return "/* ==UserStyle==\n" + strings.ReplaceAll(b.String(), "*/", `*\/`) + "\n==/UserStyle== */", nil
}

func stringifyVar(va *Variable, opts StringifyOptions) string {
	typ := va.Type
	if opts.Format == FormatXStyle && typ == VarSelect {
		typ = VarDropdown
	}
	return string(typ) + " " + va.Name + " " + jsonString(va.Label) + " " + stringifyDefault(va, opts)
}

func stringifyDefault(va *Variable, opts StringifyOptions) string {
	pad := strings.Repeat(" ", opts.Space)
	switch {
	case len(va.Options) > 0 && opts.Format == FormatStylus:
		var b strings.Builder
		b.WriteString("{")
		for i, o := range va.Options {
			if i > 0 {
				b.WriteString(",")
			}
			key := o.Name + ":" + o.Label
			if o.Name == va.Default {
				key += "*"
			}
			if opts.Space > 0 {
				b.WriteString("\n" + pad + jsonString(key) + ": " + jsonString(o.Value))
			} else {
				b.WriteString(jsonString(key) + ":" + jsonString(o.Value))
			}
		}
		if opts.Space > 0 {
			b.WriteString("\n")
		}
		b.WriteString("}")
		return b.String()
	case len(va.Options) > 0:
		lines := make([]string, 0, len(va.Options))
		for _, o := range va.Options {
			value := "<<<EOT\n" + o.Value + " EOT;"
			if va.Type == VarImage {
				value = jsonString(o.Value)
			}
			label := o.Label
			if o.Name == va.Default {
				label += "*"
			}
			lines = append(lines, pad+o.Name+" "+jsonString(label)+" "+value)
		}
		return "{\n" + strings.Join(lines, "\n") + "\n}"
	case va.Type == VarText && opts.Format == FormatXStyle:
		return jsonString(va.Default)
	case va.Type.Numeric():
		parts := []string{va.Default, jsonFloat(va.Min), jsonFloat(va.Max), jsonFloat(va.Step)}
		if len(va.Default) == 0 {
			parts[0] = "null"
		}
		if len(va.Units) > 0 {
			parts = append(parts, jsonString(va.Units))
		}
		return "[" + strings.Join(parts, ",") + "]"
	}
	return va.Default
}

func jsonFloat(f *float64) string {
	if f == nil {
		return "null"
	}
	return formatNumber(*f)
}

// jsonString quotes s the way JSON.stringify does, without HTML escaping.
func jsonString(s string) string {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
