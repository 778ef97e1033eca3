package meta_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"

	"go.uber.org/multierr"

	"ucc/meta"
)

const full = `/* ==UserStyle==
@name        Dark Mode
@namespace   example.com
@version     v1.2.0
@author      Jane <jane@example.com>
@license     MIT
@preprocessor stylus
@var checkbox dark "Dark" 1
@var color accent "Accent" #ff0000
@var text font "Font" 'Arial'
@var range size "Size" [12, 8, 32, 2, "px"]
@var select theme "Theme" {"light:Light": "#fff", "dark:Dark*": "#000"}
@var number op "Opacity" 0.5
==/UserStyle== */`

func mustParse(t *testing.T, text string) *meta.Metadata {
	t.Helper()
	md, err := meta.Parse(text, 0)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return md
}

func mustVar(t *testing.T, md *meta.Metadata, name string) *meta.Variable {
	t.Helper()
	va, ok := md.Vars.Get(name)
	if !ok {
		t.Fatalf("variable %q not found, have %v", name, md.Vars.Names())
	}
	return va
}

func TestParse(t *testing.T) {
	md := mustParse(t, full)

	if md.Name != "Dark Mode" || md.Namespace != "example.com" || md.Version != "1.2.0" {
		t.Errorf("unexpected mandatory fields: %+v", md)
	}
	if md.Author != "Jane <jane@example.com>" || md.License != "MIT" || md.Preprocessor != "stylus" {
		t.Errorf("unexpected optional fields: %+v", md)
	}
	if got, want := md.Vars.Names(), []string{"dark", "accent", "font", "size", "theme", "op"}; !slices.Equal(got, want) {
		t.Fatalf("var order = %v, want %v", got, want)
	}

	tests := []struct {
		name string
		typ  meta.VarType
		def  string
	}{
		{"dark", meta.VarCheckbox, "1"},
		{"accent", meta.VarColor, "#f00"},
		{"font", meta.VarText, "Arial"},
		{"size", meta.VarRange, "12"},
		{"theme", meta.VarSelect, "dark"},
		{"op", meta.VarNumber, "0.5"},
	}
	for _, tt := range tests {
		va := mustVar(t, md, tt.name)
		if va.Type != tt.typ || va.Default != tt.def || va.Value != nil {
			t.Errorf("var %s = {%s %q %v}, want {%s %q <nil>}", tt.name, va.Type, va.Default, va.Value, tt.typ, tt.def)
		}
	}

	size := mustVar(t, md, "size")
	if size.Min == nil || *size.Min != 8 || size.Max == nil || *size.Max != 32 || size.Step == nil || *size.Step != 2 || size.Units != "px" {
		t.Errorf("unexpected range props: %+v", size)
	}
	if op := mustVar(t, md, "op"); op.Min != nil || op.Max != nil || op.Step != nil {
		t.Errorf("number without range has bounds: %+v", op)
	}

	theme := mustVar(t, md, "theme")
	want := []meta.Option{
		{Name: "light", Label: "Light", Value: "#fff"},
		{Name: "dark", Label: "Dark", Value: "#000"},
	}
	if !reflect.DeepEqual(theme.Options, want) {
		t.Errorf("options = %+v, want %+v", theme.Options, want)
	}
}

func TestParseAdvanced(t *testing.T) {
	md := mustParse(t, `/* ==UserStyle==
@name x
@namespace y
@version 1
@advanced dropdown font "Font" {
  sans "Sans*" <<<EOT
  Arial, sans-serif EOT;
  serif "Serif" <<<EOT Georgia EOT;
}
@advanced color c "Color" #112233
@advanced image bg "Background" {
  none "None" ""
  cats "Cats" "http://x/cats.png"
}
==/UserStyle== */`)

	if md.Preprocessor != "uso" {
		t.Errorf("preprocessor = %q, want uso", md.Preprocessor)
	}

	font := mustVar(t, md, "font")
	if font.Type != meta.VarSelect {
		t.Errorf("dropdown type = %s, want select", font.Type)
	}
	if font.Default != "sans" {
		t.Errorf("dropdown default = %q, want sans", font.Default)
	}
	want := []meta.Option{
		{Name: "sans", Label: "Sans", Value: "Arial, sans-serif"},
		{Name: "serif", Label: "Serif", Value: "Georgia"},
	}
	if !reflect.DeepEqual(font.Options, want) {
		t.Errorf("dropdown options = %+v, want %+v", font.Options, want)
	}

	if c := mustVar(t, md, "c"); c.Default != "#123" {
		t.Errorf("color default = %q, want #123", c.Default)
	}

	bg := mustVar(t, md, "bg")
	if bg.Type != meta.VarImage || bg.Default != "none" || len(bg.Options) != 2 || bg.Options[1].Value != "http://x/cats.png" {
		t.Errorf("unexpected image var: %+v", bg)
	}
}

func TestParseMissingMandatory(t *testing.T) {
	_, err := meta.Parse("/*==UserStyle==\n@namespace foo\n@version 1\n==/UserStyle==*/", 0)
	var pe *meta.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Parse() error = %v, want *ParseError", err)
	}
	if pe.Code != meta.CodeMissingMandatory {
		t.Errorf("code = %s, want %s", pe.Code, meta.CodeMissingMandatory)
	}
	if !slices.Equal(pe.Args, []string{"name"}) {
		t.Errorf("args = %v, want [name]", pe.Args)
	}
}

func TestParseErrors(t *testing.T) {
	const head = "@name n\n@namespace ns\n@version 1\n"
	tests := []struct {
		name string
		line string
		code string
		args []string
	}{
		{"bad version", "@version 1.x", meta.CodeInvalidVersion, []string{"1.x"}},
		{"url protocol", "@homepageURL ftp://x.org/", meta.CodeInvalidURLProtocol, []string{"ftp:"}},
		{"relative url", "@supportURL just-text", meta.CodeInvalidURL, []string{"just-text"}},
		{"preprocessor", "@preprocessor sass", meta.CodeUnknownPreprocessor, []string{"sass"}},
		{"unknown var type", `@var foo x "X" 1`, meta.CodeUnknownVarType, []string{"var", "foo"}},
		{"dropdown needs advanced", `@var dropdown x "X" {}`, meta.CodeUnknownVarType, []string{"var", "dropdown"}},
		{"color", `@var color c "C" notacolor`, meta.CodeInvalidColor, []string{"notacolor"}},
		{"checkbox", `@var checkbox c "C" 2`, meta.CodeInvalidCheckboxDefault, nil},
		{"range max", `@var range r "R" [50, 0, 10]`, meta.CodeInvalidRangeMax, []string{"range"}},
		{"range min", `@var range r "R" [-1, 0, 10]`, meta.CodeInvalidRangeMin, []string{"range"}},
		{"range step", `@var range r "R" [5, 0, 10, 2]`, meta.CodeInvalidRangeStep, []string{"range"}},
		{"range units twice", `@var range r "R" [5, "px", "em"]`, meta.CodeInvalidRangeMultipleUnits, []string{"range"}},
		{"range too many", `@var range r "R" [1, 0, 10, 1, 5]`, meta.CodeInvalidRangeTooManyValues, []string{"range"}},
		{"range no default", `@var range r "R" [null, 0, 10]`, meta.CodeInvalidRangeDefault, []string{"range"}},
		{"range units", `@var number n "N" [1, 0, 10, 1, "parsec"]`, meta.CodeInvalidRangeUnits, []string{"number", "parsec"}},
		{"range object", `@var number n "N" {"a": 1}`, meta.CodeInvalidRange, []string{"number"}},
		{"select defaults", `@var select s "S" ["a*", "b*"]`, meta.CodeInvalidSelectMultipleDefaults, nil},
		{"select duplicated", `@var select s "S" ["a", "a"]`, meta.CodeInvalidSelectNameDuplicated, nil},
		{"select empty", `@var select s "S" []`, meta.CodeInvalidSelectEmptyOptions, nil},
		{"select value", `@var select s "S" {"a": 1}`, meta.CodeInvalidSelectValue, nil},
		{"select literal", `@var select s "S" [nope]`, meta.CodeUnknownJSONLiteral, []string{"nope"}},
		{"select unterminated", `@var select s "S" ["a" "b"]`, meta.CodeMissingChar, []string{",", "]"}},
		{"xstyle brace", `@advanced dropdown d "D" x`, meta.CodeMissingChar, []string{"{"}},
		{"missing value", `@var text t "T" `, meta.CodeMissingValue, nil},
		{"label", `@var text t (x) y`, meta.CodeInvalidString, nil},
		{"carriage return", "@author a\r", meta.CodeInvalidCharacter, []string{`\r`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := meta.Parse(head+tt.line+"\n", 0)
			var pe *meta.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse() error = %v, want *ParseError", err)
			}
			if pe.Code != tt.code {
				t.Errorf("code = %s (%s), want %s", pe.Code, pe.Message, tt.code)
			}
			if tt.args != nil && !slices.Equal(pe.Args, tt.args) {
				t.Errorf("args = %q, want %q", pe.Args, tt.args)
			}
		})
	}
}

func TestParseErrorIndex(t *testing.T) {
	text := "@name n\n@namespace ns\n@version bad\n"
	_, err := meta.Parse(text, 100)
	var pe *meta.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Parse() error = %v, want *ParseError", err)
	}
	if want := strings.Index(text, "bad") + 100; pe.Index != want {
		t.Errorf("index = %d, want %d", pe.Index, want)
	}
}

func TestParseIgnoresUnknownKeys(t *testing.T) {
	md := mustParse(t, "@name n\n@namespace ns\n@version 1\n@run-at document-start\n@nmae other\n")
	if md.Name != "n" {
		t.Errorf("name = %q, want n", md.Name)
	}
}

func TestLint(t *testing.T) {
	md, err := meta.Lint("@nmae x\n@namespace ns\n@version 1\n@var checkbox c \"C\" 5\n", 10)
	if md == nil || md.Namespace != "ns" {
		t.Fatalf("Lint() metadata = %+v", md)
	}
	errs := multierr.Errors(err)
	var codes []string
	for _, e := range errs {
		var pe *meta.ParseError
		if !errors.As(e, &pe) {
			t.Fatalf("unexpected error type %T", e)
		}
		codes = append(codes, pe.Code)
		if pe.Code == meta.CodeUnknownMeta {
			if !slices.Equal(pe.Args, []string{"nmae", "name"}) {
				t.Errorf("unknownMeta args = %v", pe.Args)
			}
			if pe.Index != 10 {
				t.Errorf("unknownMeta index = %d, want 10", pe.Index)
			}
		}
	}
	want := []string{meta.CodeUnknownMeta, meta.CodeInvalidCheckboxDefault, meta.CodeMissingMandatory}
	if !slices.Equal(codes, want) {
		t.Errorf("codes = %v, want %v", codes, want)
	}
}

func TestNullifyInvalidVars(t *testing.T) {
	md := mustParse(t, full)
	set := map[string]string{
		"dark":   "yes",
		"accent": "#zzz",
		"font":   "anything",
		"size":   "7",
		"theme":  "light",
		"op":     "0.75",
	}
	for name, v := range set {
		mustVar(t, md, name).SetValue(v)
	}

	vars := meta.NullifyInvalidVars(md.Vars)

	for name, keep := range map[string]bool{
		"dark":   false,
		"accent": false,
		"font":   true,
		"size":   false,
		"theme":  true,
		"op":     true,
	} {
		va := mustVar(t, &meta.Metadata{Vars: vars}, name)
		switch {
		case keep && (va.Value == nil || *va.Value != set[name]):
			t.Errorf("%s value = %v, want %q kept", name, va.Value, set[name])
		case !keep && va.Value != nil:
			t.Errorf("%s value = %q, want nil", name, *va.Value)
		}
	}

	theme := mustVar(t, md, "theme")
	theme.SetValue("gone")
	meta.NullifyInvalidVars(md.Vars)
	if theme.Value != nil {
		t.Errorf("select value no longer among options was kept")
	}
	if theme.Effective() != "dark" {
		t.Errorf("Effective() = %q, want default", theme.Effective())
	}
}

func TestStringifyRoundTrip(t *testing.T) {
	orig := mustParse(t, full)
	for _, format := range []string{meta.FormatStylus, meta.FormatXStyle} {
		t.Run(format, func(t *testing.T) {
			text, err := meta.Stringify(orig, meta.StringifyOptions{Format: format, AlignKeys: true, Space: 2})
			if err != nil {
				t.Fatalf("Stringify() error: %v", err)
			}
			got := mustParse(t, text)
			if !reflect.DeepEqual(got, orig) {
				t.Errorf("round trip mismatch\n%s\ngot  %+v\nwant %+v", text, got, orig)
			}
		})
	}
}

func TestStringifyEscapesComment(t *testing.T) {
	md := &meta.Metadata{Name: "a */ b", Namespace: "n", Version: "1"}
	text, err := meta.Stringify(md, meta.StringifyOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(text, "*/") != 1 || !strings.Contains(text, `a *\/ b`) {
		t.Errorf("comment terminator not escaped:\n%s", text)
	}
	if got := mustParse(t, text); got.Name != "a */ b" {
		t.Errorf("name after round trip = %q", got.Name)
	}
}

func TestVarsJSON(t *testing.T) {
	md := mustParse(t, full)
	data, err := json.Marshal(md)
	if err != nil {
		t.Fatal(err)
	}
	if i, j := strings.Index(string(data), `"dark":{`), strings.Index(string(data), `"accent":{`); i < 0 || j < 0 || i > j {
		t.Errorf("declaration order lost: %s", data)
	}
	var back meta.Metadata
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(&back, md) {
		t.Errorf("JSON round trip mismatch\ngot  %+v\nwant %+v", back, md)
	}
}
