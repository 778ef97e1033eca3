package usercss_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/errgroup"

	"ucc/meta"
	"ucc/mozdoc"
	"ucc/preproc"
	"ucc/usercss"
)

func ptr[T any](v T) *T { return &v }

const source = `/* ==UserStyle==
@name        Example
@namespace   example.com
@version     1.0.0
@author      John
@homepageURL https://example.com/style
@var checkbox dark "Dark" 1
@var color accent "Accent" #ff0000
==/UserStyle== */
body{color:var(--accent)}
`

func TestBlankOut(t *testing.T) {
	tests := []struct {
		text       string
		start, end int
		want       string
	}{
		{"abc\ndef", 1, 6, "a  \n  f"},
		{"a\r\nb", 0, 4, " \r\n "},
		{"abc", 0, 0, "abc"},
		{"abc", 2, 10, "ab "},
	}
	for _, tt := range tests {
		got := usercss.BlankOut(tt.text, tt.start, tt.end)
		if got != tt.want {
			t.Errorf("BlankOut(%q, %d, %d) = %q, want %q", tt.text, tt.start, tt.end, got, tt.want)
		}
		if again := usercss.BlankOut(got, tt.start, tt.end); again != got {
			t.Errorf("BlankOut is not idempotent: %q != %q", again, got)
		}
		if len(got) != len(tt.text) {
			t.Errorf("BlankOut changed length %d -> %d", len(tt.text), len(got))
		}
	}
}

func TestBuildMeta(t *testing.T) {
	style, err := usercss.BuildMeta(strings.ReplaceAll(source, "\n", "\r\n"))
	if err != nil {
		t.Fatalf("BuildMeta() error: %v", err)
	}
	if strings.Contains(style.SourceCode, "\r") {
		t.Error("source code line endings are not normalized")
	}
	if style.Name != "Example" || style.Author != "John" || style.URL != "https://example.com/style" {
		t.Errorf("global fields not copied: %+v", style)
	}
	if !style.Enabled || style.Meta.Namespace != "example.com" || style.Meta.Vars.Len() != 2 {
		t.Errorf("unexpected style %+v", style)
	}
}

func TestBuildMeta_Errors(t *testing.T) {
	if _, err := usercss.BuildMeta("body{}"); !errors.Is(err, usercss.ErrNoMetadata) {
		t.Errorf("BuildMeta() error = %v, want ErrNoMetadata", err)
	}

	_, err := usercss.BuildMeta("a{}\n/*==UserStyle==\n@namespace foo\n@version 1\n==/UserStyle==*/")
	var pe *meta.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("BuildMeta() error = %v, want *meta.ParseError", err)
	}
	if pe.Code != meta.CodeMissingMandatory || len(pe.Args) != 1 || pe.Args[0] != "name" {
		t.Errorf("error = %+v", pe)
	}

	// positions are relative to the whole source
	_, err = usercss.BuildMeta("a{}\n/*==UserStyle==\n@name x\n@namespace y\n@version 1\n@var color c \"C\" nope\n==/UserStyle==*/")
	if !errors.As(err, &pe) {
		t.Fatalf("BuildMeta() error = %v, want *meta.ParseError", err)
	}
	if pe.Index < len("a{}\n/*==UserStyle==\n") {
		t.Errorf("error index %d points before metadata block", pe.Index)
	}
}

func TestCompile_DefaultVariables(t *testing.T) {
	c := usercss.NewCompiler(zaptest.NewLogger(t), nil)
	vars := meta.NewVars(&meta.Variable{Type: meta.VarText, Name: "accent", Value: ptr("blue")})

	res, err := c.Compile(context.Background(), "default", "/* license */\nbody{color:red}", vars)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Errorf("Compile() errors = %v", res.Errors)
	}
	if len(res.Sections) != 1 {
		t.Fatalf("Compile() returned %d sections", len(res.Sections))
	}
	code := res.Sections[0].Code
	if !strings.HasSuffix(code, ":root {\n  --accent: blue;\n}\nbody{color:red}") {
		t.Errorf("code = %q", code)
	}
	if code != "/* license */\n\n:root {\n  --accent: blue;\n}\nbody{color:red}" {
		t.Errorf("license comment must stay first, code = %q", code)
	}
}

func TestCompile_UnknownPreprocessor(t *testing.T) {
	c := usercss.NewCompiler(zaptest.NewLogger(t), nil)
	res, err := c.Compile(context.Background(), "sass", "a{}", nil)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if len(res.Sections) != 1 || len(res.Log) != 1 {
		t.Errorf("Compile() = %+v", res)
	}
}

func TestCompile_Warnings(t *testing.T) {
	c := usercss.NewCompiler(zaptest.NewLogger(t), nil)
	res, err := c.Compile(context.Background(), "", "a{}\n@-moz-document foo(x), domain(y) {b{}}", nil)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	var se *mozdoc.SyntaxError
	if len(res.Errors) != 1 || !errors.As(res.Errors[0], &se) {
		t.Errorf("Compile() errors = %v", res.Errors)
	}
	if len(res.Sections) != 2 {
		t.Errorf("Compile() sections = %v", res.Sections)
	}
}

func TestBuildCode(t *testing.T) {
	c := usercss.NewCompiler(zaptest.NewLogger(t), nil)

	style, err := usercss.BuildMeta(source)
	if err != nil {
		t.Fatalf("BuildMeta() error: %v", err)
	}
	res, err := c.BuildCode(context.Background(), style)
	if err != nil {
		t.Fatalf("BuildCode() error: %v", err)
	}
	if len(res.Errors) != 0 || len(style.Sections) != 1 {
		t.Fatalf("BuildCode() = %+v, sections %+v", res, style.Sections)
	}
	if want := ":root {\n  --dark: 1;\n  --accent: #f00;\n}\nbody{color:var(--accent)}"; style.Sections[0].Code != want {
		t.Errorf("code = %q, want %q", style.Sections[0].Code, want)
	}
	if style.Digest != mozdoc.Digest(style.Sections) {
		t.Error("digest is not set")
	}
}

func TestBuildCode_Failures(t *testing.T) {
	c := usercss.NewCompiler(zaptest.NewLogger(t), nil)
	header := "/* ==UserStyle==\n@name x\n@namespace y\n@version 1\n==/UserStyle== */\n"

	style, err := usercss.BuildMeta(header + "\n  \n")
	if err != nil {
		t.Fatalf("BuildMeta() error: %v", err)
	}
	if _, err := c.BuildCode(context.Background(), style); !errors.Is(err, usercss.ErrNoSections) {
		t.Errorf("BuildCode() error = %v, want ErrNoSections", err)
	}

	// a comment alone is still a section
	style, err = usercss.BuildMeta(header + "/* nothing here */")
	if err != nil {
		t.Fatalf("BuildMeta() error: %v", err)
	}
	if _, err := c.BuildCode(context.Background(), style); err != nil {
		t.Errorf("BuildCode() of comment only body error = %v", err)
	}

	style, err = usercss.BuildMeta(header + "@-moz-document foo(x) {")
	if err != nil {
		t.Fatalf("BuildMeta() error: %v", err)
	}
	_, err = c.BuildCode(context.Background(), style)
	var se *mozdoc.SyntaxError
	if !errors.As(err, &se) {
		t.Errorf("BuildCode() error = %v, want syntax errors", err)
	}
}

func TestBuild_Uso(t *testing.T) {
	c := usercss.NewCompiler(zaptest.NewLogger(t), nil)
	src := "/* ==UserStyle==\n@name x\n@namespace y\n@version 1\n@advanced color accent \"Accent\" #112233\n==/UserStyle== */\n" +
		"a{color:/*[[accent]]*/80 }\nb{color:/*[[accent]]*/}"

	style, _, err := c.Build(context.Background(), src, nil)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if style.Meta.Preprocessor != "uso" {
		t.Errorf("preprocessor = %q", style.Meta.Preprocessor)
	}
	if want := "a{color:#11223380 }\nb{color:#112233}"; style.Sections[0].Code != want {
		t.Errorf("code = %q, want %q", style.Sections[0].Code, want)
	}
}

func TestAssignVars(t *testing.T) {
	style, err := usercss.BuildMeta(source)
	if err != nil {
		t.Fatalf("BuildMeta() error: %v", err)
	}
	old := meta.NewVars(
		&meta.Variable{Type: meta.VarCheckbox, Name: "dark", Value: ptr("yes")},
		&meta.Variable{Type: meta.VarColor, Name: "accent", Value: ptr("#00ff00")},
		&meta.Variable{Type: meta.VarText, Name: "gone", Value: ptr("x")},
	)
	usercss.AssignVars(style, old)

	dark, _ := style.Meta.Vars.Get("dark")
	if dark.Value != nil {
		t.Errorf("invalid value must be reset, got %q", *dark.Value)
	}
	accent, _ := style.Meta.Vars.Get("accent")
	if accent.Value == nil || *accent.Value != "#00ff00" {
		t.Errorf("accent value = %v", accent.Value)
	}
	if _, ok := style.Meta.Vars.Get("gone"); ok {
		t.Error("variables missing in the new style must not be added")
	}
}

type slowRenderer struct {
	active, peak atomic.Int32
}

func (r *slowRenderer) Render(_ context.Context, source string) (string, error) {
	n := r.active.Add(1)
	defer r.active.Add(-1)
	for {
		p := r.peak.Load()
		if n <= p || r.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	return "a{}", nil
}

func TestCompile_PreStageIsSerialized(t *testing.T) {
	r := &slowRenderer{}
	log := zaptest.NewLogger(t)
	c := usercss.NewCompiler(log, preproc.NewRegistry(log, r, r))

	g, ctx := errgroup.WithContext(context.Background())
	for i := range 6 {
		name := "stylus"
		if i%2 == 0 {
			name = "less"
		}
		g.Go(func() error {
			_, err := c.Compile(ctx, name, "a\n  color red", nil)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if p := r.peak.Load(); p != 1 {
		t.Errorf("%d renderers ran at once", p)
	}
}

func TestCompile_Canceled(t *testing.T) {
	r := &slowRenderer{}
	log := zaptest.NewLogger(t)
	c := usercss.NewCompiler(log, preproc.NewRegistry(log, r, r))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Compile(ctx, "less", "a{}", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Compile() error = %v, want context.Canceled", err)
	}
}
