package preproc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Renderer compiles preprocessor source into CSS.
type Renderer interface {
	Render(ctx context.Context, source string) (string, error)
}

// RenderError is reported when preprocessor rejects the source.
type RenderError struct {
	Engine  string
	Message string
	Stderr  string
	// VarLines is the number of lines with variable definitions prepended to
	// the source, line numbers reported by the renderer are off by it.
	VarLines int
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Engine, e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// ExecRenderer runs external compiler passing source on stdin and reading CSS
// from stdout.
type ExecRenderer struct {
	Engine string
	Path   string
	Args   []string
}

func (r *ExecRenderer) Render(ctx context.Context, source string) (string, error) {
	cmd := exec.CommandContext(ctx, r.Path, r.Args...)
	cmd.Stdin = strings.NewReader(source)
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if i := strings.IndexByte(msg, '\n'); i >= 0 {
			msg = msg[:i]
		}
		if len(msg) == 0 {
			msg = err.Error()
		}
		return "", &RenderError{Engine: r.Engine, Message: msg, Stderr: stderr.String(), Err: err}
	}
	return stdout.String(), nil
}

// render prepends variable definitions and runs renderer.
func render(ctx context.Context, log *zap.Logger, engine string, renderer Renderer, varDef, source string) (string, error) {
	if renderer == nil {
		return "", &RenderError{Engine: engine, Message: "renderer is not configured"}
	}
	log.Debug("Rendering", zap.Int("vars bytes", len(varDef)), zap.Int("source bytes", len(source)))

	out, err := renderer.Render(ctx, varDef+source)
	if err != nil {
		var re *RenderError
		if !errors.As(err, &re) {
			re = &RenderError{Engine: engine, Message: err.Error(), Err: err}
		}
		re.VarLines = strings.Count(varDef, "\n") + 1
		return "", re
	}
	return out, nil
}

// Stylus compiles source with stylus after prepending "name = value;" lines.
type Stylus struct {
	log      *zap.Logger
	renderer Renderer
}

func (*Stylus) Name() string { return NameStylus }

func (e *Stylus) Pre(ctx context.Context, source string, vars Values) (string, error) {
	var b strings.Builder
	for _, v := range vars {
		b.WriteString(v.Name + " = " + v.Value + ";\n")
	}
	return render(ctx, e.log, NameStylus, e.renderer, b.String(), source)
}

// Less compiles source with less after prepending "@name:value;" lines.
// Renderer is expected to use parens-division math mode.
type Less struct {
	log      *zap.Logger
	renderer Renderer
}

func (*Less) Name() string { return NameLess }

func (e *Less) Pre(ctx context.Context, source string, vars Values) (string, error) {
	var b strings.Builder
	for _, v := range vars {
		b.WriteString("@" + v.Name + ":" + v.Value + ";\n")
	}
	return render(ctx, e.log, NameLess, e.renderer, b.String(), source)
}
