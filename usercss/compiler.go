package usercss

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"ucc/meta"
	"ucc/mozdoc"
	"ucc/preproc"
)

// Result of a compilation. Errors are parser problems which did not prevent
// producing sections.
type Result struct {
	Sections []mozdoc.Section
	Errors   []error
	Log      []string
}

// Compiler is safe for concurrent use, preprocessing stage of all
// compilations runs one at a time.
type Compiler struct {
	log     *zap.Logger
	parser  *mozdoc.Parser
	engines *preproc.Registry
	pre     *semaphore.Weighted
}

func NewCompiler(log *zap.Logger, engines *preproc.Registry) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	if engines == nil {
		engines = preproc.NewRegistry(log, nil, nil)
	}
	return &Compiler{
		log:     log.Named("compiler"),
		parser:  mozdoc.NewParser(log),
		engines: engines,
		pre:     semaphore.NewWeighted(1),
	}
}

// Compile substitutes variables into code using named preprocessor and splits
// result into sections. Unknown preprocessor falls back to default one. Error
// is returned when preprocessor fails, section parser problems are reported
// in the Result.
func (c *Compiler) Compile(ctx context.Context, preprocessor, code string, vars *meta.Vars) (*Result, error) {
	res := &Result{}

	engine, ok := c.engines.Get(preprocessor)
	if !ok {
		c.log.Warn("Unknown preprocessor, using default", zap.String("preprocessor", preprocessor))
		res.Log = append(res.Log, fmt.Sprintf("Unknown preprocessor %q", preprocessor))
	}
	values := preproc.SimplifyVars(vars)

	if p, ok := engine.(preproc.Preprocessor); ok {
		if err := c.pre.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		start := time.Now()
		out, err := p.Pre(ctx, code, values)
		c.pre.Release(1)
		if err != nil {
			return nil, err
		}
		c.log.Debug("Preprocessed", zap.String("engine", engine.Name()), zap.Duration("elapsed", time.Since(start)))
		code = out
	}

	sections, err := c.parser.Parse(code)
	res.Errors = multierr.Errors(err)
	for _, e := range res.Errors {
		res.Log = append(res.Log, e.Error())
	}

	if p, ok := engine.(preproc.Postprocessor); ok {
		sections = p.Post(sections, values)
	}
	res.Sections = sections
	return res, nil
}

// BuildCode compiles style source with its metadata block blanked out and
// stores sections in the style. Style without sections is rejected with
// parser errors if there were any or ErrNoSections otherwise.
func (c *Compiler) BuildCode(ctx context.Context, style *Style) (*Result, error) {
	code := style.SourceCode
	if start, end, ok := FindMeta(code); ok {
		code = BlankOut(code, start, end)
	}
	var preprocessor string
	var vars *meta.Vars
	if style.Meta != nil {
		preprocessor, vars = style.Meta.Preprocessor, style.Meta.Vars
	}

	res, err := c.Compile(ctx, preprocessor, code, vars)
	if err != nil {
		return nil, fmt.Errorf("unable to compile %q: %w", style.Name, err)
	}
	if len(res.Sections) == 0 {
		if len(res.Errors) > 0 {
			return nil, multierr.Combine(res.Errors...)
		}
		return nil, ErrNoSections
	}
	style.Sections = res.Sections
	style.Digest = mozdoc.Digest(res.Sections)
	return res, nil
}

// Build parses metadata, carries over old variable values if any and
// compiles the style.
func (c *Compiler) Build(ctx context.Context, source string, old *meta.Vars) (*Style, *Result, error) {
	style, err := BuildMeta(source)
	if err != nil {
		return nil, nil, err
	}
	AssignVars(style, old)
	res, err := c.BuildCode(ctx, style)
	if err != nil {
		return style, nil, err
	}
	return style, res, nil
}
