// Package state defines shared program state.
package state

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"ucc/config"
	"ucc/preproc"
	"ucc/usercss"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// used by compile subcommand
	NoDirs   bool
	CodePage encoding.Encoding
	// variable values requested on command line
	Vars map[string]string

	compiler     *usercss.Compiler
	compilerOnce sync.Once

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &LocalEnv{start: time.Now()})
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// Compiler returns usercss compiler with external renderers set up from
// configuration, it is created on first use.
func (e *LocalEnv) Compiler() *usercss.Compiler {
	e.compilerOnce.Do(func() {
		log := e.Log
		if log == nil {
			log = zap.NewNop()
		}
		var stylus, less preproc.Renderer
		if e.Cfg != nil {
			stylus = &preproc.ExecRenderer{Engine: preproc.NameStylus, Path: e.Cfg.Compiler.Stylus.Path, Args: e.Cfg.Compiler.Stylus.Args}
			less = &preproc.ExecRenderer{Engine: preproc.NameLess, Path: e.Cfg.Compiler.Less.Path, Args: e.Cfg.Compiler.Less.Args}
		}
		e.compiler = usercss.NewCompiler(log, preproc.NewRegistry(log, stylus, less))
	})
	return e.compiler
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
