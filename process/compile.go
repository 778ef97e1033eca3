// Package process implements command line actions.
package process

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/ianaindex"

	"ucc/archive"
	"ucc/config"
	"ucc/mozdoc"
	"ucc/state"
	"ucc/usercss"
)

// source is usercss text found during discovery. Name is path relative to
// the discovery root (always including file name), origin is used for
// diagnostics only.
type source struct {
	name   string
	origin string
	data   []byte
}

func Compile(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("compile")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	format := env.Cfg.Output.Format
	if to := cmd.String("to"); len(to) > 0 {
		if format, err = config.ParseOutputFmt(to); err != nil {
			log.Warn("Unknown output format requested, switching to css", zap.Error(err))
			format = config.OutputFmtCss
		}
	}

	env.NoDirs = cmd.Bool("nodirs")
	if cmd.Bool("overwrite") {
		env.Cfg.Output.Overwrite = true
	}
	if env.Vars, err = parseVarFlags(cmd.StringSlice("var")); err != nil {
		return err
	}

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	cp := cmd.String("force-zip-cp")
	if len(cp) == 0 {
		cp = env.Cfg.Output.ZipCodePage
	}
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, format, log)
}

// process determines the input type (directory, archive, or single file),
// collects usercss sources and compiles them.
func process(ctx context.Context, src, dst string, format config.OutputFmt, log *zap.Logger) error {
	var (
		sources    []source
		head, tail string
	)
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if sources, err = collectDir(ctx, head, log); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if sources, err = collectArchive(ctx, head, filepath.ToSlash(tail), "", log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		if len(tail) == 0 {
			// explicitly named file is taken whatever its name is
			data, err := os.ReadFile(head)
			if err != nil {
				return fmt.Errorf("unable to read source: %w", err)
			}
			sources = append(sources, source{name: filepath.Base(head), origin: head, data: data})
			break
		}
		return fmt.Errorf("input was not recognized as usercss source (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	if len(sources) == 0 {
		log.Debug("Nothing to process", zap.String("source", src))
		return nil
	}
	return compileAll(ctx, sources, dst, format, log)
}

// collectDir walks directory tree finding usercss files and archives.
func collectDir(ctx context.Context, dir string, log *zap.Logger) ([]source, error) {
	var sources []source
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))

		if isStyleName(path) {
			data, err := readStyleFile(path)
			if err != nil {
				log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
				return nil
			}
			sources = append(sources, source{name: rel, origin: path, data: data})
			return nil
		}

		isArchive, err := isArchiveFile(path)
		if err != nil {
			// checking format - but cannot open target file
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !isArchive {
			log.Debug("Skipping file, not recognized as usercss or archive", zap.String("file", path))
			return nil
		}
		found, err := collectArchive(ctx, path, "", filepath.Dir(rel), log)
		if err != nil {
			log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			return nil
		}
		sources = append(sources, found...)
		return nil
	})
	return sources, err
}

// collectArchive walks all files inside archive and finds usercss files under
// "pathIn". Names of found sources are placed under "pathOut".
func collectArchive(ctx context.Context, path, pathIn, pathOut string, log *zap.Logger) ([]source, error) {
	var sources []source
	cp := state.EnvFromContext(ctx).CodePage

	err := archive.Walk(path, pathIn, cp, func(arc string, e archive.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := readStyleEntry(e)
		if err != nil {
			log.Warn("Skipping file in archive", zap.String("archive", arc), zap.String("path", e.Name), zap.Error(err))
			return nil
		}
		if data == nil {
			log.Debug("Skipping file, not recognized as usercss", zap.String("archive", arc), zap.String("file", e.Name))
			return nil
		}
		sources = append(sources, source{
			name:   filepath.Join(pathOut, filepath.FromSlash(e.Name)),
			origin: arc + ":" + e.Name,
			data:   data,
		})
		return nil
	})
	return sources, err
}

// outputs makes sure no two sources are written to the same file during a
// single run.
type outputs struct {
	mu    sync.Mutex
	names map[string]string
}

func (o *outputs) claim(name, by string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if prev, ok := o.names[name]; ok {
		return prev, false
	}
	o.names[name] = by
	return "", true
}

// compileAll compiles sources concurrently, failures of individual sources
// are logged and counted.
func compileAll(ctx context.Context, sources []source, dst string, format config.OutputFmt, log *zap.Logger) error {
	sort.SliceStable(sources, func(i, j int) bool {
		return natural.Less(sources[i].name, sources[j].name)
	})

	var (
		failed atomic.Int32
		claims = &outputs{names: make(map[string]string)}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, s := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := processSource(gctx, s, dst, format, claims, log); err != nil {
				failed.Add(1)
				log.Error("Unable to process source", zap.String("source", s.origin), zap.Error(err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d of %d sources could not be compiled", n, len(sources))
	}
	return nil
}

// processSource compiles single usercss source. "src.name" is part of the
// source path (always including file name) relative to the original path.
// "dst" is the destination directory where the result should be written.
func processSource(ctx context.Context, src source, dst string, format config.OutputFmt, claims *outputs, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var outputName string

	log.Info("Compilation starting", zap.String("from", src.name))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Compilation ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("compilation panic: %v", r)
		} else if rerr == nil {
			log.Info("Compilation completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	code, err := decodeSource(src.data)
	if err != nil {
		return fmt.Errorf("unable to decode source (%s): %w", src.name, err)
	}
	style, err := usercss.BuildMeta(code)
	if err != nil {
		return fmt.Errorf("unable to parse usercss metadata (%s): %w", src.name, err)
	}
	applyOverrides(style, env.Vars, env.Cfg.Compiler.HexUppercase, log)

	res, err := env.Compiler().BuildCode(ctx, style)
	if err != nil {
		return err
	}
	for _, e := range res.Errors {
		log.Warn("Recoverable problem in source", zap.String("from", src.name), zap.Error(e))
	}

	outputName = buildOutputPath(style, src.name, dst, format, env)
	if prev, ok := claims.claim(outputName, src.origin); !ok {
		return fmt.Errorf("output file %s is already produced from %s", outputName, prev)
	}

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !env.Cfg.Output.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	data, err := render(style, format)
	if err != nil {
		return fmt.Errorf("unable to generate output: %w", err)
	}
	if err := os.WriteFile(outputName, data, 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}

	// Store compilation results for debugging
	if env.Rpt != nil {
		rel := filepath.ToSlash(src.name)
		env.Rpt.StoreData("source/"+rel, src.data)
		if len(res.Log) > 0 {
			env.Rpt.StoreData("log/"+rel+".txt", []byte(strings.Join(res.Log, "\n")))
		}
		if out, err := filepath.Rel(dst, outputName); err == nil {
			env.Rpt.Store("result/"+filepath.ToSlash(out), outputName)
		}
	}
	return nil
}

// render produces output file content for compiled style.
func render(style *usercss.Style, format config.OutputFmt) ([]byte, error) {
	switch format {
	case config.OutputFmtCss:
		return []byte(mozdoc.ToCSS(style.Sections) + "\n"), nil
	case config.OutputFmtJson:
		data, err := json.MarshalIndent(style, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	return nil, fmt.Errorf("unsupported output format %s", format)
}
