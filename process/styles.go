package process

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"ucc/archive"
	"ucc/state"
	"ucc/store"
)

// exportIndexName is the archive entry with complete style records.
const exportIndexName = "styles.json"

// withStore opens style database for the duration of fn.
func withStore(ctx context.Context, env *state.LocalEnv, fn func(st *store.Store) error) (err error) {
	st, err := store.Open(ctx, env.Cfg.Store.Path, env.Compiler(), env.Log)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, st.Close())
	}()
	return fn(st)
}

// readSource reads usercss file converting it to UTF-8.
func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("unable to read source: %w", err)
	}
	return decodeSource(data)
}

func Install(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("install")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	code, err := readSource(src)
	if err != nil {
		return err
	}

	return withStore(ctx, env, func(st *store.Store) error {
		style, res, err := st.Install(ctx, code)
		if err != nil {
			return fmt.Errorf("unable to install style from %s: %w", src, err)
		}
		for _, e := range res.Errors {
			log.Warn("Recoverable problem in source", zap.String("from", src), zap.Error(e))
		}
		if env.Rpt != nil {
			env.Rpt.StoreData("source/"+filepath.Base(src), []byte(code))
		}
		log.Info("Style installed",
			zap.String("id", style.ID), zap.String("name", style.Name), zap.String("namespace", style.Meta.Namespace),
			zap.Int("sections", len(style.Sections)))
		_, err = fmt.Fprintf(cmd.Root().Writer, "%s\t%s\n", style.ID, style.Name)
		return err
	})
}

func List(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)

	return withStore(ctx, env, func(st *store.Store) error {
		styles, err := st.List(ctx)
		if err != nil {
			return err
		}
		if cmd.Bool("json") {
			enc := json.NewEncoder(cmd.Root().Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(styles)
		}
		w := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tNAMESPACE\tVERSION\tENABLED\tUPDATED")
		for _, s := range styles {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n",
				s.ID, s.Name, s.Meta.Namespace, s.Meta.Version, s.Enabled, s.UpdateDate.Local().Format(time.DateTime))
		}
		return w.Flush()
	})
}

func Remove(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("remove")

	ref := cmd.Args().Get(0)
	if len(ref) == 0 {
		return errors.New("no style has been specified")
	}
	return withStore(ctx, env, func(st *store.Store) error {
		style, err := st.Resolve(ctx, ref)
		if err != nil {
			return fmt.Errorf("unable to find style %q: %w", ref, err)
		}
		if err := st.Delete(ctx, style.ID); err != nil {
			return err
		}
		log.Info("Style removed", zap.String("id", style.ID), zap.String("name", style.Name))
		return nil
	})
}

func Set(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("set")

	if cmd.Args().Len() != 3 {
		return errors.New("style, variable name and value have to be specified")
	}
	ref, name, value := cmd.Args().Get(0), cmd.Args().Get(1), cmd.Args().Get(2)

	return withStore(ctx, env, func(st *store.Store) error {
		style, err := st.Resolve(ctx, ref)
		if err != nil {
			return fmt.Errorf("unable to find style %q: %w", ref, err)
		}
		if va, ok := style.Meta.Vars.Get(name); ok {
			value = normalizeValue(va, value, env.Cfg.Compiler.HexUppercase)
		}
		if _, err := st.SetVar(ctx, style.ID, name, value); err != nil {
			return fmt.Errorf("unable to set %q of style %q: %w", name, style.Name, err)
		}
		log.Info("Variable changed", zap.String("style", style.Name), zap.String("var", name), zap.String("value", value))
		return nil
	})
}

func Export(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("export")

	dst := cmd.Args().Get(0)
	if len(dst) == 0 {
		return errors.New("no destination has been specified")
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if _, err := os.Stat(dst); err == nil {
		if !cmd.Bool("overwrite") && !env.Cfg.Output.Overwrite {
			return fmt.Errorf("output file already exists: %s", dst)
		}
		log.Warn("Overwriting existing file", zap.String("file", dst))
	} else if !os.IsNotExist(err) {
		return err
	}

	return withStore(ctx, env, func(st *store.Store) (err error) {
		styles, err := st.List(ctx)
		if err != nil {
			return err
		}
		w, err := archive.Create(dst)
		if err != nil {
			return fmt.Errorf("unable to create archive: %w", err)
		}
		defer func() {
			err = multierr.Append(err, w.Close())
		}()

		now := time.Now()
		for _, s := range styles {
			name, err := w.Add(exportEntryName(s), s.UpdateDate, []byte(s.SourceCode))
			if err != nil {
				return err
			}
			log.Debug("Style exported", zap.String("id", s.ID), zap.String("entry", name))
		}
		index, err := json.MarshalIndent(styles, "", "  ")
		if err != nil {
			return err
		}
		if _, err := w.Add(exportIndexName, now, index); err != nil {
			return err
		}
		log.Info("Styles exported", zap.Int("count", len(styles)), zap.String("to", dst))
		return nil
	})
}
