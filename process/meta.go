package process

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"ucc/meta"
	"ucc/state"
	"ucc/usercss"
)

// Meta prints parsed metadata of the source. With "lint" all problems found
// in metadata block are reported instead of stopping at the first one.
func Meta(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("meta")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	code, err := readSource(src)
	if err != nil {
		return err
	}
	code = usercss.NormalizeNewlines(code)

	start, end, ok := usercss.FindMeta(code)
	if !ok {
		return usercss.ErrNoMetadata
	}
	text := usercss.BlankOut(code, 0, start)[:end]

	var md *meta.Metadata
	if cmd.Bool("lint") {
		md, err = meta.Lint(text, 0)
		problems := multierr.Errors(err)
		for _, p := range problems {
			var pe *meta.ParseError
			if errors.As(p, &pe) {
				log.Warn("Metadata problem", zap.String("code", pe.Code), zap.Int("index", pe.Index), zap.String("message", pe.Message))
			}
			fmt.Fprintln(cmd.Root().ErrWriter, p)
		}
		if len(problems) > 0 {
			return fmt.Errorf("%d problem(s) found in metadata of %s", len(problems), src)
		}
	} else if md, err = meta.Parse(text, 0); err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(md)
}
