package debugs

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/reusee/bgpipe/envelopes"
	"github.com/reusee/bgpipe/logs"
	"github.com/reusee/bgpipe/values"
	"github.com/reusee/bgpipe/workers"
	"go.starlark.net/repl"
	"go.starlark.net/starlark"
)

// REPL reads and evaluates Starlark from stdin, with the names an execution context has plus globals.
type REPL func(ctx context.Context, what string, globals map[string]any) error

func (Module) REPL(
	logger logs.Logger,
	executor *workers.Executor,
) REPL {
	return func(ctx context.Context, what string, globals map[string]any) error {
		logger.InfoContext(ctx, "repl: "+what,
			"globals", slices.Sorted(maps.Keys(globals)),
		)
		defer func() {
			logger.InfoContext(ctx, "repl end: "+what)
		}()

		thread := &starlark.Thread{
			Name: "repl",
		}
		mappings, err := executor.Environment(ctx, thread)
		if err != nil {
			return err
		}
		for name, value := range globals {
			v, err := values.ToStarlark(value)
			if err != nil {
				return fmt.Errorf("global %s: %w", name, err)
			}
			mappings[name] = v
		}

		stop := context.AfterFunc(ctx, func() {
			thread.Cancel(context.Cause(ctx).Error())
		})
		defer stop()

		repl.REPLOptions(envelopes.FileOptions, thread, mappings)
		return nil
	}
}
