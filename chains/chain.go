package chains

import (
	"context"
	_ "embed"
	"slices"

	"github.com/reusee/bgpipe/envelopes"
	"github.com/reusee/bgpipe/workers"
)

//go:embed compose.star
var composeSource string

// composer folds the transported steps over the input inside the execution context.
var composer = envelopes.Def(composeSource)

// Chain is an ordered list of steps applied left to right in one execution context.
// Entries that are not functions are skipped when called, unless the executor is strict.
type Chain struct {
	executor *workers.Executor
	steps    []any
}

func Compose(executor *workers.Executor, steps ...any) Chain {
	executor.Registry().Trust(composeSource)
	return Chain{
		executor: executor,
		steps:    slices.Clone(steps),
	}
}

func (c Chain) Steps() []any {
	return slices.Clone(c.steps)
}

// Then returns a new chain with steps appended.
func (c Chain) Then(steps ...any) Chain {
	return Chain{
		executor: c.executor,
		steps:    slices.Concat(c.steps, steps),
	}
}

// Call starts the chain on x and returns at once.
func (c Chain) Call(ctx context.Context, x any) *workers.Pending {
	entries := make([]any, 0, len(c.steps))
	for _, step := range c.steps {
		entries = append(entries, envelopes.Encode(step))
	}
	return c.executor.Invoke(ctx, composer, []any{x, entries})
}

// Run calls the chain and decodes the final value into T.
func Run[T any](ctx context.Context, chain Chain, x any) (T, error) {
	return workers.Await[T](chain.Call(ctx, x))
}
