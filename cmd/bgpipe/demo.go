package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/reusee/bgpipe/chains"
	"github.com/reusee/bgpipe/envelopes"
	"github.com/reusee/bgpipe/logs"
	"github.com/reusee/bgpipe/workers"
)

// blocker burns some steps before incrementing
var blocker = envelopes.Def(`def blocker(num):
    for _ in range(500):
        pass
    return num + 1`)

func blockerFunc(num int) int {
	for range 5000 {
		_ = time.Now()
	}
	return num + 1
}

func repeat[T any](v T, n int) []any {
	ret := make([]any, n)
	for i := range ret {
		ret[i] = v
	}
	return ret
}

func demo(ctx context.Context, newChain chains.NewChain, logger logs.Logger, w io.Writer) error {
	start := time.Now()
	var mu sync.Mutex
	report := func(label string, p *workers.Pending) func() error {
		return func() error {
			result, err := p.Wait()
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				return fmt.Errorf("%s: %w", label, err)
			}
			fmt.Fprintf(w, "chain %s %s\n", label, result)
			fmt.Fprintf(w, "done after %v\n", time.Since(start).Round(time.Millisecond))
			return nil
		}
	}

	fmt.Fprintln(w, "chain example")
	waits := []func() error{
		// started largest first, they settle smallest first
		report("lg", newChain(repeat(blocker, 9000)...).Call(ctx, 3)),
		report("sm", newChain(repeat(blocker, 1000)...).Call(ctx, 1)),
		report("md", newChain(repeat(blocker, 5000)...).Call(ctx, 2)),
		report("sum", newChain(envelopes.Def(`def sum_all(x):
    n = 0
    for v in x:
        n += v
    return n`)).Call(ctx, repeat(1, 1234))),
		report("prop", newChain(envelopes.Lambda(`lambda x: len(x["prop"])`)).Call(ctx, map[string]any{
			"prop": "prop",
		})),
	}
	logger.InfoContext(ctx, "chains started", "elapsed", time.Since(start))

	var errs []error
	var wg sync.WaitGroup
	for _, wait := range waits {
		wg.Go(func() {
			if err := wait(); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		})
	}
	wg.Wait()
	if len(errs) > 0 {
		return errs[0]
	}

	fmt.Fprintln(w, "pipe example")
	start = time.Now()
	for _, c := range []struct {
		label string
		n     int
	}{
		{"lg", 10000},
		{"sm", 100},
		{"md", 5000},
	} {
		steps := make([]func(int) int, c.n)
		for i := range steps {
			steps[i] = blockerFunc
		}
		fmt.Fprintf(w, "pipe %s %d\n", c.label, chains.Pipe(steps...)(0))
	}
	fmt.Fprintf(w, "done after %v\n", time.Since(start).Round(time.Millisecond))

	return nil
}
