package workers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/reusee/bgpipe/envelopes"
	"github.com/reusee/bgpipe/logs"
	"go.starlark.net/lib/json"
	"go.starlark.net/starlark"
)

// executionContext is one goroutine with its own interpreter state.
// It accepts one message and produces one outcome, and is not reused.
type executionContext struct {
	id     uuid.UUID
	inbox  chan []byte
	outbox chan outcome
}

type outcome struct {
	data []byte
	err  *Error
}

type contextEnv struct {
	logger      logs.Logger
	registry    *envelopes.Registry
	allowSource bool
	strict      bool
	maxSteps    uint64
}

// predeclaredNames lists what every context predeclares besides registry helpers.
var predeclaredNames = []string{
	"json",
	"decode",
	"is_callable",
	"strict",
}

// newEnvironment builds the predeclared names of one context, bound to thread.
func newEnvironment(ctx context.Context, thread *starlark.Thread, env contextEnv) (starlark.StringDict, error) {
	predeclared, err := env.registry.Predeclared()
	if err != nil {
		return nil, err
	}
	materializer := &envelopes.Materializer{
		Context:     ctx,
		Thread:      thread,
		Predeclared: predeclared,
		Registry:    env.registry,
		AllowSource: env.allowSource,
	}
	predeclared["json"] = json.Module
	predeclared["strict"] = starlark.Bool(env.strict)
	for name, value := range materializer.Builtins() {
		predeclared[name] = value
	}
	return predeclared, nil
}

func spawn(
	ctx context.Context,
	id uuid.UUID,
	program *starlark.Program,
	env contextEnv,
) *executionContext {
	c := &executionContext{
		id:     id,
		inbox:  make(chan []byte, 1),
		outbox: make(chan outcome, 1),
	}

	go func() {
		defer func() {
			if p := recover(); p != nil {
				c.outbox <- outcome{
					err: &Error{
						Phase:      PhaseRun,
						Invocation: id,
						Err:        fmt.Errorf("panic: %v", p),
					},
				}
			}
		}()

		thread := &starlark.Thread{
			Name: id.String(),
			Print: func(_ *starlark.Thread, msg string) {
				env.logger.InfoContext(ctx, "print", "message", msg)
			},
		}
		if env.maxSteps > 0 {
			thread.SetMaxExecutionSteps(env.maxSteps)
		}
		stop := context.AfterFunc(ctx, func() {
			thread.Cancel(context.Cause(ctx).Error())
		})
		defer stop()

		// instantiate
		predeclared, err := newEnvironment(ctx, thread, env)
		if err != nil {
			c.outbox <- outcome{err: &Error{Phase: PhaseConstruct, Invocation: id, Err: err}}
			return
		}
		globals, err := program.Init(thread, predeclared)
		if err != nil {
			c.outbox <- outcome{err: c.runError(ctx, PhaseConstruct, err)}
			return
		}
		entry, ok := globals["main"].(starlark.Callable)
		if !ok {
			c.outbox <- outcome{err: &Error{Phase: PhaseConstruct, Invocation: id, Err: errors.New("worker program has no main")}}
			return
		}

		// activate
		message, ok := <-c.inbox
		if !ok {
			return
		}
		result, err := starlark.Call(thread, entry, starlark.Tuple{starlark.String(message)}, nil)
		if err != nil {
			c.outbox <- outcome{err: c.runError(ctx, PhaseRun, err)}
			return
		}
		str, ok := starlark.AsString(result)
		if !ok {
			c.outbox <- outcome{err: &Error{Phase: PhaseRun, Invocation: id, Err: fmt.Errorf("worker program returned %s", result.Type())}}
			return
		}
		c.outbox <- outcome{data: []byte(str)}
	}()

	return c
}

func (c *executionContext) runError(ctx context.Context, phase Phase, err error) *Error {
	e := &Error{
		Phase:      phase,
		Invocation: c.id,
		Err:        err,
	}
	if ctx.Err() != nil {
		e.Phase = PhaseCancel
		e.Err = errors.Join(context.Cause(ctx), err)
	}
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		e.Backtrace = evalErr.Backtrace()
	}
	return e
}

// post delivers the only message this context will ever get.
func (c *executionContext) post(message []byte) {
	c.inbox <- message
	close(c.inbox)
}
