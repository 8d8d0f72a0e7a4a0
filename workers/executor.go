package workers

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/reusee/bgpipe/envelopes"
	"github.com/reusee/bgpipe/logs"
	"github.com/reusee/bgpipe/syncs"
	"go.starlark.net/starlark"
)

//go:embed worker.star
var workerSource string

type Options struct {
	// MaxContexts caps live execution contexts, 0 for no cap. Invocations over the cap wait.
	MaxContexts int
	// Timeout bounds one invocation, 0 for no bound
	Timeout time.Duration
	// MaxSteps bounds Starlark execution steps of one invocation, 0 for no bound
	MaxSteps    uint64
	Strict      bool
	AllowSource bool
}

func DefaultOptions() Options {
	return Options{
		AllowSource: true,
	}
}

type Executor struct {
	options  Options
	registry *envelopes.Registry
	logger   logs.Logger
	newSpan  logs.NewSpan
	metrics  *Metrics
	slots    syncs.Semaphore
	program  string
}

func New(
	options Options,
	registry *envelopes.Registry,
	logger logs.Logger,
	newSpan logs.NewSpan,
	metrics *Metrics,
) *Executor {
	if registry == nil {
		registry = envelopes.NewRegistry()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Executor{
		options:  options,
		registry: registry,
		logger:   logger,
		newSpan:  newSpan,
		metrics:  metrics,
		slots:    syncs.NewSemaphore(options.MaxContexts),
		program:  workerSource,
	}
}

func (e *Executor) Options() Options {
	return e.options
}

func (e *Executor) Registry() *envelopes.Registry {
	return e.registry
}

// Invoke runs fn(params) in a new execution context and returns without waiting.
// A fn that is not a function settles at once with fn itself as the result.
func (e *Executor) Invoke(ctx context.Context, fn any, params any) *Pending {
	pending := newPending(uuid.New())

	if _, ok := envelopes.AsEnvelope(fn); !ok {
		data, err := json.Marshal(envelopes.Encode(fn))
		if err != nil {
			e.metrics.Invocations.WithLabelValues(outcomeFailure).Inc()
			pending.reject(&Error{Phase: PhasePost, Invocation: pending.id, Err: err})
			return pending
		}
		e.metrics.Invocations.WithLabelValues(outcomeLiteral).Inc()
		pending.resolve(data)
		return pending
	}

	// serialized now so later changes to params by the caller are not observed
	message, err := json.Marshal(Message{
		Fn:     envelopes.Encode(fn),
		Params: envelopes.Encode(params),
	})
	if err != nil {
		e.metrics.Invocations.WithLabelValues(outcomeFailure).Inc()
		pending.reject(&Error{Phase: PhasePost, Invocation: pending.id, Err: fmt.Errorf("encode message: %w", err)})
		return pending
	}

	go e.run(ctx, pending, message)
	return pending
}

func (e *Executor) run(ctx context.Context, pending *Pending, message []byte) {
	if e.newSpan != nil {
		ctx, _ = e.newSpan(ctx, "")
	}
	if e.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, e.options.Timeout, fmt.Errorf("invocation timeout after %v", e.options.Timeout))
		defer cancel()
	}
	start := time.Now()
	id := pending.id

	settle := func(result []byte, err *Error) {
		e.metrics.Duration.Observe(time.Since(start).Seconds())
		if err != nil {
			if err.Phase == PhaseCancel {
				e.metrics.Invocations.WithLabelValues(outcomeCancel).Inc()
			} else {
				e.metrics.Invocations.WithLabelValues(outcomeFailure).Inc()
			}
			e.logger.DebugContext(ctx, "reject",
				"invocation", id,
				"phase", err.Phase,
				"error", err.Err,
			)
			pending.reject(logs.WrapSpan(ctx, err))
			return
		}
		e.metrics.Invocations.WithLabelValues(outcomeSuccess).Inc()
		e.logger.DebugContext(ctx, "resolve",
			"invocation", id,
			"bytes", len(result),
		)
		pending.resolve(result)
	}

	// admission
	e.metrics.Queued.Inc()
	err := e.slots.Acquire(ctx)
	e.metrics.Queued.Dec()
	if err != nil {
		settle(nil, &Error{Phase: PhaseCancel, Invocation: id, Err: context.Cause(ctx)})
		return
	}

	transport, err := e.newHandle()
	if err != nil {
		e.slots.Release()
		settle(nil, &Error{Phase: PhaseConstruct, Invocation: id, Err: err})
		return
	}

	c := spawn(ctx, id, transport.program, e.contextEnv())
	e.metrics.LiveContexts.Inc()
	e.logger.DebugContext(ctx, "spawn", "invocation", id)

	c.post(message)
	transport.revoke()
	e.logger.DebugContext(ctx, "post", "invocation", id, "bytes", len(message))

	select {
	case out := <-c.outbox:
		e.metrics.LiveContexts.Dec()
		e.slots.Release()
		if out.err != nil {
			settle(nil, out.err)
			return
		}
		settle(out.data, nil)

	case <-ctx.Done():
		// the context observes the same cancellation and exits by itself. It keeps its slot until then.
		go func() {
			<-c.outbox
			e.metrics.LiveContexts.Dec()
			e.slots.Release()
		}()
		settle(nil, &Error{Phase: PhaseCancel, Invocation: id, Err: context.Cause(ctx)})
	}
}

// handle is the per-call means of instantiating a context. It is revoked once the message is posted.
type handle struct {
	program *starlark.Program
}

func (h *handle) revoke() {
	h.program = nil
}

func (e *Executor) newHandle() (*handle, error) {
	names := slices.Clone(predeclaredNames)
	predeclared, err := e.registry.Predeclared()
	if err != nil {
		return nil, err
	}
	for name := range predeclared {
		names = append(names, name)
	}
	_, program, err := starlark.SourceProgramOptions(
		envelopes.FileOptions,
		"worker.star",
		e.program,
		func(name string) bool {
			return slices.Contains(names, name)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("compile worker program: %w", err)
	}
	return &handle{
		program: program,
	}, nil
}

// Environment returns the predeclared names an execution context of e would have, bound to thread.
func (e *Executor) Environment(ctx context.Context, thread *starlark.Thread) (starlark.StringDict, error) {
	return newEnvironment(ctx, thread, e.contextEnv())
}

func (e *Executor) contextEnv() contextEnv {
	return contextEnv{
		logger:      e.logger,
		registry:    e.registry,
		allowSource: e.options.AllowSource,
		strict:      e.options.Strict,
		maxSteps:    e.options.MaxSteps,
	}
}
