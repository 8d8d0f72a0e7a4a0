package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Pending is the eventual outcome of one invocation. It settles exactly once.
type Pending struct {
	id     uuid.UUID
	done   chan struct{}
	once   sync.Once
	result json.RawMessage
	err    error
}

func newPending(id uuid.UUID) *Pending {
	return &Pending{
		id:   id,
		done: make(chan struct{}),
	}
}

func (p *Pending) ID() uuid.UUID {
	return p.id
}

// Done is closed when the invocation settles.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until settled and returns the result as JSON text.
func (p *Pending) Wait() (json.RawMessage, error) {
	<-p.done
	return p.result, p.err
}

// WaitContext is Wait that gives up when ctx is done. The invocation itself keeps running.
func (p *Pending) WaitContext(ctx context.Context) (json.RawMessage, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	}
}

// Then calls onResult or onError, in a new goroutine, after settlement. Either may be nil.
func (p *Pending) Then(onResult func(json.RawMessage), onError func(error)) {
	go func() {
		<-p.done
		if p.err != nil {
			if onError != nil {
				onError(p.err)
			}
			return
		}
		if onResult != nil {
			onResult(p.result)
		}
	}()
}

func (p *Pending) resolve(result []byte) bool {
	settled := false
	p.once.Do(func() {
		p.result = result
		close(p.done)
		settled = true
	})
	return settled
}

func (p *Pending) reject(err error) bool {
	settled := false
	p.once.Do(func() {
		p.err = err
		close(p.done)
		settled = true
	})
	return settled
}

// Await waits for p and decodes the result into T.
func Await[T any](p *Pending) (ret T, err error) {
	raw, err := p.Wait()
	if err != nil {
		return ret, err
	}
	if err := json.Unmarshal(raw, &ret); err != nil {
		return ret, fmt.Errorf("decode result of %s: %w", p.id, err)
	}
	return ret, nil
}
