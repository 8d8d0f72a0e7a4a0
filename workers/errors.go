package workers

import (
	"fmt"

	"github.com/google/uuid"
)

// Phase is where an invocation failed.
type Phase string

const (
	PhaseConstruct Phase = "construct"
	PhasePost      Phase = "post"
	PhaseRun       Phase = "run"
	PhaseCancel    Phase = "cancel"
)

// Error is the single failure of an invocation.
type Error struct {
	Phase      Phase
	Invocation uuid.UUID
	Err        error
	// Backtrace of the Starlark call stack, for run phase failures
	Backtrace string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invocation %s: %s: %v", e.Invocation, e.Phase, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
