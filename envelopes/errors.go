package envelopes

import "errors"

var (
	ErrBadEnvelope    = errors.New("bad envelope")
	ErrNotCallable    = errors.New("not callable")
	ErrUnknownName    = errors.New("unknown function name")
	ErrSourceDisabled = errors.New("source envelopes are disabled")
	ErrDuplicatedName = errors.New("duplicated function name")
)
