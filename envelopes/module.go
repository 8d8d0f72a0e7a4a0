package envelopes

import "github.com/reusee/dscope"

type Module struct {
	dscope.Module
}

// Registry is empty by default; programs fork the scope with their own.
func (Module) Registry() *Registry {
	return NewRegistry()
}
