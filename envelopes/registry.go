package envelopes

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/reusee/bgpipe/values"
	"go.starlark.net/starlark"
)

// NamedFunc is a Go step referenced by name. It receives and returns plain data
// (see values.FromStarlark) and must be safe for concurrent use.
type NamedFunc func(ctx context.Context, arg any) (any, error)

// Registry holds the Go functions visible in every execution context:
// named steps, and helpers predeclared as Starlark builtins.
type Registry struct {
	mu      sync.RWMutex
	funcs   map[string]NamedFunc
	helpers map[string]any
	trusted map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{
		funcs:   make(map[string]NamedFunc),
		helpers: make(map[string]any),
		trusted: make(map[string]bool),
	}
}

func (r *Registry) Register(name string, fn NamedFunc) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: bad name %q", ErrBadEnvelope, name)
	}
	if fn == nil {
		return fmt.Errorf("%w: nil function %s", ErrNotCallable, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.funcs[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatedName, name)
	}
	r.funcs[name] = fn
	return nil
}

func (r *Registry) MustRegister(name string, fn NamedFunc) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

func (r *Registry) Lookup(name string) (NamedFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.funcs))
}

// Helper predeclares fn under name in every context, with its Go signature.
func (r *Registry) Helper(name string, fn any) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: bad name %q", ErrBadEnvelope, name)
	}
	if reflect.TypeOf(fn) == nil || reflect.TypeOf(fn).Kind() != reflect.Func {
		return fmt.Errorf("%w: helper %s is %T", ErrNotCallable, name, fn)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.helpers[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatedName, name)
	}
	r.helpers[name] = fn
	return nil
}

// Trust allows source to be materialized even where source envelopes are disabled.
func (r *Registry) Trust(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trusted[source] = true
}

func (r *Registry) Trusted(source string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.trusted[source]
}

// Predeclared converts helpers into Starlark builtins for one context.
func (r *Registry) Predeclared() (starlark.StringDict, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret := make(starlark.StringDict, len(r.helpers))
	for name, fn := range r.helpers {
		value, err := values.ToStarlark(fn)
		if err != nil {
			return nil, fmt.Errorf("helper %s: %w", name, err)
		}
		ret[name] = value
	}
	return ret, nil
}
