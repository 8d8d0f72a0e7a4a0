package envelopes

import (
	"context"
	"fmt"

	"github.com/reusee/bgpipe/values"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// FileOptions is the dialect step source is parsed with.
var FileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	Recursion:       true,
}

// Materializer turns envelopes back into callables inside one execution context.
// Source is compiled against Predeclared only, so free variables of the encoded
// function are unresolved here.
type Materializer struct {
	Context     context.Context
	Thread      *starlark.Thread
	Predeclared starlark.StringDict
	Registry    *Registry
	AllowSource bool

	// identical envelopes share one callable
	cache map[Envelope]starlark.Callable
}

// Materialize returns the callable of e. Not safe for concurrent use, like the thread it runs on.
func (m *Materializer) Materialize(e Envelope) (starlark.Callable, error) {
	if fn, ok := m.cache[e]; ok {
		return fn, nil
	}
	fn, err := m.materialize(e)
	if err != nil {
		return nil, err
	}
	if m.cache == nil {
		m.cache = make(map[Envelope]starlark.Callable)
	}
	m.cache[e] = fn
	return fn, nil
}

func (m *Materializer) materialize(e Envelope) (starlark.Callable, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	switch e.Kind {

	case KindDeclared:
		if !m.sourceAllowed(e.Source) {
			return nil, ErrSourceDisabled
		}
		name, _ := entryName(e.Source)
		globals, err := starlark.ExecFileOptions(FileOptions, m.Thread, "<declared "+name+">", e.Source, m.Predeclared)
		if err != nil {
			return nil, fmt.Errorf("materialize %s: %w", name, err)
		}
		fn, ok := globals[name].(starlark.Callable)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotCallable, name)
		}
		return fn, nil

	case KindExpression:
		if !m.sourceAllowed(e.Source) {
			return nil, ErrSourceDisabled
		}
		value, err := starlark.EvalOptions(FileOptions, m.Thread, "<expression>", e.Source, m.Predeclared)
		if err != nil {
			return nil, fmt.Errorf("materialize expression: %w", err)
		}
		fn, ok := value.(starlark.Callable)
		if !ok {
			return nil, fmt.Errorf("%w: expression yields %s", ErrNotCallable, value.Type())
		}
		return fn, nil

	case KindNamed:
		if m.Registry == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownName, e.Name)
		}
		fn, ok := m.Registry.Lookup(e.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownName, e.Name)
		}
		return m.bindNamed(e.Name, fn), nil

	}

	return nil, fmt.Errorf("%w: unknown kind %q", ErrBadEnvelope, e.Kind)
}

func (m *Materializer) sourceAllowed(source string) bool {
	return m.AllowSource || m.Registry != nil && m.Registry.Trusted(source)
}

func (m *Materializer) bindNamed(name string, fn NamedFunc) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var arg starlark.Value = starlark.None
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0, &arg); err != nil {
			return nil, err
		}
		in, err := values.FromStarlark(arg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		ctx := m.Context
		if ctx == nil {
			ctx = context.Background()
		}
		out, err := fn(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return values.ToStarlark(out)
	})
}

// Decode is the in-context counterpart of the host Decode, for a single value:
// a container envelope or a tagged string becomes a callable, any other value is returned as is.
// Envelopes that fail validation are data too.
func (m *Materializer) Decode(v starlark.Value) (starlark.Value, error) {
	switch v := v.(type) {

	case *starlark.Dict:
		if v.Len() != 1 {
			return v, nil
		}
		if _, found, _ := v.Get(starlark.String(FieldKey)); !found {
			return v, nil
		}
		data, err := values.FromStarlark(v)
		if err != nil {
			return v, nil
		}
		e, ok := envelopeFromMap(data.(map[string]any))
		if !ok {
			return v, nil
		}
		return m.Materialize(e)

	case starlark.String:
		e, ok := ParseTagged(string(v))
		if !ok || e.Validate() != nil {
			return v, nil
		}
		return m.Materialize(e)

	}
	return v, nil
}

// Builtins returns the decode and is_callable builtins bound to m.
func (m *Materializer) Builtins() starlark.StringDict {
	return starlark.StringDict{
		"decode": starlark.NewBuiltin("decode", func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var v starlark.Value
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &v); err != nil {
				return nil, err
			}
			return m.Decode(v)
		}),
		"is_callable": starlark.NewBuiltin("is_callable", func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var v starlark.Value
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &v); err != nil {
				return nil, err
			}
			_, ok := v.(starlark.Callable)
			return starlark.Bool(ok), nil
		}),
	}
}
