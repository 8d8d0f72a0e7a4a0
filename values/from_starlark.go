package values

import (
	"errors"
	"fmt"

	"go.starlark.net/starlark"
)

var ErrNotData = errors.New("not a data value")

// FromStarlark converts a Starlark value into plain Go data:
// nil, bool, int64, float64, string, []any and map[string]any.
// Callables and other opaque values are rejected, they cannot leave an execution context.
func FromStarlark(v starlark.Value) (any, error) {
	switch v := v.(type) {

	case starlark.NoneType:
		return nil, nil

	case starlark.Bool:
		return bool(v), nil

	case starlark.Int:
		if i, ok := v.Int64(); ok {
			return i, nil
		}
		return nil, fmt.Errorf("%w: integer %s overflows int64", ErrNotData, v)

	case starlark.Float:
		return float64(v), nil

	case starlark.String:
		return string(v), nil

	case starlark.Bytes:
		return string(v), nil

	case *starlark.List:
		return fromIterable(v, v.Len())

	case starlark.Tuple:
		return fromIterable(v, v.Len())

	case *starlark.Set:
		return fromIterable(v, v.Len())

	case *starlark.Dict:
		ret := make(map[string]any, v.Len())
		for _, item := range v.Items() {
			key, ok := starlark.AsString(item[0])
			if !ok {
				return nil, fmt.Errorf("%w: dict key %s is not a string", ErrNotData, item[0].Type())
			}
			value, err := FromStarlark(item[1])
			if err != nil {
				return nil, err
			}
			ret[key] = value
		}
		return ret, nil

	}

	return nil, fmt.Errorf("%w: %s", ErrNotData, v.Type())
}

func fromIterable(v starlark.Iterable, n int) ([]any, error) {
	ret := make([]any, 0, n)
	iter := v.Iterate()
	defer iter.Done()
	var elem starlark.Value
	for iter.Next(&elem) {
		value, err := FromStarlark(elem)
		if err != nil {
			return nil, err
		}
		ret = append(ret, value)
	}
	return ret, nil
}
