package values

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
)

func TestToStarlark(t *testing.T) {
	type testStruct struct {
		Exported   string
		unexported int
	}

	ptrStruct := &testStruct{
		Exported:   "hello",
		unexported: 42,
	}

	dict := func(kvs ...any) starlark.Value {
		d := starlark.NewDict(len(kvs) / 2)
		for i := 0; i < len(kvs); i += 2 {
			d.SetKey(kvs[i].(starlark.Value), kvs[i+1].(starlark.Value))
		}
		return d
	}

	testCases := []struct {
		name     string
		input    any
		expected starlark.Value
	}{
		{"nil", nil, starlark.None},
		{"bool", true, starlark.True},
		{"bytes", []byte("abc"), starlark.Bytes("abc")},
		{"string", "hello", starlark.String("hello")},
		{"int", 42, starlark.MakeInt(42)},
		{"int8", int8(42), starlark.MakeInt(42)},
		{"uint16", uint16(42), starlark.MakeInt(42)},
		{"float64", 3.5, starlark.Float(3.5)},
		{"json int", json.Number("8"), starlark.MakeInt(8)},
		{"json float", json.Number("0.5"), starlark.Float(0.5)},
		{"[]any", []any{1, "a", true}, starlark.NewList([]starlark.Value{starlark.MakeInt(1), starlark.String("a"), starlark.True})},
		{"[]int", []int{1, 2}, starlark.NewList([]starlark.Value{starlark.MakeInt(1), starlark.MakeInt(2)})},
		{"map[string]any", map[string]any{"prop": "prop"}, dict(starlark.String("prop"), starlark.String("prop"))},
		{"map[int]bool", map[int]bool{1: true}, dict(starlark.MakeInt(1), starlark.True)},
		{"struct", testStruct{Exported: "hello"}, dict(starlark.String("Exported"), starlark.String("hello"))},
		{"pointer", ptrStruct, dict(starlark.String("Exported"), starlark.String("hello"))},
		{"nil pointer", (*testStruct)(nil), starlark.None},
		{"starlark value", starlark.String("x"), starlark.String("x")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := ToStarlark(tc.input)
			require.NoError(t, err)
			equal, err := starlark.Equal(actual, tc.expected)
			require.NoError(t, err)
			require.True(t, equal, "ToStarlark(%#v) = %v, want %v", tc.input, actual, tc.expected)
		})
	}

	_, err := ToStarlark(make(chan bool))
	require.Error(t, err)
}

func TestFromStarlark(t *testing.T) {
	d := starlark.NewDict(2)
	d.SetKey(starlark.String("a"), starlark.NewList([]starlark.Value{starlark.MakeInt(1), starlark.Float(1.5)}))
	d.SetKey(starlark.String("b"), starlark.Tuple{starlark.None, starlark.True, starlark.String("s")})

	v, err := FromStarlark(d)
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"a": []any{int64(1), 1.5},
		"b": []any{nil, true, "s"},
	}, v)

	bad := starlark.NewDict(1)
	bad.SetKey(starlark.MakeInt(1), starlark.None)
	_, err = FromStarlark(bad)
	require.True(t, errors.Is(err, ErrNotData))

	fn := starlark.NewBuiltin("f", nil)
	_, err = FromStarlark(fn)
	require.True(t, errors.Is(err, ErrNotData))
}

func TestRoundTrip(t *testing.T) {
	in := map[string]any{
		"list": []any{int64(1), "two", 3.0},
		"nested": map[string]any{
			"ok": true,
		},
	}
	sv, err := ToStarlark(in)
	require.NoError(t, err)
	out, err := FromStarlark(sv)
	require.NoError(t, err)
	require.Equal(t, in, out)
}
