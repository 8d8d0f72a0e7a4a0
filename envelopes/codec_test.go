package envelopes

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSourceKind(t *testing.T) {
	require.Equal(t, KindExpression, Source("lambda x: x + 1").Envelope().Kind)
	require.Equal(t, KindDeclared, Source("def inc(x):\n    return x + 1").Envelope().Kind)
	require.Equal(t, KindDeclared, Source("\n  def inc(x):\n    return x + 1").Envelope().Kind)
	require.Equal(t, KindExpression, Source("define").Envelope().Kind)
	require.Equal(t, KindNamed, Ref("inc").Envelope().Kind)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Def("def f(x):\n    return x").Envelope().Validate())
	require.ErrorIs(t, Def("x = 1").Envelope().Validate(), ErrBadEnvelope)
	require.ErrorIs(t, Lambda("  ").Envelope().Validate(), ErrBadEnvelope)
	require.ErrorIs(t, Ref("not a name").Envelope().Validate(), ErrBadEnvelope)
	require.ErrorIs(t, Envelope{Kind: "foo"}.Validate(), ErrBadEnvelope)
}

func TestTagged(t *testing.T) {
	tagged, ok := Lambda("lambda x: x * 2").Envelope().Tagged()
	require.True(t, ok)
	require.Equal(t, "arrowfn lambda x: x * 2", tagged)
	require.Equal(t, MarkerWidth, len(MarkerExpression))
	require.Equal(t, MarkerWidth, len(MarkerDeclared))

	e, ok := ParseTagged(tagged)
	require.True(t, ok)
	require.Equal(t, Lambda("lambda x: x * 2").Envelope(), e)

	src := "def f(x):\n    return x"
	tagged, ok = Def(src).Envelope().Tagged()
	require.True(t, ok)
	require.Equal(t, "function"+src, tagged)
	e, ok = ParseTagged(tagged)
	require.True(t, ok)
	require.Equal(t, KindDeclared, e.Kind)
	require.Equal(t, src, e.Source)

	_, ok = Ref("f").Envelope().Tagged()
	require.False(t, ok)

	// short or unknown strings are data
	for _, str := range []string{"", "arrowfn", "functio", "hello world"} {
		_, ok := ParseTagged(str)
		require.False(t, ok, str)
	}

	// prefix sniffing cannot tell a word from a marker
	e, ok = ParseTagged("functional")
	require.True(t, ok)
	require.Equal(t, "al", e.Source)
}

func TestEncodeDecode(t *testing.T) {
	in := map[string]any{
		"steps": []any{
			Lambda("lambda x: x + 1"),
			Ref("double"),
			42,
		},
		"typed": []Func{Def("def f(x):\n    return x")},
		"bytes": []byte("raw"),
		"plain": "short",
	}

	encoded := Encode(in)
	bs, err := json.Marshal(encoded)
	require.NoError(t, err)

	var tree any
	require.NoError(t, json.Unmarshal(bs, &tree))
	decoded := Decode(tree).(map[string]any)

	steps := decoded["steps"].([]any)
	require.Len(t, steps, 3)
	require.Equal(t, Lambda("lambda x: x + 1"), steps[0])
	require.Equal(t, Ref("double"), steps[1])
	require.Equal(t, float64(42), steps[2])
	require.Equal(t, []any{Def("def f(x):\n    return x")}, decoded["typed"])
	require.Equal(t, "short", decoded["plain"])
}

func TestEncodePassThrough(t *testing.T) {
	require.Equal(t, 1, Encode(1))
	require.Nil(t, Encode(nil))
	type point struct{ X int }
	require.Equal(t, point{X: 1}, Encode(point{X: 1}))
	require.Equal(t, map[int]string{1: "a"}, Encode(map[int]string{1: "a"}))
}

func TestDecodeKeepsLookalikes(t *testing.T) {
	// an object with extra keys or a malformed body is data
	v := map[string]any{
		FieldKey: map[string]any{"kind": "expression", "source": "lambda x: x"},
		"other":  1,
	}
	require.Equal(t, v, Decode(v))

	v = map[string]any{
		FieldKey: map[string]any{"kind": "nope"},
	}
	require.Equal(t, v, Decode(v))
}

func TestIsFunc(t *testing.T) {
	f := Lambda("lambda x: x")
	require.True(t, IsFunc(f))
	require.True(t, IsFunc(&f))
	require.True(t, IsFunc(f.Envelope()))
	require.False(t, IsFunc((*Func)(nil)))
	require.False(t, IsFunc("lambda x: x"))
	require.False(t, IsFunc(func(x int) int { return x }))

	e, ok := AsEnvelope(&f)
	require.True(t, ok)
	require.Equal(t, f.Envelope(), e)
}
