package envelopes

import (
	"reflect"
)

// FieldKey marks an encoded envelope inside a transported container:
// {"$fn": {"kind": ..., "source": ...}}.
const FieldKey = "$fn"

// Encode replaces every Func or Envelope found in v with its container form.
// Slices, arrays and string keyed maps are walked; any other value is returned as is.
func Encode(v any) any {
	switch v := v.(type) {
	case nil:
		return nil
	case Func:
		return map[string]any{FieldKey: v.envelope}
	case *Func:
		if v == nil {
			return nil
		}
		return map[string]any{FieldKey: v.envelope}
	case Envelope:
		return map[string]any{FieldKey: v}
	case []byte:
		return v
	case []any:
		ret := make([]any, len(v))
		for i, elem := range v {
			ret[i] = Encode(elem)
		}
		return ret
	case map[string]any:
		ret := make(map[string]any, len(v))
		for key, elem := range v {
			ret[key] = Encode(elem)
		}
		return ret
	}

	value := reflect.ValueOf(v)
	switch value.Kind() {
	case reflect.Slice, reflect.Array:
		if value.Kind() == reflect.Slice && value.IsNil() {
			return v
		}
		ret := make([]any, value.Len())
		for i := range value.Len() {
			ret[i] = Encode(value.Index(i).Interface())
		}
		return ret
	case reflect.Map:
		if value.Type().Key().Kind() != reflect.String || value.IsNil() {
			return v
		}
		ret := make(map[string]any, value.Len())
		iter := value.MapRange()
		for iter.Next() {
			ret[iter.Key().String()] = Encode(iter.Value().Interface())
		}
		return ret
	}

	return v
}

// Decode is the inverse of Encode on JSON-decoded trees.
// Container envelopes and tagged strings become Func values, everything else is kept.
func Decode(v any) any {
	switch v := v.(type) {
	case string:
		return DecodeString(v)
	case []any:
		ret := make([]any, len(v))
		for i, elem := range v {
			ret[i] = Decode(elem)
		}
		return ret
	case map[string]any:
		if e, ok := envelopeFromMap(v); ok {
			return Func{envelope: e}
		}
		ret := make(map[string]any, len(v))
		for key, elem := range v {
			ret[key] = Decode(elem)
		}
		return ret
	}
	return v
}

// DecodeString returns a Func for a valid tagged string, or str itself.
func DecodeString(str string) any {
	if e, ok := ParseTagged(str); ok && e.Validate() == nil {
		return Func{envelope: e}
	}
	return str
}

// IsFunc reports whether v is a host-side callable value.
func IsFunc(v any) bool {
	switch v := v.(type) {
	case Func, Envelope:
		return true
	case *Func:
		return v != nil
	}
	return false
}

// AsEnvelope extracts the envelope of a callable value.
func AsEnvelope(v any) (Envelope, bool) {
	switch v := v.(type) {
	case Func:
		return v.envelope, true
	case *Func:
		if v != nil {
			return v.envelope, true
		}
	case Envelope:
		return v, true
	}
	return Envelope{}, false
}

func envelopeFromMap(m map[string]any) (Envelope, bool) {
	if len(m) != 1 {
		return Envelope{}, false
	}
	inner, ok := m[FieldKey].(map[string]any)
	if !ok {
		return Envelope{}, false
	}
	var e Envelope
	kind, _ := inner["kind"].(string)
	e.Kind = Kind(kind)
	e.Source, _ = inner["source"].(string)
	e.Name, _ = inner["name"].(string)
	if e.Validate() != nil {
		return Envelope{}, false
	}
	return e, true
}
