package envelopes

import "strings"

// The tagged string form is a fixed-width marker followed by source text.
const (
	MarkerWidth      = 8
	MarkerDeclared   = "function"
	MarkerExpression = "arrowfn "
)

// Tagged renders e in the tagged string form. Named envelopes have no such form.
func (e Envelope) Tagged() (string, bool) {
	switch e.Kind {
	case KindDeclared:
		return MarkerDeclared + e.Source, true
	case KindExpression:
		return MarkerExpression + e.Source, true
	}
	return "", false
}

// ParseTagged reads the tagged string form. Strings shorter than the marker width,
// or without a known marker, are data and report false.
func ParseTagged(str string) (Envelope, bool) {
	if len(str) < MarkerWidth {
		return Envelope{}, false
	}
	marker, source := str[:MarkerWidth], str[MarkerWidth:]
	switch marker {
	case MarkerDeclared:
		return Envelope{
			Kind:   KindDeclared,
			Source: source,
		}, true
	case MarkerExpression:
		return Envelope{
			Kind:   KindExpression,
			Source: strings.TrimLeft(source, " "),
		}, true
	}
	return Envelope{}, false
}
