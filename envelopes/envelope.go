package envelopes

import (
	"fmt"
	"regexp"
	"strings"
)

type Kind string

const (
	// KindDeclared is Starlark source starting with a def statement.
	// The first top-level def is the entry point, later defs may be helpers.
	KindDeclared Kind = "declared"
	// KindExpression is a Starlark expression evaluating to a callable, usually a lambda.
	KindExpression Kind = "expression"
	// KindNamed refers to a Go function registered in a Registry.
	KindNamed Kind = "named"
)

// Envelope is the transportable form of a callable.
type Envelope struct {
	Kind   Kind   `json:"kind"`
	Source string `json:"source,omitempty"`
	Name   string `json:"name,omitempty"`
}

func (e Envelope) Validate() error {
	switch e.Kind {
	case KindDeclared:
		if _, ok := entryName(e.Source); !ok {
			return fmt.Errorf("%w: declared source has no top-level def", ErrBadEnvelope)
		}
	case KindExpression:
		if strings.TrimSpace(e.Source) == "" {
			return fmt.Errorf("%w: empty expression", ErrBadEnvelope)
		}
	case KindNamed:
		if !namePattern.MatchString(e.Name) {
			return fmt.Errorf("%w: bad name %q", ErrBadEnvelope, e.Name)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrBadEnvelope, e.Kind)
	}
	return nil
}

var (
	defPattern  = regexp.MustCompile(`(?m)^def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
	namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
)

func entryName(source string) (string, bool) {
	match := defPattern.FindStringSubmatch(source)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// Func is a callable value on the host side. It carries only its envelope:
// nothing it may have captured travels with it.
type Func struct {
	envelope Envelope
}

func Lambda(source string) Func {
	return Func{
		envelope: Envelope{
			Kind:   KindExpression,
			Source: source,
		},
	}
}

func Def(source string) Func {
	return Func{
		envelope: Envelope{
			Kind:   KindDeclared,
			Source: source,
		},
	}
}

// Source picks the kind from the text: a leading def keyword means declared form.
func Source(source string) Func {
	if isDeclared(source) {
		return Def(source)
	}
	return Lambda(source)
}

func Ref(name string) Func {
	return Func{
		envelope: Envelope{
			Kind: KindNamed,
			Name: name,
		},
	}
}

func isDeclared(source string) bool {
	trimmed := strings.TrimLeft(source, " \t\r\n")
	return strings.HasPrefix(trimmed, "def ") || strings.HasPrefix(trimmed, "def\t")
}

func (f Func) Envelope() Envelope {
	return f.envelope
}

func (f Func) String() string {
	if f.envelope.Kind == KindNamed {
		return "named:" + f.envelope.Name
	}
	return string(f.envelope.Kind) + ":" + f.envelope.Source
}

// FromEnvelope wraps e as a Func.
func FromEnvelope(e Envelope) Func {
	return Func{
		envelope: e,
	}
}
