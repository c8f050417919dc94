package lca

import "fmt"

// Kind classifies an Error.
type Kind int

const (
	KindMissingField Kind = iota + 1 // a required field is empty
	KindInvalid                      // a field is present but unusable
	KindBackend                      // the PDF backend failed
	KindEnvironment                  // generation is not possible here (fonts, output location)
)

func (k Kind) String() string {
	switch k {
	case KindMissingField:
		return "missing field"
	case KindInvalid:
		return "invalid field"
	case KindBackend:
		return "rendering failed"
	case KindEnvironment:
		return "unsupported environment"
	default:
		return "unknown"
	}
}

// Error is the only error type returned by the exporter entry points.
type Error struct {
	Kind  Kind
	Field string // set for KindMissingField and KindInvalid
	Err   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMissingField:
		return fmt.Sprintf("missing required field: %s", e.Field)
	case KindInvalid:
		if e.Err != nil {
			return fmt.Sprintf("invalid field %s: %v", e.Field, e.Err)
		}
		return fmt.Sprintf("invalid field: %s", e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("failed to generate LCA document: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("failed to generate LCA document: %s", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func backendError(err error) error {
	return &Error{Kind: KindBackend, Err: err}
}

func environmentError(err error) error {
	return &Error{Kind: KindEnvironment, Err: err}
}
