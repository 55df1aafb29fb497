// Package errs defines the error taxonomy shared by every sealproof package.
//
// The shape mirrors consensus.TxError from the rubin-protocol teacher: a
// closed set of string codes plus a free-form detail message, formatted as
// "<kind>: <detail>".
package errs

import "fmt"

// Kind is one of the error kinds fixed by the proof framework's error
// taxonomy. Every Error raised by this module carries exactly one Kind.
type Kind string

const (
	// KindSerializerType: an attribute supplied at construction does not
	// satisfy its serializer's type check.
	KindSerializerType Kind = "SerializerType"

	// KindFormat: the decoder encountered an illegal byte, overlong varuint,
	// truncated input, trailing garbage, or a bad length.
	KindFormat Kind = "Format"

	// KindImmutable: an attempt to assign to or delete an attribute of a
	// constructed proof value.
	KindImmutable Kind = "Immutable"

	// KindPruned: attribute access on a fully-pruned value without a
	// back-reference.
	KindPruned Kind = "Pruned"

	// KindUnionVariant: a deserialized variant index is out of range for the
	// union, or construction received a value whose class is not in the
	// union.
	KindUnionVariant Kind = "UnionVariant"

	// KindWitnessMismatch: a seal witness failed its structural checks.
	KindWitnessMismatch Kind = "WitnessMismatch"

	// KindDigestMismatch: a seal witness's closing scriptPubKey does not
	// match any accepted template for the given digest.
	KindDigestMismatch Kind = "DigestMismatch"
)

// Error is the concrete error type raised across the proof framework.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// New constructs an *Error with the given kind and a formatted detail.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Is reports whether err is an *Error of the given kind. It checks err
// itself by type assertion; an *Error wrapped inside another error is not
// matched.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
