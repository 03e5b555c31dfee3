package storage

import (
	"errors"
	"fmt"
)

// Kind categorises a storage error without exposing backend-specific codes.
// Every backend maps its native errors to one of these kinds, giving
// handlers a single consistent API to translate into HTTP status codes.
type Kind int

const (
	KindUnknown      Kind = iota
	KindInvalidInput      // missing or malformed required parameter
	KindNotFound          // object or multipart session cannot be found
	KindConflict          // e.g. non-recursive delete of a non-empty prefix
	KindBackend           // the object storage backend itself failed
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindBackend:
		return "backend"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by the storage layer and the
// gateway built on top of it. Backends produce it; handlers inspect it via
// the Is* predicates below.
type Error struct {
	Kind    Kind
	Message string
	Cause   error // original backend-level error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates an *Error with the given kind and message and no cause.
func NewError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// WrapError creates an *Error with an underlying cause.
func WrapError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return KindOf(err) == KindInvalidInput
}

// IsNotFound reports whether err represents a missing object or a multipart
// session that cannot be resumed.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsConflict reports whether err represents a guarded operation that was
// refused, such as deleting a non-empty prefix without recursive set.
func IsConflict(err error) bool {
	return KindOf(err) == KindConflict
}

// IsBackend reports whether err is a backend operation failure.
func IsBackend(err error) bool {
	return KindOf(err) == KindBackend
}

// KindOf extracts the Kind from any error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
