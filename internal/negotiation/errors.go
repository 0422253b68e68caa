package negotiation

import (
	"errors"
	"fmt"
)

// Sentinels returned by Repository implementations.
var (
	ErrNotFound = errors.New("negotiation not found")
	ErrConflict = errors.New("negotiation was modified concurrently")
)

// Kind categorizes errors returned across the service boundary.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindNotFound         Kind = "not_found"
	KindPermissionDenied Kind = "permission_denied"
	KindConflict         Kind = "conflict"
	KindInternal         Kind = "internal"
)

// Error is the typed error every Service operation returns on failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind carried by err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func validationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func permissionError(msg string) *Error {
	return &Error{Kind: KindPermissionDenied, Message: msg}
}

func conflictError(err error) *Error {
	return &Error{Kind: KindConflict, Message: "negotiation was just updated, please refresh", Err: err}
}

func internalError(op string, err error) *Error {
	return &Error{Kind: KindInternal, Message: op, Err: err}
}
