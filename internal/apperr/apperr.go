// Package apperr defines the error kinds surfaced to users of the planner.
//
// Every error that reaches a handler or the workspace carries a Kind, a
// localized message safe to show in the UI and, when available, the
// underlying cause for logs.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure by how the application reacts to it.
type Kind string

const (
	AuthFailure           Kind = "auth_failure"
	StorageUnavailable    Kind = "storage_unavailable"
	PersistenceFailure    Kind = "persistence_failure"
	GenerationFormatError Kind = "generation_format_error"
	GenerationFailure     Kind = "generation_failure"
	MalformedInput        Kind = "malformed_input"
	NotFound              Kind = "not_found"
)

// DefaultMessage is shown when an error carries no localized message.
const DefaultMessage = "Ocurrió un error inesperado. Por favor, inténtalo de nuevo."

// Error is an application error with a user-facing message.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, &apperr.Error{Kind: apperr.NotFound}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// HTTPStatus maps the error kind to a response status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case MalformedInput:
		return http.StatusBadRequest
	case AuthFailure:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case GenerationFormatError, GenerationFailure:
		return http.StatusBadGateway
	case StorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// New creates an error without an underlying cause.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap creates an error around cause. A nil cause yields nil.
func Wrap(kind Kind, op, message string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Message: message, Err: cause}
}

// Sentinel returns a matcher usable with errors.Is for the given kind.
func Sentinel(kind Kind) error {
	return &Error{Kind: kind}
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err's chain contains an *Error of kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// UserMessage returns the localized message of err, falling back to
// DefaultMessage.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return DefaultMessage
}

// StatusOf returns the HTTP status for err.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}
