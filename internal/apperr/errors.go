package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure. Every error crossing a service boundary
// carries exactly one Kind; handlers map the Kind to an HTTP status.
type Kind int

const (
	// Unauthenticated: missing, malformed or expired credential.
	Unauthenticated Kind = iota
	// Forbidden: role or tenant-boundary violation within the caller's
	// own tenant. Cross-tenant reads report NotFound instead, so a
	// caller can never distinguish "exists elsewhere" from "absent".
	Forbidden
	// NotFound: entity absent or outside the caller's tenant.
	NotFound
	// Validation: malformed input or a cross-tenant reference in a
	// task's project/assignee.
	Validation
	// QuotaExceeded: the tenant's subscription limit is reached.
	QuotaExceeded
	// Conflict: duplicate email within a tenant or duplicate subdomain.
	Conflict
	// Internal: store or transport failure.
	Internal
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Validation:
		return "validation"
	case QuotaExceeded:
		return "quota_exceeded"
	case Conflict:
		return "conflict"
	default:
		return "internal"
	}
}

// HTTPStatus returns the status code a handler should respond with.
func (k Kind) HTTPStatus() int {
	switch k {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Validation:
		return http.StatusBadRequest
	case QuotaExceeded:
		return http.StatusForbidden
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified application error.
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

// New builds an error with the given kind and caller-facing message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from err, defaulting to Internal for
// unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf returns the caller-facing message for err. Unclassified
// errors yield a generic message so store details never leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
