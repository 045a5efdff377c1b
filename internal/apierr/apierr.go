// Package apierr defines the tagged error variant surfaced to API clients.
// Expected failures carry a kind, a client-safe message and an HTTP status;
// anything else is masked behind a generic internal error.
package apierr

import (
	"errors"
	"net/http"

	"github.com/avoronov/account-service/internal/model"
)

// Kind classifies an API-visible failure.
type Kind int

const (
	// KindInternal is an unexpected failure; its detail is never sent to
	// the client.
	KindInternal Kind = iota
	// KindValidation is bad input or a policy violation.
	KindValidation
	// KindAuth is a missing, invalid or expired credential.
	KindAuth
	// KindAuthz is a role mismatch or detected token reuse.
	KindAuthz
	// KindNotFound is a missing resource.
	KindNotFound
	// KindConflict is a uniqueness violation such as a duplicate email.
	KindConflict
)

func (k Kind) status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindAuthz:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a typed API error carrying kind, client message and HTTP status.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Operational reports whether the error is an expected failure whose
// message may be sent to the client verbatim.
func (e *Error) Operational() bool {
	return e.Kind != KindInternal
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Status: kind.status()}
}

// Validation builds a 400 bad-input error.
func Validation(message string) *Error { return newError(KindValidation, message) }

// Auth builds a 401 credential error.
func Auth(message string) *Error { return newError(KindAuth, message) }

// Authz builds a 403 permission error.
func Authz(message string) *Error { return newError(KindAuthz, message) }

// NotFound builds a 404 missing-resource error.
func NotFound(message string) *Error { return newError(KindNotFound, message) }

// Conflict builds a 400 uniqueness-violation error.
func Conflict(message string) *Error { return newError(KindConflict, message) }

// Internal wraps an unexpected error. The cause is kept for server-side
// logging only.
func Internal(err error) *Error {
	e := newError(KindInternal, "something went wrong")
	e.Err = err
	return e
}

// From maps an arbitrary error to an *Error. Known model sentinels get a
// matching kind; an *Error passes through; anything else becomes Internal.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return NotFound("record not found")
	case errors.Is(err, model.ErrDuplicateEmail):
		return Conflict("email already exists, please use another email")
	case errors.Is(err, model.ErrTokenExpired):
		return Auth("your token has expired, please log in again")
	case errors.Is(err, model.ErrTokenMalformed), errors.Is(err, model.ErrTokenSignature):
		return Auth("invalid token, please log in again")
	default:
		return Internal(err)
	}
}
