// Package apperr holds the error kinds shared by the domain packages. Each
// domain declares its own sentinel errors on top of these kinds so the HTTP
// layer can map any of them to a status code with errors.Is / errors.As.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// kindError carries a user-facing message while matching one of the kinds above.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func NotFound(msg string) error { return &kindError{kind: ErrNotFound, msg: msg} }

func Conflict(msg string) error { return &kindError{kind: ErrConflict, msg: msg} }

func Unauthorized(msg string) error { return &kindError{kind: ErrUnauthorized, msg: msg} }

func Forbidden(msg string) error { return &kindError{kind: ErrForbidden, msg: msg} }

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// PreconditionError reports a well-formed request that a business rule rejects,
// such as an RSVP to an event that already happened.
type PreconditionError struct {
	Message string
}

func (e PreconditionError) Error() string {
	return e.Message
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

// IsPrecondition reports whether err is (or wraps) a PreconditionError.
func IsPrecondition(err error) bool {
	var target PreconditionError
	return errors.As(err, &target)
}

// Message returns the user-facing text of the first classified error in err's
// chain, dropping any wrapping context added on the way up. ok is false when
// err carries no classified error.
func Message(err error) (msg string, ok bool) {
	var kind *kindError
	if errors.As(err, &kind) {
		return kind.msg, true
	}
	var verr ValidationError
	if errors.As(err, &verr) {
		return verr.Error(), true
	}
	var perr PreconditionError
	if errors.As(err, &perr) {
		return perr.Message, true
	}
	return "", false
}
