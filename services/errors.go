package services

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Kind classifies service failures so handlers can map each one to a
// distinct HTTP status.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindConflict      Kind = "conflict"
	KindNotFound      Kind = "not_found"
	KindAuthorization Kind = "authorization"
	KindInternal      Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func ValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func ConflictError(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func NotFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func AuthorizationError(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

func InternalError(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf extracts the kind of a service error; anything else counts as
// internal.
func KindOf(err error) Kind {
	var serr *Error
	if errors.As(err, &serr) {
		return serr.Kind
	}
	return KindInternal
}

// IsUniqueViolation reports whether err is a PostgreSQL
// unique-constraint violation (class 23505). Used to translate races on
// (guardian, child) and (child, date) into conflicts.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
