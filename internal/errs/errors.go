// Package errs defines the error kinds shared by every service and the HTTP layer.
//
// Each kind is a sentinel that callers match with errors.Is. The constructors attach a
// human readable message and, for storage failures, the underlying cause.
package errs

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrValidation reports malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrAlreadyReserved reports a lost reservation race or an already taken gift.
	ErrAlreadyReserved = errors.New("gift already reserved")
	// ErrAuthorization reports a failed role check.
	ErrAuthorization = errors.New("not authorized")
	// ErrNotFound reports a referenced id that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStorage reports an unavailable persistence or blob backend.
	ErrStorage = errors.New("storage unavailable")
	// ErrUnauthenticated reports a missing, invalid, expired or revoked credential.
	ErrUnauthenticated = errors.New("authentication required")
)

var kinds = []error{
	ErrValidation,
	ErrAlreadyReserved,
	ErrAuthorization,
	ErrNotFound,
	ErrStorage,
	ErrUnauthenticated,
}

// Error carries a kind, a message and an optional cause.
type Error struct {
	kind  error
	msg   string
	cause error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.kind.Error())
	if e.msg != "" {
		b.WriteString(": ")
		b.WriteString(e.msg)
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

// Message returns the message without the kind prefix or cause.
func (e *Error) Message() string {
	if e.msg == "" {
		return e.kind.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

func newError(kind, cause error, format string, args ...any) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{kind: kind, msg: msg, cause: cause}
}

func Validation(format string, args ...any) error {
	return newError(ErrValidation, nil, format, args...)
}

func AlreadyReserved(format string, args ...any) error {
	return newError(ErrAlreadyReserved, nil, format, args...)
}

func Authorization(format string, args ...any) error {
	return newError(ErrAuthorization, nil, format, args...)
}

func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, nil, format, args...)
}

func Unauthenticated(format string, args ...any) error {
	return newError(ErrUnauthenticated, nil, format, args...)
}

// Storage wraps a backend failure. A nil cause yields nil.
func Storage(cause error, format string, args ...any) error {
	if cause == nil {
		return nil
	}
	return newError(ErrStorage, cause, format, args...)
}

// FromDB classifies a gorm error: record-not-found becomes ErrNotFound, anything else ErrStorage.
func FromDB(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("%s not found", what)
	}
	return Storage(err, "%s", what)
}

// Kind returns the sentinel kind of err, or nil when err carries none.
func Kind(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Message returns the user facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message()
	}
	return err.Error()
}
