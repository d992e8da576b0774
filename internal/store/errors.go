package store

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes failures that leave the store unusable for the
// current statement. Callers treat every Error as fatal.
type ErrorCode string

const (
	// ErrCodeUnavailable indicates the backing file could not be created,
	// opened, or initialized.
	ErrCodeUnavailable ErrorCode = "STORE_UNAVAILABLE"

	// ErrCodeRetriesExhausted indicates the store stayed busy or locked for
	// every attempt allowed by the retry policy.
	ErrCodeRetriesExhausted ErrorCode = "RETRIES_EXHAUSTED"

	// ErrCodeUnexpected indicates SQLite returned an error that is neither
	// contention nor a constraint violation.
	ErrCodeUnexpected ErrorCode = "UNEXPECTED"
)

// Error is returned for unrecoverable store failures.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Path is the backing file, when known.
	Path string

	// Statement is the SQL being executed, when applicable.
	Statement string

	// Attempts is how many times the statement was tried.
	Attempts int

	// Err is the underlying driver or filesystem error.
	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Path != "" {
		msg += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Statement != "" {
		msg += fmt.Sprintf("\nexecuting: '%s'", e.Statement)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\nerror: %v", e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err is an ErrCodeUnavailable store error.
func IsUnavailable(err error) bool {
	return hasCode(err, ErrCodeUnavailable)
}

// IsRetriesExhausted reports whether err is an ErrCodeRetriesExhausted store error.
func IsRetriesExhausted(err error) bool {
	return hasCode(err, ErrCodeRetriesExhausted)
}

// IsUnexpected reports whether err is an ErrCodeUnexpected store error.
func IsUnexpected(err error) bool {
	return hasCode(err, ErrCodeUnexpected)
}

func hasCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

func unavailable(path, message string, err error) *Error {
	return &Error{Code: ErrCodeUnavailable, Message: message, Path: path, Err: err}
}
