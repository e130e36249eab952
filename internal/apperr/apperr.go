// Package apperr defines the errors the category service reports to its
// callers. Each error carries the HTTP status it maps to so handlers can
// answer without knowing the business rule that failed.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	KindValidation  Kind = "VALIDATION"
	KindConflict    Kind = "CONFLICT"
	KindNotFound    Kind = "NOT_FOUND"
	KindPersistence Kind = "PERSISTENCE"
)

// Error is a client-visible failure. Message is safe to show; Cause is only
// logged.
type Error struct {
	Kind       Kind
	Message    string
	HTTPStatus int
	Cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Validation reports a missing or malformed request field.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message, HTTPStatus: http.StatusBadRequest}
}

// Conflict reports a request that contradicts the current state: duplicate
// name, unknown id, inactive category, blocking association.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message, HTTPStatus: http.StatusConflict}
}

// NotFound reports a read that legitimately matched nothing.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message, HTTPStatus: http.StatusNotFound}
}

// Persistence reports a store write failure. The message should be generic;
// details belong in cause.
func Persistence(message string, cause error) *Error {
	return &Error{Kind: KindPersistence, Message: message, HTTPStatus: http.StatusInternalServerError, Cause: cause}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
