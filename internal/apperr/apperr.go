// Package apperr defines the tagged error kinds the core uses to decide how
// a failure propagates: swallowed into a CRUD {success:false} result,
// re-raised, or converted into an isError tool result.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is one of the six error categories named by the core's error
// handling design.
type Kind string

const (
	NotFound     Kind = "NotFound"
	Unauthorized Kind = "Unauthorized"
	Invalid      Kind = "Invalid"
	Store        Kind = "Store"
	Search       Kind = "Search"
	Dispatch     Kind = "Dispatch"
)

// Error is a tagged error. Components construct it with the appropriate
// constructor rather than returning a bare fmt.Errorf, so that CRUD
// handlers can recover the Kind with errors.As instead of matching on
// message text or a sentinel value.
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

func (e *Error) Unwrap() error {
	return e.Err
}

func newErr(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NewNotFound(message string, err error) *Error     { return newErr(NotFound, message, err) }
func NewUnauthorized(message string, err error) *Error { return newErr(Unauthorized, message, err) }
func NewInvalid(message string, err error) *Error      { return newErr(Invalid, message, err) }
func NewStore(message string, err error) *Error        { return newErr(Store, message, err) }
func NewSearch(message string, err error) *Error       { return newErr(Search, message, err) }
func NewDispatch(message string, err error) *Error     { return newErr(Dispatch, message, err) }

// KindOf returns the Kind carried by err if it (or something it wraps) is an
// *Error, and ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
