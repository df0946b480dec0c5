package service

import "errors"

// Error kinds. Every error returned by the service wraps one of these or is
// an unexpected store failure.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
)

// Error is a classified failure with a message safe to show to callers.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func validation(msg string) error      { return &Error{Kind: ErrValidation, Msg: msg} }
func unauthenticated(msg string) error { return &Error{Kind: ErrUnauthenticated, Msg: msg} }
func forbidden(msg string) error       { return &Error{Kind: ErrForbidden, Msg: msg} }
func notFound(msg string) error        { return &Error{Kind: ErrNotFound, Msg: msg} }
