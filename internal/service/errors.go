package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/campusnest/internal/repository"
)

// Kind classifies a service failure.  Handlers map each kind to one HTTP
// status class.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
	KindInvalidState
	KindIO
)

// Error is the single error type returned by services.  Msg is safe to show
// to clients; Err, when set, is the underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels of the same kind, so errors.Is(err, ErrNotFound)
// holds for every not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrAuth         = &Error{Kind: KindAuth}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrInvalidState = &Error{Kind: KindInvalidState}
	ErrIO           = &Error{Kind: KindIO}
)

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Msg: msg} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Msg: msg} }
func Forbidden(msg string) *Error    { return &Error{Kind: KindForbidden, Msg: msg} }
func InvalidState(msg string) *Error { return &Error{Kind: KindInvalidState, Msg: msg} }
func Auth(msg string) *Error         { return &Error{Kind: KindAuth, Msg: msg} }
func IOError(msg string, err error) *Error {
	return &Error{Kind: KindIO, Msg: msg, Err: err}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// fromRepo turns repository sentinels into service errors and wraps anything
// else with op for the logs.
func fromRepo(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrPGNotFound):
		return NotFound("pg not found")
	case errors.Is(err, repository.ErrBookingNotFound):
		return NotFound("booking not found")
	case errors.Is(err, repository.ErrActiveBookingExists):
		return Conflict("active booking exists")
	case errors.Is(err, repository.ErrBookingConfirmed):
		return InvalidState("confirmed bookings cannot be removed")
	case errors.Is(err, repository.ErrBookingState):
		return InvalidState("only reserved bookings can be confirmed")
	case errors.Is(err, repository.ErrReceiptNotFound):
		return NotFound("receipt not found")
	case errors.Is(err, repository.ErrForbidden):
		return Forbidden("not allowed")
	}
	return fmt.Errorf("%s: %w", op, err)
}
