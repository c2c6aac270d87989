package services

import (
	"errors"
	"fmt"

	"github.com/elevatecapital/fundtracker/internal/store"
)

// Error classes surfaced to the API layer. Handlers match them with
// errors.Is and pick the HTTP status; the message is shown to the user.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrRateLimited  = errors.New("rate limited")
)

// classedError carries a user-facing message while still matching its
// class under errors.Is.
type classedError struct {
	class error
	msg   string
}

func (e *classedError) Error() string { return e.msg }
func (e *classedError) Unwrap() error { return e.class }

func newError(class error, format string, args ...interface{}) error {
	return &classedError{class: class, msg: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...interface{}) error {
	return newError(ErrNotFound, format, args...)
}

func validationf(format string, args ...interface{}) error {
	return newError(ErrValidation, format, args...)
}

func conflictf(format string, args ...interface{}) error {
	return newError(ErrConflict, format, args...)
}

// storeError maps store sentinels onto the service classes, using msg as
// the user-facing message. Other errors pass through unchanged.
func storeError(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return newError(ErrNotFound, "%s", msg)
	case errors.Is(err, store.ErrDuplicate):
		return newError(ErrConflict, "%s", msg)
	default:
		return err
	}
}
