package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/SundayYogurt/bursary_service/internal/helper"
)

// Error kinds. Handlers map them to HTTP status codes with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream service failed")
)

// Error is a client-facing failure: Msg is safe to return, Kind classifies it.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

func notFound(what string) error {
	return newError(ErrNotFound, "%s not found", what)
}

func conflict(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

func forbidden(format string, args ...any) error {
	return newError(ErrForbidden, format, args...)
}

// translate turns repository errors into the taxonomy; anything else is a
// persistence failure and passes through unchanged.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound(what)
	case helper.IsDuplicateKey(err):
		return conflict("%s already exists", what)
	}
	return err
}
