package services

import (
	"errors"
	"fmt"

	"github.com/anonto42/campustrack/backend/internal/access"
)

// Error kinds. Handlers map them to HTTP status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = access.ErrForbidden
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
)

// Error is a kind with a message safe to show to the client
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func notFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

func unauthorized(msg string) error { return &Error{Kind: ErrUnauthorized, Message: msg} }

func conflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

func invalid(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}
