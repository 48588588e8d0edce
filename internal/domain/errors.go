package domain

import (
    "errors"
    "fmt"
)

var (
    ErrNotFound     = errors.New("not found")
    ErrInvalid      = errors.New("invalid input")
    ErrConflict     = errors.New("conflict")
    ErrUnauthorized = errors.New("unauthorized")
    ErrForbidden    = errors.New("forbidden")
)

// ValidationError names the offending field; it matches ErrInvalid.
type ValidationError struct {
    Field string
    Msg   string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Msg }
func (e *ValidationError) Unwrap() error { return ErrInvalid }

func Invalidf(field, format string, args ...any) error {
    return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
    return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
