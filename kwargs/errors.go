package kwargs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidOverride is wrapped by ValidationError.
	ErrInvalidOverride = errors.New("invalid override")
	// ErrRequiredParam is wrapped by RequiredParamError.
	ErrRequiredParam = errors.New("parameter has no default")
	// ErrUnsupported is wrapped by UnsupportedTypeError.
	ErrUnsupported = errors.New("unsupported entity")
	// ErrBadCall is wrapped by errors returned when arguments cannot be bound
	// to a signature.
	ErrBadCall = errors.New("bad call")
)

// ValidationError rejects an override request naming an unknown parameter,
// or giving a value the parameter cannot hold.
type ValidationError struct {
	Entity string
	Key    string
	// Valid lists every parameter name of the entity in declaration order.
	Valid []string
	// Reason is empty for unknown keys.
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("kwargs: argument %q of %s: %s", e.Key, e.Entity, e.Reason)
	}
	return fmt.Sprintf("kwargs: argument %q not specified in %s with args: [%s]",
		e.Key, e.Entity, strings.Join(e.Valid, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidOverride }

// RequiredParamError rejects an override for a parameter that declares no
// default.
type RequiredParamError struct {
	Entity string
	Key    string
}

func (e *RequiredParamError) Error() string {
	return fmt.Sprintf("kwargs: argument %q of %s is required and has no default to override", e.Key, e.Entity)
}

func (e *RequiredParamError) Unwrap() error { return ErrRequiredParam }

// UnsupportedTypeError reports a target whose parameters cannot be described.
type UnsupportedTypeError struct {
	Target string
	Reason string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("kwargs: %s: %s", e.Target, e.Reason)
}

func (e *UnsupportedTypeError) Unwrap() error { return ErrUnsupported }

func badCall(entity, format string, args ...any) error {
	return fmt.Errorf("kwargs: %s: %s: %w", entity, fmt.Sprintf(format, args...), ErrBadCall)
}
