// Package neterr defines the error kinds shared by networks and the analyses
// that run on them. Every error returned by boolnet wraps exactly one of the
// sentinels below so callers can branch with errors.Is.
package neterr

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks an invalid network or analysis setup: conflicting
	// or missing size and wiring, bad rule codes, malformed tables.
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation marks a bad argument at a public entry point: a state
	// outside the state space, an index out of range, mismatched weights.
	ErrValidation = errors.New("validation error")

	// ErrInvariant marks a computed result outside its theoretical bounds.
	// It always indicates a defect and aborts the computation.
	ErrInvariant = errors.New("invariant violation")
)

// Configf returns an error wrapping ErrConfiguration.
func Configf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// Validationf returns an error wrapping ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Invariantf returns an error wrapping ErrInvariant.
func Invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}
