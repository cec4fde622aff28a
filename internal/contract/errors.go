// Package contract provides configuration, typed errors and shared utilities
// for internal architecture.
package contract

import (
	"errors"
	"fmt"
)

// Error taxonomy for the pipeline. Every failure wraps exactly one of these
// sentinels so callers can classify without string matching.
var (
	// ErrValidation marks malformed or inconsistent input data: NaN cells,
	// non-positive rates or exposures, shape mismatches. Signals a
	// data-quality problem upstream, never coerced silently.
	ErrValidation = errors.New("input validation failed")

	// ErrNumeric marks an explicitly detected numerical-stability failure,
	// such as a singular graduation system or a non-convergent root search.
	ErrNumeric = errors.New("numerical instability detected")

	// ErrConfig marks an invalid configuration value, rejected before any
	// computation begins.
	ErrConfig = errors.New("invalid configuration")
)

// ValidationErrorf wraps ErrValidation with formatted context.
func ValidationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NumericErrorf wraps ErrNumeric with formatted context. Callers include the
// offending age or period so the failure can be diagnosed.
func NumericErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNumeric, fmt.Sprintf(format, args...))
}

// ConfigErrorf wraps ErrConfig with formatted context.
func ConfigErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}
