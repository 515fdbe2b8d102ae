package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)

	// Data model errors
	ErrEmptyMatrix       = errors.New("matrix must have at least one row and one column")
	ErrRaggedMatrix      = errors.New("matrix rows differ in length")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrNonPositiveSample = errors.New("sample value must be strictly positive")
	ErrInvalidParameters = errors.New("invalid search parameters")
	ErrUnsupportedFormat = errors.New("unsupported matrix format")
)

// NewDimensionError reports a keystream or matrix whose size does not match its partner
func NewDimensionError(what string, got, want int) error {
	return fmt.Errorf("%w: %s has %d entries, want %d", ErrDimensionMismatch, what, got, want)
}

// NewSampleError reports the first non-positive sample found in a matrix
func NewSampleError(row, col int, value int32) error {
	return fmt.Errorf("%w: row %d column %d holds %d", ErrNonPositiveSample, row, col, value)
}

// NewParameterError reports a rejected search parameter
func NewParameterError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidParameters, field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDataError(err error) bool {
	return errors.Is(err, ErrEmptyMatrix) ||
		errors.Is(err, ErrRaggedMatrix) ||
		errors.Is(err, ErrDimensionMismatch) ||
		errors.Is(err, ErrNonPositiveSample)
}
