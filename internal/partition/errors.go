package partition

import (
	"errors"
	"fmt"
)

// Error represents a violated precondition detected while partitioning.
//
// Partitioning is total over well-formed patterns, so every Error points at
// a malformed or self-contradictory pattern. No partial Partition is ever
// returned alongside an Error.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Name is the variable name involved, if any.
	Name string

	// Index is the operand position involved, or -1.
	Index int

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes partition errors.
type ErrorCode string

const (
	// ErrCodeWidthMismatch indicates one variable name bound to placeholders
	// of differing widths within a single operand list.
	ErrCodeWidthMismatch ErrorCode = "WIDTH_MISMATCH"

	// ErrCodeMalformedPattern indicates an operand or owner that breaks the
	// expression model's invariants.
	ErrCodeMalformedPattern ErrorCode = "MALFORMED_PATTERN"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Name != "" && e.Index >= 0:
		return fmt.Sprintf("%s: %s (variable=%s, operand=%d)", e.Code, e.Message, e.Name, e.Index)
	case e.Index >= 0:
		return fmt.Sprintf("%s: %s (operand=%d)", e.Code, e.Message, e.Index)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsWidthMismatch returns true if err is a width mismatch error.
// Uses errors.As to handle wrapped errors.
func IsWidthMismatch(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code == ErrCodeWidthMismatch
	}
	return false
}

// IsMalformedPattern returns true if err is a malformed pattern error.
// Uses errors.As to handle wrapped errors.
func IsMalformedPattern(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code == ErrCodeMalformedPattern
	}
	return false
}

// NewWidthMismatchError creates an Error for a width disagreement.
func NewWidthMismatchError(name string, index, expected, actual int, category string) *Error {
	return &Error{
		Code:    ErrCodeWidthMismatch,
		Message: fmt.Sprintf("%s variable occurs with width %d and %d", category, expected, actual),
		Name:    name,
		Index:   index,
		Details: map[string]string{
			"category": category,
			"expected": fmt.Sprintf("%d", expected),
			"actual":   fmt.Sprintf("%d", actual),
		},
	}
}

// NewMalformedPatternError creates an Error for a malformed operand or owner.
func NewMalformedPatternError(index int, cause error) *Error {
	return &Error{
		Code:    ErrCodeMalformedPattern,
		Message: cause.Error(),
		Index:   index,
	}
}
