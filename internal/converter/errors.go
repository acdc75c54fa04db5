package converter

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes converter errors.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates an out-of-domain factory parameter,
	// a missing or unowned Combine operand, or an unusable output slice.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrCodeFormattingFailure indicates an expression could not be produced.
	// A too-small buffer is not a formatting failure.
	ErrCodeFormattingFailure ErrorCode = "FORMATTING_FAILURE"
)

// Error is returned by factories, Combine, ApplySlice and the expression
// functions. A failed operation never yields a converter.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op is the failing operation (e.g., "log", "combine").
	Op string

	// Message is a human-readable description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Code, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func invalidArgument(op, format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Op: op, Message: fmt.Sprintf(format, args...)}
}

func formattingFailure(op, message string, err error) *Error {
	return &Error{Code: ErrCodeFormattingFailure, Op: op, Message: message, Err: err}
}

// IsInvalidArgument returns true if err is an INVALID_ARGUMENT error.
// Uses errors.As to handle wrapped errors.
func IsInvalidArgument(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeInvalidArgument
	}
	return false
}

// IsFormattingFailure returns true if err is a FORMATTING_FAILURE error.
// Uses errors.As to handle wrapped errors.
func IsFormattingFailure(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeFormattingFailure
	}
	return false
}
