package core

import (
	"errors"
	"fmt"
)

// Predefined errors for common failure scenarios.
var (
	// ErrNotFound indicates that no memory item matched the requested
	// (owner, id) pair.
	ErrNotFound = errors.New("memory item not found")

	// ErrAlreadyEnrolled indicates that the content is already enrolled
	// for the owner.
	ErrAlreadyEnrolled = errors.New("content already enrolled")

	// ErrInvalidQuality indicates a quality score outside the 0-5 range.
	ErrInvalidQuality = errors.New("quality must be between 0 and 5")

	// ErrInvalidLimit indicates a negative due-set limit.
	ErrInvalidLimit = errors.New("limit must be positive")

	// ErrInvalidInput indicates that a required argument was empty.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates that a connection to the storage
	// backend failed.
	ErrConnectionFailed = errors.New("connection failed")
)

// ReviewError wraps errors with operation context.
//
// It provides additional context about which operation failed, making
// error messages more informative for debugging.
//
// Example:
//
//	err := &ReviewError{
//	    Op:  "SubmitReview",
//	    Err: ErrInvalidQuality,
//	}
//	// Error() returns: "recall: SubmitReview: quality must be between 0 and 5"
type ReviewError struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message.
//
// The format is: "recall: <Op>: <Err>"
func (e *ReviewError) Error() string {
	return fmt.Sprintf("recall: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
//
// This allows using errors.Is() and errors.As() with ReviewError.
func (e *ReviewError) Unwrap() error {
	return e.Err
}

// NewReviewError creates a new ReviewError wrapping the given error.
//
// If err is nil, returns nil. This allows safe error wrapping:
//
//	if err != nil {
//	    return NewReviewError("Enroll", err)
//	}
//
// Parameters:
//   - op: Name of the operation (e.g., "Enroll", "SubmitReview")
//   - err: The underlying error to wrap
//
// Returns a ReviewError, or nil if err is nil.
func NewReviewError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ReviewError{
		Op:  op,
		Err: err,
	}
}
