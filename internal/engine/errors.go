package engine

import (
	"errors"
	"fmt"
)

// RequestError reports a caller request the engine refuses before running.
//
// Engine operations themselves never fail on well-typed input; this error
// belongs to the boundary that turns user input into engine calls.
type RequestError struct {
	// Code identifies the error category.
	Code RequestErrorCode

	// Message is a human-readable description.
	Message string
}

// RequestErrorCode categorizes request errors.
type RequestErrorCode string

const (
	// ErrCodeSampleCount indicates a sample count outside [MinSampleTxs, MaxSampleTxs].
	ErrCodeSampleCount RequestErrorCode = "SAMPLE_COUNT"

	// ErrCodeUnsupportedFormat indicates an export format the caller cannot render.
	ErrCodeUnsupportedFormat RequestErrorCode = "UNSUPPORTED_FORMAT"
)

// Sample count bounds accepted at the request boundary.
const (
	MinSampleTxs     = 1
	MaxSampleTxs     = 20
	DefaultSampleTxs = 5
)

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CheckSampleCount rejects sample counts outside [MinSampleTxs, MaxSampleTxs].
func CheckSampleCount(n int) error {
	if n < MinSampleTxs || n > MaxSampleTxs {
		return &RequestError{
			Code:    ErrCodeSampleCount,
			Message: fmt.Sprintf("sample_txs must be between %d and %d, got %d", MinSampleTxs, MaxSampleTxs, n),
		}
	}
	return nil
}

// NewFormatError creates a RequestError for an unsupported export format.
func NewFormatError(format string, supported []string) *RequestError {
	return &RequestError{
		Code:    ErrCodeUnsupportedFormat,
		Message: fmt.Sprintf("unsupported format %q, must be one of %v", format, supported),
	}
}

// IsSampleCountError returns true if err is a sample count RequestError.
// Uses errors.As to handle wrapped errors.
func IsSampleCountError(err error) bool {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Code == ErrCodeSampleCount
	}
	return false
}

// IsFormatError returns true if err is an unsupported format RequestError.
func IsFormatError(err error) bool {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnsupportedFormat
	}
	return false
}
