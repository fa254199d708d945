package ir

import (
	"errors"
	"fmt"
)

// Construction error codes (E200-E299).
const (
	ErrUnknownBlockType = "E200" // type is not one of the five block types
	ErrInvalidEnum      = "E201" // enum field holds a value outside its set
	ErrOutOfBounds      = "E202" // numeric field outside its documented range
	ErrMalformedParams  = "E203" // params could not be decoded for the block type
	ErrEmptyBlockID     = "E204" // block id is empty
)

// ParamError reports a block that could not be constructed.
type ParamError struct {
	Block   string `json:"block,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e *ParamError) Error() string {
	if e.Block != "" {
		return fmt.Sprintf("[%s] block %q: %s: %s", e.Code, e.Block, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// IsParamError reports whether err (or anything it wraps) is a ParamError.
func IsParamError(err error) bool {
	var pe *ParamError
	return errors.As(err, &pe)
}

func boundsError(field string, got, lo, hi float64) *ParamError {
	return &ParamError{
		Field:   field,
		Message: fmt.Sprintf("%v is outside [%v, %v]", got, lo, hi),
		Code:    ErrOutOfBounds,
	}
}

func enumError(field, got string, allowed []string) *ParamError {
	return &ParamError{
		Field:   field,
		Message: fmt.Sprintf("invalid value %q, must be one of %v", got, allowed),
		Code:    ErrInvalidEnum,
	}
}
