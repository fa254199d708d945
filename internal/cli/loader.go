package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/roach88/kazt/internal/compiler"
	"github.com/roach88/kazt/internal/engine"
	"github.com/roach88/kazt/internal/ir"
)

// LoadError represents an error that occurred while loading a rule set file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos   // CUE position if available
	Details interface{} // *ir.ParamError for parameter failures
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
// Graph diagnostics use the compiler's E3xx codes and parameter errors
// keep their ir E2xx code in the error details.
const (
	ErrCodeGeneric        = "E001" // Generic/unknown error
	ErrCodeReadFailed     = "E002" // File could not be read
	ErrCodeUnsupported    = "E003" // Unsupported rule set file type
	ErrCodeParseFailed    = "E004" // JSON/YAML/CUE syntax or shape error
	ErrCodeNotFound       = "E005" // Path or record not found
	ErrCodeInvalidParams  = "E006" // Block params out of bounds or malformed
	ErrCodeWriteFailed    = "E007" // File write error
	ErrCodeDatabase       = "E008" // Database open/query error
	ErrCodeInvalidRuleSet = "E009" // Rule set has graph conflicts
)

// LoadRuleSet loads a rule set file, mapping failures to a *LoadError.
func LoadRuleSet(path string) (*ir.RuleSet, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("rule set file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("error accessing rule set file: %v", err)}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("is a directory: %s", path)}
	}

	rs, err := compiler.LoadRuleSetFile(path)
	if err != nil {
		return nil, convertCompileError(err)
	}
	return rs, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
			Details: paramErrorDetails(compileErr),
		}
	}
	return &LoadError{
		Code:    ErrCodeReadFailed,
		Message: err.Error(),
	}
}

// MapFieldToErrorCode maps a compiler error to an error code.
func MapFieldToErrorCode(err *compiler.CompileError) string {
	switch {
	case ir.IsParamError(err):
		return ErrCodeInvalidParams
	case err.Field == "file":
		return ErrCodeUnsupported
	case err.Field == "":
		return ErrCodeGeneric
	default:
		return ErrCodeParseFailed
	}
}

// paramErrorDetails returns the *ir.ParamError behind err, if any, for the
// details field of an error response.
func paramErrorDetails(err error) interface{} {
	var pe *ir.ParamError
	if errors.As(err, &pe) {
		return pe
	}
	return nil
}

// failLoad reports a load failure and returns the matching exit error.
func failLoad(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		msg := loadErr.Message
		if loadErr.Pos.IsValid() {
			msg = fmt.Sprintf("%s:%d:%d: %s", loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column(), msg)
		}
		_ = formatter.Error(loadErr.Code, msg, loadErr.Details)
		return NewExitError(ExitCommandError, loadErr.Error())
	}
	return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to load rule set", err)
}

// failRequest reports a boundary request error (sample count, export format).
func failRequest(formatter *OutputFormatter, err error) error {
	var reqErr *engine.RequestError
	if errors.As(err, &reqErr) {
		_ = formatter.Error(string(reqErr.Code), reqErr.Message, nil)
		return NewExitError(ExitCommandError, reqErr.Error())
	}
	return formatter.Fail(ExitCommandError, ErrCodeGeneric, "invalid request", err)
}
