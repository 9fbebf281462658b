package cli

import (
	"errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/termite/internal/compiler"
	"github.com/roach88/termite/internal/expr"
)

// LoadResult contains the definitions loaded from a spec directory.
type LoadResult struct {
	Definitions *compiler.Definitions
	FileCount   int
}

// LoadError is a loading or compile failure with a CLI error code.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSpecs loads and compiles the CUE specs in dir. Every failure is
// returned as a *LoadError.
func LoadSpecs(dir string) (*LoadResult, error) {
	value, files, err := compiler.LoadDir(dir)
	if err != nil {
		return nil, convertLoadError(err)
	}

	defs, err := compiler.Compile(value)
	if err != nil {
		return nil, convertLoadError(err)
	}

	if len(defs.Operations) == 0 && len(defs.Patterns) == 0 {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: "no operations or patterns found in specs"}
	}

	return &LoadResult{Definitions: defs, FileCount: files}, nil
}

// convertLoadError maps compiler errors to LoadErrors with position info.
func convertLoadError(err error) *LoadError {
	var compileErr *compiler.CompileError
	switch {
	case errors.Is(err, compiler.ErrSpecsNotFound):
		return &LoadError{Code: ErrCodeNotFound, Message: err.Error()}
	case errors.Is(err, compiler.ErrNoCUEFiles):
		return &LoadError{Code: ErrCodeNoFiles, Message: err.Error()}
	case errors.Is(err, compiler.ErrLoadFailed):
		return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
	case errors.As(err, &compileErr):
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	default:
		return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}
}

// convertBuildError maps a compiler.Build failure to a LoadError. Codes match
// the ones Validate reports for the same problem.
func convertBuildError(err error) *LoadError {
	code := compiler.ErrInvalidOperand
	var re *compiler.ResolveError
	switch {
	case errors.As(err, &re) && strings.HasPrefix(re.Path, "constraint."):
		code = compiler.ErrInvalidConstraint
	case errors.Is(err, compiler.ErrUnknownOperation):
		code = compiler.ErrUnknownOperationRef
	case errors.Is(err, compiler.ErrUnknownConstraint):
		code = compiler.ErrUnknownConstraintRef
	case errors.Is(err, expr.ErrArity):
		code = compiler.ErrArityViolation
	}
	return &LoadError{Code: code, Message: err.Error()}
}

// Error code constants, shared by all commands. Validation codes (E2xx)
// come from the compiler package.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE evaluation failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeStore       = "E008" // Database error

	ErrCodeInvalidOperation  = "E101" // Bad arity or flags
	ErrCodeInvalidConstraint = "E102" // Bad expr or vars
	ErrCodeInvalidOperand    = "E103" // Bad pattern operand encoding
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "cue":
		return ErrCodeBuildFailed
	case "arity", "commutative", "associative":
		return ErrCodeInvalidOperation
	case "expr", "vars":
		return ErrCodeInvalidConstraint
	case "sym", "op", "wildcard", "var", "kind", "width", "constraint":
		return ErrCodeInvalidOperand
	}
	if strings.HasPrefix(field, "pattern.") {
		return ErrCodeInvalidOperand
	}
	return ErrCodeGeneric
}
