package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/termite/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Patterns int                        `json:"patterns"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Validate specs and check every pattern partitions",
		Long: `Validate CUE operation, constraint and pattern declarations.

Checks that references resolve, operand counts respect declared arity,
constraint expressions compile, pattern roots are commutative and no
variable name is used with two different widths. All problems are
reported, not just the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	validationErrors, patterns, err := ValidateSpecsDir(specsDir)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Validated %d pattern(s) in %s", patterns, specsDir)

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}
	return outputValidateSuccess(formatter, patterns)
}

// ValidateSpecsDir validates all specs in a directory and returns the
// validation errors together with the number of patterns checked.
//
// Declarations that fail to compile are reported as validation errors.
// Directories that cannot be loaded return a *LoadError.
func ValidateSpecsDir(specsDir string) ([]compiler.ValidationError, int, error) {
	loadResult, err := LoadSpecs(specsDir)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) && isDeclarationError(loadErr.Code) {
			line := 0
			if loadErr.Pos.IsValid() {
				line = loadErr.Pos.Line()
			}
			return []compiler.ValidationError{{
				Field:   "specs",
				Message: loadErr.Message,
				Code:    loadErr.Code,
				Line:    line,
			}}, 0, nil
		}
		return nil, 0, err
	}

	defs := loadResult.Definitions
	return compiler.Validate(defs), len(defs.Patterns), nil
}

// isDeclarationError reports whether a load error code describes the declarations
// themselves rather than the directory.
func isDeclarationError(code string) bool {
	switch code {
	case ErrCodeBuildFailed, ErrCodeInvalidOperation, ErrCodeInvalidConstraint, ErrCodeInvalidOperand:
		return true
	default:
		return false
	}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, patterns int) error {
	if formatter.JSON() {
		return formatter.Success(ValidationResult{Valid: true, Patterns: patterns})
	}

	fmt.Fprintf(formatter.Writer, "✓ All specs valid (%d pattern(s))\n", patterns)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.JSON() {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := formatter.Response(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
