package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/termite/internal/compiler"
	"github.com/roach88/termite/internal/constraint"
	"github.com/roach88/termite/internal/expr"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds the compiled declarations and canonical patterns.
type CompilationResult struct {
	Operations  []compiler.OperationSpec  `json:"operations"`
	Constraints []compiler.ConstraintSpec `json:"constraints"`
	Patterns    []CompiledPattern         `json:"patterns"`
}

// CompiledPattern is one pattern in canonical form.
type CompiledPattern struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	Hash    string `json:"hash"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <specs-dir>",
		Short: "Compile CUE specs to canonical patterns",
		Long: `Compile CUE operation, constraint and pattern declarations.

Every pattern is resolved against its declarations and brought into
canonical form: associative operations flattened and commutative
operands sorted. Each pattern is listed with its content hash.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loadResult, err := LoadSpecs(specsDir)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	defs := loadResult.Definitions
	lib, err := compiler.Build(defs, constraint.UUIDv7Generator{})
	if err != nil {
		return outputLoadError(formatter, convertBuildError(err))
	}

	result := &CompilationResult{
		Operations:  defs.Operations,
		Constraints: defs.Constraints,
		Patterns:    make([]CompiledPattern, 0, len(defs.Patterns)),
	}
	for _, name := range lib.PatternNames() {
		pattern, _ := lib.Pattern(name)
		hash, err := expr.Hash(pattern)
		if err != nil {
			return outputLoadError(formatter, &LoadError{Code: ErrCodeGeneric, Message: err.Error()})
		}
		formatter.VerboseLog("Compiled pattern %s: %s", name, pattern)
		result.Patterns = append(result.Patterns, CompiledPattern{Name: name, Pattern: pattern.String(), Hash: hash})
	}
	slog.Debug("compiled specs", "dir", specsDir, "patterns", len(result.Patterns))

	if opts.Output != "" {
		if err := writeJSONFile(result, opts.Output); err != nil {
			return outputLoadError(formatter, &LoadError{Code: ErrCodeWriteFailed, Message: fmt.Sprintf("writing output file: %v", err)})
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d operation(s), %d constraint(s), %d pattern(s)\n\n",
		len(result.Operations), len(result.Constraints), len(result.Patterns))

	if len(result.Operations) > 0 {
		fmt.Fprintln(w, "Operations:")
		for _, op := range result.Operations {
			fmt.Fprintf(w, "  %s: arity %s%s\n", op.Name, op.ArityText, flagSuffix(op))
		}
		fmt.Fprintln(w)
	}

	if len(result.Patterns) > 0 {
		fmt.Fprintln(w, "Patterns:")
		for _, p := range result.Patterns {
			fmt.Fprintf(w, "  %s: %s\n", p.Name, p.Pattern)
		}
		fmt.Fprintln(w)
	}

	if outputFile != "" {
		fmt.Fprintf(w, "Wrote compiled patterns to %s\n", outputFile)
	}

	return nil
}

func flagSuffix(op compiler.OperationSpec) string {
	switch {
	case op.Commutative && op.Associative:
		return ", commutative, associative"
	case op.Commutative:
		return ", commutative"
	case op.Associative:
		return ", associative"
	default:
		return ""
	}
}

// outputLoadError outputs a load, compile or build failure.
func outputLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		loadErr = &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}

	if !formatter.JSON() && loadErr.Pos.IsValid() {
		fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
			loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column())
	}
	_ = formatter.Error(loadErr.Code, loadErr.Message, nil)

	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message), nil)
}

// writeJSONFile writes v as indented JSON.
func writeJSONFile(v any, filename string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
