package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/termite/internal/compiler"
	"github.com/roach88/termite/internal/expr"
	"github.com/roach88/termite/internal/partition"
	"github.com/roach88/termite/internal/testutil"
)

// Run executes a scenario with logging discarded.
//
// The returned error reports problems with the scenario itself (specs that
// fail to compile, an unknown pattern, a path that selects nothing).
// Partition errors and expectation failures are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger executes a scenario, logging each step to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	logger = logger.With("scenario", scenario.Name)

	defs, err := compiler.CompileDir(scenario.Specs)
	if err != nil {
		return nil, fmt.Errorf("compiling specs: %w", err)
	}
	logger.Debug("compiled specs",
		"dir", scenario.Specs,
		"operations", len(defs.Operations),
		"constraints", len(defs.Constraints),
		"patterns", len(defs.Patterns))

	gen := testutil.NewCounterGenerator("")
	lib, err := compiler.Build(defs, gen)
	if err != nil {
		return nil, fmt.Errorf("building specs: %w", err)
	}

	pattern, ok := lib.Pattern(scenario.Pattern)
	if !ok {
		return nil, fmt.Errorf("pattern %q not found in %s", scenario.Pattern, scenario.Specs)
	}

	result := NewResult()
	result.Pattern = pattern.String()
	result.Path = slices.Clone(scenario.Path)

	p, perr := selectPartition(pattern, scenario.Path)
	if perr != nil {
		var pe *partition.Error
		if !errors.As(perr, &pe) {
			return nil, perr
		}
		result.ErrorCode = string(pe.Code)
		logger.Debug("partition failed", "code", pe.Code, "error", pe.Error())

		switch {
		case scenario.Expect.Error == "":
			result.AddError(fmt.Sprintf("unexpected partition error: %v", pe))
		case scenario.Expect.Error != string(pe.Code):
			result.AddError(fmt.Sprintf("error: expected %s, got %s", scenario.Expect.Error, pe.Code))
		}
		return result, nil
	}

	summary := p.Summary()
	result.Summary = &summary
	logger.Debug("partitioned",
		"owner", summary.Owner,
		"operands", p.OperandCount(),
		"fixed_length", summary.FixedVariableLength,
		"sequence_min_length", summary.SequenceVariableMinLength,
		"constraints_issued", gen.Issued())

	if scenario.Expect.Error != "" {
		result.AddError(fmt.Sprintf("error: expected %s, got success", scenario.Expect.Error))
		return result, nil
	}

	for _, failure := range EvaluateExpectations(summary, scenario.Expect) {
		result.AddError(failure.Error())
	}
	return result, nil
}

// selectPartition partitions the commutative operation at path. An empty
// path selects the pattern root, which must then be a commutative operation.
// A *partition.Error is returned when partitioning itself fails.
func selectPartition(pattern expr.Expression, path []int) (*partition.Partition, error) {
	if len(path) == 0 {
		op, ok := pattern.(expr.Operation)
		if !ok {
			return nil, fmt.Errorf("pattern root %s is not an operation", pattern)
		}
		return partition.FromOperation(op)
	}

	sites, err := partition.All(pattern)
	if err != nil {
		return nil, err
	}
	for _, site := range sites {
		if slices.Equal(site.Path, path) {
			return site.Partition, nil
		}
	}
	return nil, fmt.Errorf("no commutative operation at path %v", path)
}
