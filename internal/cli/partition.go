package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/termite/internal/compiler"
	"github.com/roach88/termite/internal/constraint"
	"github.com/roach88/termite/internal/expr"
	"github.com/roach88/termite/internal/partition"
	"github.com/roach88/termite/internal/store"
)

// ErrCodeNonDeterministic is reported when a recorded summary disagrees with
// a fresh partition of the same pattern.
const ErrCodeNonDeterministic = "NON_DETERMINISTIC"

// PartitionOptions holds flags for the partition command.
type PartitionOptions struct {
	*RootOptions
	Pattern  string // only this pattern; empty means all
	Database string // record summaries when set
}

// PartitionResult holds the partitions of every selected pattern.
type PartitionResult struct {
	Patterns []PatternResult `json:"patterns"`
	Failed   int             `json:"failed"`
}

// PatternResult holds the partitions of one pattern, one per commutative
// operation in pre-order.
type PatternResult struct {
	Name    string       `json:"name"`
	Pattern string       `json:"pattern"`
	Sites   []SiteResult `json:"sites"`
	Error   *CLIError    `json:"error,omitempty"`
}

// SiteResult is the partition of one commutative operation.
type SiteResult struct {
	Path        []int             `json:"path"`
	Operation   string            `json:"operation"`
	Summary     partition.Summary `json:"summary"`
	SummaryHash string            `json:"summary_hash"`
	Seq         int64             `json:"seq,omitempty"`
	Inserted    bool              `json:"inserted,omitempty"`
}

// NewPartitionCommand creates the partition command.
func NewPartitionCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PartitionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "partition <specs-dir>",
		Short: "Partition the commutative operations of compiled patterns",
		Long: `Partition every commutative operation inside the compiled patterns.

Each operand lands in exactly one category: constant, syntactic, rest,
fixed or sequence. Repeated variables are aggregated and their
constraints combined.

With --db, each partition is recorded in a SQLite database keyed by the
canonical pattern hash. Re-recording an unchanged pattern is a no-op; a
pattern whose partition changed is reported as NON_DETERMINISTIC.

Examples:
  termite partition ./specs
  termite partition ./specs --pattern mixed --format json
  termite partition ./specs --db ./termite.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPartition(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Pattern, "pattern", "", "partition only this pattern")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database for recording")

	return cmd
}

func runPartition(opts *PartitionOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	loadResult, err := LoadSpecs(specsDir)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	lib, err := compiler.Build(loadResult.Definitions, constraint.UUIDv7Generator{})
	if err != nil {
		return outputLoadError(formatter, convertBuildError(err))
	}

	names := lib.PatternNames()
	if opts.Pattern != "" {
		if _, ok := lib.Pattern(opts.Pattern); !ok {
			return outputLoadError(formatter, &LoadError{
				Code:    ErrCodeNotFound,
				Message: fmt.Sprintf("pattern %q not found in %s", opts.Pattern, specsDir),
			})
		}
		names = []string{opts.Pattern}
	}

	var st *store.Store
	if opts.Database != "" {
		st, err = store.Open(ctx, opts.Database)
		if err != nil {
			return outputLoadError(formatter, &LoadError{Code: ErrCodeStore, Message: fmt.Sprintf("opening database: %v", err)})
		}
		defer st.Close()
		formatter.VerboseLog("Recording to %s", opts.Database)
	}

	result := PartitionResult{Patterns: make([]PatternResult, 0, len(names))}
	for _, name := range names {
		pattern, _ := lib.Pattern(name)
		pr, err := partitionPattern(ctx, st, name, pattern)
		if err != nil {
			return outputLoadError(formatter, &LoadError{Code: ErrCodeStore, Message: err.Error()})
		}
		if pr.Error != nil {
			result.Failed++
		}
		result.Patterns = append(result.Patterns, pr)
	}

	if formatter.JSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if result.Failed > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{Code: firstErrorCode(result), Message: fmt.Sprintf("%d pattern(s) failed", result.Failed)}
		}
		if err := formatter.Response(resp); err != nil {
			return err
		}
	} else {
		writePartitionText(formatter.Writer, result)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d pattern(s) failed", result.Failed))
	}
	return nil
}

// partitionPattern partitions every commutative site of pattern and records
// each one when st is non-nil. Partition and determinism failures are
// reported in the result; the error return is for database failures only.
func partitionPattern(ctx context.Context, st *store.Store, name string, pattern expr.Expression) (PatternResult, error) {
	pr := PatternResult{Name: name, Pattern: pattern.String(), Sites: []SiteResult{}}

	sites, err := partition.All(pattern)
	if err != nil {
		var pe *partition.Error
		if errors.As(err, &pe) {
			pr.Error = &CLIError{Code: string(pe.Code), Message: pe.Error()}
			slog.Debug("partition failed", "pattern", name, "code", pe.Code)
			return pr, nil
		}
		return pr, err
	}

	for _, site := range sites {
		summary := site.Partition.Summary()
		hash, err := summary.Hash()
		if err != nil {
			return pr, err
		}
		sr := SiteResult{
			Path:        append([]int{}, site.Path...),
			Operation:   site.Operation.String(),
			Summary:     summary,
			SummaryHash: hash,
		}

		if st != nil {
			entry, inserted, err := st.Record(ctx, siteName(name, site.Path), site.Operation, summary)
			if errors.Is(err, store.ErrNonDeterministic) {
				pr.Error = &CLIError{Code: ErrCodeNonDeterministic, Message: err.Error()}
				pr.Sites = append(pr.Sites, sr)
				return pr, nil
			}
			if err != nil {
				return pr, err
			}
			sr.Seq = entry.Seq
			sr.Inserted = inserted
		}
		pr.Sites = append(pr.Sites, sr)
	}

	return pr, nil
}

// siteName names a nested site after its pattern and operand path,
// e.g. "nested@0.2". The root site keeps the pattern name.
func siteName(pattern string, path []int) string {
	if len(path) == 0 {
		return pattern
	}
	return pattern + "@" + pathText(path)
}

func pathText(path []int) string {
	parts := make([]string, len(path))
	for i, idx := range path {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ".")
}

func firstErrorCode(result PartitionResult) string {
	for _, p := range result.Patterns {
		if p.Error != nil {
			return p.Error.Code
		}
	}
	return ErrCodeGeneric
}

func writePartitionText(w io.Writer, result PartitionResult) {
	for _, p := range result.Patterns {
		fmt.Fprintf(w, "%s: %s\n", p.Name, p.Pattern)
		if len(p.Sites) == 0 && p.Error == nil {
			fmt.Fprintln(w, "  (no commutative operations)")
		}
		for _, s := range p.Sites {
			writeSiteText(w, s)
		}
		if p.Error != nil {
			fmt.Fprintf(w, "  ✗ %s: %s\n", p.Error.Code, p.Error.Message)
		}
		fmt.Fprintln(w)
	}

	if result.Failed > 0 {
		fmt.Fprintf(w, "✗ %d of %d pattern(s) failed\n", result.Failed, len(result.Patterns))
		return
	}
	fmt.Fprintf(w, "✓ Partitioned %d pattern(s)\n", len(result.Patterns))
}

func writeSiteText(w io.Writer, s SiteResult) {
	where := "root"
	if len(s.Path) > 0 {
		where = pathText(s.Path)
	}
	fmt.Fprintf(w, "  [%s] %s\n", where, s.Operation)
	fmt.Fprintf(w, "    constant:  %s\n", joinOrDash(s.Summary.Constant))
	fmt.Fprintf(w, "    syntactic: %s\n", joinOrDash(s.Summary.Syntactic))
	fmt.Fprintf(w, "    rest:      %s\n", joinOrDash(s.Summary.Rest))
	fmt.Fprintf(w, "    fixed:     %s\n", variablesText(s.Summary.Fixed))
	fmt.Fprintf(w, "    sequence:  %s\n", variablesText(s.Summary.Sequence))
	fmt.Fprintf(w, "    lengths:   fixed %d, sequence >= %d\n",
		s.Summary.FixedVariableLength, s.Summary.SequenceVariableMinLength)
	if s.Seq > 0 {
		state := "unchanged"
		if s.Inserted {
			state = "inserted"
		}
		fmt.Fprintf(w, "    recorded:  seq %d (%s)\n", s.Seq, state)
	}
}

func joinOrDash(ss []string) string {
	if len(ss) == 0 {
		return "-"
	}
	return strings.Join(ss, ", ")
}

func variablesText(vars []partition.VariableSummary) string {
	if len(vars) == 0 {
		return "-"
	}
	parts := make([]string, len(vars))
	for i, v := range vars {
		part := fmt.Sprintf("%s x%d (min %d)", v.Name, v.Multiplicity, v.MinCount)
		if len(v.Constraints) > 0 {
			part += " [" + strings.Join(v.Constraints, "&") + "]"
		}
		parts[i] = part
	}
	return strings.Join(parts, ", ")
}
