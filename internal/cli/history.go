package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/termite/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Name     string // optional - filter to one recorded name
}

// HistoryResult holds the recorded partitions in record order.
type HistoryResult struct {
	Entries []store.Entry `json:"entries"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded partitions",
		Long: `List the partitions recorded by "termite partition --db".

Entries are listed in record order. Nested sites are recorded under
the pattern name followed by their operand path, e.g. "nested@0".

Examples:
  termite history --db ./termite.db
  termite history --db ./termite.db --name mixed --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Name, "name", "", "filter to one recorded name")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(ctx, opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var entries []store.Entry
	if opts.Name != "" {
		entries, err = st.ByName(ctx, opts.Name)
	} else {
		entries, err = st.List(ctx)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read history", err)
	}
	if entries == nil {
		entries = []store.Entry{}
	}

	if formatter.JSON() {
		return formatter.Success(HistoryResult{Entries: entries})
	}

	w := formatter.Writer
	if len(entries) == 0 {
		fmt.Fprintln(w, "No partitions recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tNAME\tOWNER\tFIXED\tSEQUENCE\tSUMMARY")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\n",
			e.Seq, e.PatternName, e.Owner,
			e.Summary.FixedVariableLength, e.Summary.SequenceVariableMinLength,
			shortHash(e.SummaryHash))
	}
	return tw.Flush()
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
