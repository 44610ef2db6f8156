package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shelfsim/shelfsim/internal/store"
)

// NewRunsCommand creates the runs command group for browsing the archive.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Browse archived runs",
	}

	cmd.AddCommand(newRunsListCommand(rootOpts))
	cmd.AddCommand(newRunsShowCommand(rootOpts))

	return cmd
}

func newRunsListCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		database string
		limit    int
	)

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List archived runs, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runsList(rootOpts, database, limit, cmd)
		},
	}

	cmd.Flags().StringVar(&database, "db", "", "path to SQLite database (required)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list (0 for all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func newRunsShowCommand(rootOpts *RootOptions) *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:           "show <run-id>",
		Short:         "Show one archived run in full",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runsShow(rootOpts, database, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runsList(opts *RootOptions, database string, limit int, cmd *cobra.Command) error {
	st, err := store.Open(database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	headers, err := st.ListRuns(context.Background(), limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return formatter.Success(headers)
	}

	if len(headers) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no archived runs")
		return nil
	}
	for _, h := range headers {
		status := "ok"
		if h.Failed {
			status = "FAILED"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-7s %-6s %.3fs  %s\n",
			h.ID, h.Mode, status, h.SimulatedSpan, h.ArchivedAt)
	}
	return nil
}

func runsShow(opts *RootOptions, database, runID string, cmd *cobra.Command) error {
	st, err := store.Open(database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	sum, err := st.ReadRun(context.Background(), runID)
	if errors.Is(err, store.ErrRunNotFound) {
		return WrapExitError(ExitCommandError, fmt.Sprintf("no archived run %s", runID), err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return formatter.Success(sum)
	}
	fmt.Fprint(cmd.OutOrStdout(), sum.Text())
	return nil
}
