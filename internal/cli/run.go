package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shelfsim/shelfsim/internal/config"
	"github.com/shelfsim/shelfsim/internal/engine"
	"github.com/shelfsim/shelfsim/internal/report"
	"github.com/shelfsim/shelfsim/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ConfigPath string
	OrdersPath string
	Mode       string
	Database   string

	// Delays and Tokens allow overriding the courier randomness sources
	// (for testing). Nil means production sources.
	Delays engine.DelaySource
	Tokens engine.TokenGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation over an order batch",
		Long: `Run one simulation to completion and report the outcome.

Configuration starts from built-in defaults, overlaid with an optional YAML
file, then with flags. The order batch is replayed at the configured rate;
the run ends once every order has been resolved and every dispatched courier
has arrived.

Example:
  shelfsim run --orders ./orders.json
  shelfsim run --config ./sim.yaml --mode wall --db ./runs.db --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config overlay")
	cmd.Flags().StringVar(&opts.OrdersPath, "orders", "", "path to JSON order batch (overrides config)")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "clock discipline: wall or logical (overrides config)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "archive the run to this SQLite database")

	return cmd
}

func runSimulation(opts *RunOptions, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	cfg, err := resolveConfig(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	batch, err := cfg.Orders()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load order batch", err)
	}
	slog.Info("batch loaded", "orders", len(batch), "mode", cfg.Concurrency)

	var simOpts []engine.Option
	if opts.Delays != nil {
		simOpts = append(simOpts, engine.WithDelaySource(opts.Delays))
	}
	if opts.Tokens != nil {
		simOpts = append(simOpts, engine.WithTokenGenerator(opts.Tokens))
	}

	res := engine.New(cfg, batch, simOpts...).Run()
	sum := report.Build(res)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if opts.Format == "json" {
		if err := formatter.Success(sum); err != nil {
			return WrapExitError(ExitCommandError, "failed to encode report", err)
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), sum.Text())
	}

	if opts.Database != "" {
		runID := uuid.Must(uuid.NewV7()).String()
		if err := archiveRun(opts.Database, runID, sum); err != nil {
			return WrapExitError(ExitCommandError, "failed to archive run", err)
		}
		formatter.VerboseLog("archived run %s to %s", runID, opts.Database)
		slog.Info("run archived", "id", runID, "db", opts.Database)
	}

	if res.Failed() {
		return WrapExitError(ExitFailure, "simulation failed", res.Err())
	}
	return nil
}

// resolveConfig layers defaults, the optional YAML overlay, and flags.
func resolveConfig(opts *RunOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if opts.OrdersPath != "" {
		cfg.OrdersFile = opts.OrdersPath
		cfg.OrdersLiteral = nil
	}
	if opts.Mode != "" {
		cfg.Concurrency = config.Mode(opts.Mode)
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func archiveRun(path, runID string, sum report.Summary) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	return st.WriteRun(context.Background(), runID, sum)
}

// setupLogging configures the process-wide logger; verbose enables debug.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
