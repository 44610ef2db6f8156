package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shelfsim/shelfsim/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Orders int      `json:"orders"`
	Errors []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var ordersPath string

	cmd := &cobra.Command{
		Use:   "validate [config.yaml]",
		Short: "Validate configuration and order batch without running",
		Long: `Validate a YAML configuration overlay and its order batch without
running a simulation.

With no argument, the built-in defaults are validated, which mainly checks
the order batch. Faster than a run for development feedback.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := ""
			if len(args) == 1 {
				configPath = args[0]
			}
			return runValidate(rootOpts, configPath, ordersPath, cmd)
		},
	}

	cmd.Flags().StringVar(&ordersPath, "orders", "", "path to JSON order batch (overrides config)")

	return cmd
}

func runValidate(opts *RootOptions, configPath, ordersPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result := ValidationResult{Valid: true}

	cfg := config.Default()
	if configPath != "" {
		formatter.VerboseLog("loading config %s", configPath)
		loaded, err := config.Load(configPath)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		} else {
			cfg = loaded
		}
	}
	if ordersPath != "" {
		cfg.OrdersFile = ordersPath
		cfg.OrdersLiteral = nil
	}

	if len(result.Errors) == 0 {
		if err := cfg.Validate(); err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
	}

	if len(result.Errors) == 0 {
		batch, err := cfg.Orders()
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		} else {
			result.Orders = len(batch)
			formatter.VerboseLog("batch has %d order(s)", len(batch))
		}
	}

	result.Valid = len(result.Errors) == 0
	return outputValidation(formatter, result)
}

func outputValidation(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		if result.Valid {
			return formatter.Success(result)
		}
		if err := formatter.Error("invalid", result.Errors[0], result.Errors); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}

	if result.Valid {
		fmt.Fprintf(formatter.Writer, "✓ Configuration valid, %d order(s)\n", result.Orders)
		return nil
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, msg := range result.Errors {
		fmt.Fprintf(formatter.Writer, "  %s\n", msg)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
}
