// Package root wires the cobra CLI surface around the configuration-mutation
// engine. None of the invariants described elsewhere live here: this is the
// thin driver spec.md §6 calls out as deliberately out of core scope.
package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/poe-code/poe-code/internal/printer"
	"github.com/poe-code/poe-code/internal/xerrors"
)

func NewRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "poe-code",
		Short: "poe-code - route coding-agent CLIs through Poe",
		Long:  "poe-code configures third-party coding-agent CLIs to route traffic through Poe.",
		Example: `  poe-code configure claude
  poe-code unconfigure codex
  poe-code list`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.setupLogging(); err != nil {
				var sinkErr *xerrors.LogSinkError
				if errors.As(err, &sinkErr) {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; debug logging disabled\n", sinkErr)
				}
				slog.SetDefault(slog.New(slog.DiscardHandler))
			}
			flags.applyColorMode()
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			flags.closeLogging()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.debugMode, "debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&flags.logFilePath, "log-file", "", "Path to debug log file (default: ~/.poe-code/poe-code.debug.log; only used with --debug)")
	cmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newConfigureCmd())
	cmd.AddCommand(newUnconfigureCmd())

	return cmd
}

// Execute runs the CLI and classifies the returned error the way §7
// requires: ValidationError/UnsupportedAgentError print a plain scoped
// message, anything else is a generic failure.
func Execute(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args ...string) error {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		p := printer.New(stderr)
		p.PrintError(classify(err))
	}
	return err
}

// classify maps the typed errors of internal/xerrors onto themselves
// (already plain and scoped); anything else is wrapped as a generic
// failure so it never leaks an internal Go error format to the user.
func classify(err error) error {
	var validation *xerrors.ValidationError
	var unsupported *xerrors.UnsupportedAgentError
	if errors.As(err, &validation) || errors.As(err, &unsupported) {
		return err
	}
	return fmt.Errorf("poe-code: %w", err)
}
