package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-cipherview"
	"github.com/goliatone/go-cipherview/pkg/renderers/tui"
)

var runOpts tui.RunOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Transform text interactively in the terminal",
	Long: `Prompts for the text, the seed and the operation, then prints the steps,
the character breakdown and the result as they are revealed. An empty seed
asks the service for a new one.

Example:
  cipherview run --text "hello" --seed abc123 --operation encrypt --once`,
	Args: cobra.NoArgs,
	RunE: runConsole,
}

func init() {
	flags := runCmd.Flags()
	flags.StringVar(&runOpts.Text, "text", "", "text to transform (prompted when empty)")
	flags.StringVar(&runOpts.Seed, "seed", "", "security seed (prompted when empty)")
	flags.StringVarP(&runOpts.Operation, "operation", "o", "", "encrypt or decrypt (prompted when empty)")
	flags.BoolVar(&runOpts.Once, "once", false, "exit after one transformation")
}

func runConsole(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cipherview.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if runOpts.Operation != "" && !app.Contract.HasOperation(runOpts.Operation) {
		return fmt.Errorf("unknown operation %q", runOpts.Operation)
	}

	session, err := app.Session(ctx, tui.Name)
	if err != nil {
		return err
	}
	defer session.Close()

	console := tui.NewConsole(app.TerminalRenderer(),
		tui.WithOutput(cmd.OutOrStdout()),
		tui.WithChoices(app.Choices()...),
	)
	err = console.Run(ctx, session, runOpts)
	if errors.Is(err, tui.ErrAborted) {
		return nil
	}
	return err
}

func parseDuration(name, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s %q: %w", name, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("--%s must be positive", name)
	}
	return d, nil
}
