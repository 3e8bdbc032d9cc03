package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-cipherview"
	"github.com/goliatone/go-cipherview/internal/logging"
)

var (
	// Global flags
	configPath  string
	verbose     bool
	serviceURL  string
	revealTick  string
	trustResult bool

	cfg    cipherview.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cipherview",
	Short: "Step-by-step visualizer for a remote cipher service",
	Long: `cipherview sends text and a seed to a cipher service and reveals the
narrative steps, the character breakdown and the final result one at a time.

Use "serve" for the browser interface and "run" for the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := cipherview.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if err := applyFlags(cmd, &loaded); err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		logger, _, err = logging.New(logging.Config{
			Level:       cfg.Log.Level,
			Development: cfg.Log.Development,
			Verbose:     verbose,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&serviceURL, "service", "", "cipher service base URL")
	flags.StringVar(&revealTick, "tick", "", "delay between revealed steps (e.g. 250ms)")
	flags.BoolVar(&trustResult, "trust-result", false, "render sanitized inline markup in the final result")

	rootCmd.AddCommand(serveCmd, runCmd)
}

func applyFlags(cmd *cobra.Command, c *cipherview.Config) error {
	flags := cmd.Flags()
	if flags.Changed("service") {
		c.Service.BaseURL = serviceURL
	}
	if flags.Changed("tick") {
		tick, err := parseDuration("tick", revealTick)
		if err != nil {
			return err
		}
		c.Presentation.RevealTick = tick
	}
	if flags.Changed("trust-result") {
		c.Presentation.TrustResult = trustResult
	}
	if flags.Changed("listen") {
		c.Listen = listenAddr
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
