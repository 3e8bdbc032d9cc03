package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-cipherview"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser interface",
	Long: `Starts an HTTP server. Every page load opens its own session; results
stream to the page over server-sent events.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cipherview.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	srv, err := app.Server()
	if err != nil {
		return err
	}
	return srv.Run(ctx, cfg.Listen)
}

