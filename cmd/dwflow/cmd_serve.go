package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SquizAI/DW-final-sub000/internal/app"
)

var serveFlags struct {
	addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workflow engine HTTP API",
	Long: "Starts the HTTP API: workflow submission, execution control\n" +
		"(pause/resume/stop), status, results, a WebSocket progress stream,\n" +
		"health and Prometheus metrics.",
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", ":8085", "HTTP listen address")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := app.NewConfig(app.Config{
		CacheDir:         rootFlags.cacheDir,
		ListenAddr:       serveFlags.addr,
		MaxParallelNodes: rootFlags.maxParallel,
		LogFormat:        rootFlags.logFormat,
		LogLevel:         rootFlags.logLevel,
	})
	if err != nil {
		return err
	}
	a, err := app.NewApp(os.Stdout, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Serve(ctx, cfg.ListenAddr)
}
