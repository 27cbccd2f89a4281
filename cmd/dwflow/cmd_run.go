package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/SquizAI/DW-final-sub000/internal/app"
)

var runCmd = &cobra.Command{
	Use:   "run PATH",
	Short: "Execute a workflow file and print the final status",
	Long: "Executes the workflow defined in an .hcl, .json or .yaml file to\n" +
		"completion and prints the final status snapshot as JSON. A directory\n" +
		"runs every workflow file found under it.",
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := app.NewConfig(app.Config{
		CacheDir:         rootFlags.cacheDir,
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
	return a.RunPath(cmd.Context(), args[0])
}
