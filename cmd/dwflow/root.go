package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	cacheDir    string
	logFormat   string
	logLevel    string
	maxParallel int
}

var rootCmd = &cobra.Command{
	Use:   "dwflow",
	Short: "DAG workflow engine for tabular data pipelines",
	Long: "dwflow executes node-based data workflows: sources, transforms,\n" +
		"analyses, visualizations and exports wired into a DAG. Run a workflow\n" +
		"file directly or serve the HTTP API.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.cacheDir, "cache-dir", "", "Root directory for spilled artifacts (default: OS temp dir)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log output format: 'text' or 'json'")
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level: 'debug', 'info', 'warn' or 'error'")
	pf.IntVar(&rootFlags.maxParallel, "max-parallel", 4, "Maximum nodes executed concurrently in parallel mode")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
