package app

import (
	"errors"
	"os"
	"path/filepath"
)

// Config holds everything an App instance needs to run.
type Config struct {
	// CacheDir is the root directory for spilled artifacts; each
	// execution gets its own subdirectory. Defaults to a dwflow dir
	// under the OS temp dir.
	CacheDir string

	// ListenAddr is the HTTP bind address used by Serve.
	ListenAddr string

	// MaxParallelNodes caps concurrency for parallel-mode runs.
	MaxParallelNodes int

	LogFormat string // "text" or "json"
	LogLevel  string // "debug", "info", "warn", "error"
}

// NewConfig validates and normalizes a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.CacheDir == "" {
		cfg.CacheDir = filepath.Join(os.TempDir(), "dwflow")
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8085"
	}
	if cfg.MaxParallelNodes < 1 {
		cfg.MaxParallelNodes = 1
	}
	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, errors.New("log format must be 'text' or 'json'")
	}
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, errors.New("log level must be one of 'debug', 'info', 'warn', 'error'")
	}
	return &cfg, nil
}
