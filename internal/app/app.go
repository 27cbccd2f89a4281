// Package app contains the core application wiring. It builds the
// registry, metrics and session manager from a validated Config and
// exposes the two lifecycles: running a workflow file to completion and
// serving the HTTP API. It is decoupled from any specific entrypoint.
package app

import (
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/SquizAI/DW-final-sub000/internal/observability"
	"github.com/SquizAI/DW-final-sub000/internal/registry"
	"github.com/SquizAI/DW-final-sub000/internal/server"
	"github.com/SquizAI/DW-final-sub000/internal/session"
)

// App encapsulates the application's dependencies and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	promReg  *prometheus.Registry
	metrics  *observability.Metrics
	sessions *session.Manager
}

// NewApp constructs a fully wired App with its own isolated logger,
// registry and metrics. When no modules are given the compiled-in core
// set is used.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All processor modules registered.", "count", len(modules), "kinds", reg.Kinds())

	promReg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(promReg)

	sessions, err := session.NewManager(reg, metrics, session.Options{
		BaseDir:          cfg.CacheDir,
		MaxParallelNodes: cfg.MaxParallelNodes,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		promReg:  promReg,
		metrics:  metrics,
		sessions: sessions,
	}, nil
}

// Registry returns the application's registry. Primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Sessions returns the session manager. Primarily for testing.
func (a *App) Sessions() *session.Manager {
	return a.sessions
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// newServer builds the HTTP surface over the app's session manager.
func (a *App) newServer() *server.Server {
	return server.New(a.sessions, a.logger)
}
