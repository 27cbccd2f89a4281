// Package session tracks workflow executions by id. The manager owns the
// per-run artifact store (each execution gets its own cache directory
// under the configured base dir) and is the single lookup point the HTTP
// layer and the CLI use to reach a running or finished execution.
package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/SquizAI/DW-final-sub000/internal/ctxlog"
	"github.com/SquizAI/DW-final-sub000/internal/datastore"
	"github.com/SquizAI/DW-final-sub000/internal/executor"
	"github.com/SquizAI/DW-final-sub000/internal/graph"
	"github.com/SquizAI/DW-final-sub000/internal/observability"
	"github.com/SquizAI/DW-final-sub000/internal/registry"
	"github.com/SquizAI/DW-final-sub000/internal/workflow"
)

// ErrNotFound is returned when no execution exists for the given id.
var ErrNotFound = errors.New("execution not found")

// Options configures a Manager.
type Options struct {
	// BaseDir is the root under which each execution gets its artifact
	// cache directory.
	BaseDir string
	// MaxParallelNodes caps concurrency for runs requesting parallel mode.
	MaxParallelNodes int
}

// Manager creates, indexes and tears down executions.
type Manager struct {
	registry *registry.Registry
	metrics  *observability.Metrics
	opts     Options

	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	exec  *executor.Execution
	store *datastore.Store
}

// NewManager creates a Manager. BaseDir must be set.
func NewManager(reg *registry.Registry, metrics *observability.Metrics, opts Options) (*Manager, error) {
	if opts.BaseDir == "" {
		return nil, fmt.Errorf("session manager requires a base directory")
	}
	if opts.MaxParallelNodes < 1 {
		opts.MaxParallelNodes = 1
	}
	return &Manager{
		registry: reg,
		metrics:  metrics,
		opts:     opts,
		entries:  make(map[string]*entry),
	}, nil
}

// prepare validates the request, builds the graph and registers a fresh
// execution with its own artifact store.
func (m *Manager) prepare(ctx context.Context, req *workflow.Request) (*executor.Execution, error) {
	executionID := uuid.NewString()

	nodes, edges, err := req.Materialize()
	if err != nil {
		return nil, executor.NewWorkflowError(req.WorkflowID, executionID, err)
	}
	g, err := graph.Build(ctx, nodes, edges)
	if err != nil {
		return nil, executor.NewWorkflowError(req.WorkflowID, executionID, err)
	}

	store, err := datastore.New(datastore.Config{
		CacheDir: filepath.Join(m.opts.BaseDir, executionID),
	})
	if err != nil {
		return nil, fmt.Errorf("creating artifact store for execution %s: %w", executionID, err)
	}

	exec := executor.New(executor.Config{
		WorkflowID:       req.WorkflowID,
		ExecutionID:      executionID,
		StopOnError:      req.StopOnError,
		MaxParallelNodes: req.Parallelism(m.opts.MaxParallelNodes),
	}, g, m.registry, store, m.metrics)

	m.mu.Lock()
	m.entries[executionID] = &entry{exec: exec, store: store}
	m.mu.Unlock()

	ctxlog.FromContext(ctx).Info("Execution registered.",
		"execution_id", executionID, "workflow_id", req.WorkflowID, "nodes", g.Len())
	return exec, nil
}

// Start begins an execution asynchronously and returns it immediately.
// The run detaches from the caller's context lifetime but keeps its
// logger.
func (m *Manager) Start(ctx context.Context, req *workflow.Request) (*executor.Execution, error) {
	exec, err := m.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	runCtx := ctxlog.WithLogger(context.Background(), ctxlog.FromContext(ctx))
	go func() {
		// The fatal error is kept on the execution; callers observe it
		// through the status API.
		_ = exec.Execute(runCtx)
	}()
	return exec, nil
}

// Run executes a request synchronously and returns the finished (or
// paused) execution. The CLI path uses this.
func (m *Manager) Run(ctx context.Context, req *workflow.Request) (*executor.Execution, error) {
	exec, err := m.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := exec.Execute(ctx); err != nil {
		return exec, err
	}
	return exec, nil
}

// Get returns the execution with the given id, or ErrNotFound.
func (m *Manager) Get(id string) (*executor.Execution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e.exec, nil
}

// Delete stops the execution if it is still going and destroys its
// artifact cache.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.entries[id]
	if ok {
		delete(m.entries, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	if !e.exec.Status().Terminal() {
		// Best effort; the run loop notices the stop flag on its own.
		_ = e.exec.Stop()
	}
	return e.store.Destroy(ctx)
}

// Close tears down every tracked execution and its artifact cache.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	entries := m.entries
	m.entries = make(map[string]*entry)
	m.mu.Unlock()

	var firstErr error
	for id, e := range entries {
		if !e.exec.Status().Terminal() {
			_ = e.exec.Stop()
		}
		if err := e.store.Destroy(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("destroying store of execution %s: %w", id, err)
		}
	}
	return firstErr
}

// Len returns the number of tracked executions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
