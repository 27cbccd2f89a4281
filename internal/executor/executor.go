// Package executor runs a workflow graph to completion.
//
// # Lifecycle
//
// An Execution moves through initialized → planning → running and ends in
// one of completed, completed_with_errors, failed or stopped. Planning
// instantiates every node's processor up front, so configuration mistakes
// surface before any node runs. While running, ready nodes (all
// dependencies in a terminal state) are dispatched in topological order,
// up to MaxParallelNodes at a time.
//
// # Pause and stop
//
// Pause and Stop are cooperative: the run loop checks the flags between
// dispatch waves only. An in-flight node always finishes (or fails)
// before the run transitions; mid-node interruption is deliberately not
// supported.
//
// # Failure policy
//
// A node failure is fatal only when StopOnError is set and some
// not-yet-executed node still has an edge from the failed node. The check
// uses the remaining execution order, so a failure on a leaf branch never
// takes down independent branches.
package executor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SquizAI/DW-final-sub000/internal/artifact"
	"github.com/SquizAI/DW-final-sub000/internal/ctxlog"
	"github.com/SquizAI/DW-final-sub000/internal/datastore"
	"github.com/SquizAI/DW-final-sub000/internal/graph"
	"github.com/SquizAI/DW-final-sub000/internal/observability"
	"github.com/SquizAI/DW-final-sub000/internal/processor"
	"github.com/SquizAI/DW-final-sub000/internal/registry"
)

// Status is the run-level state of an Execution.
type Status string

const (
	StatusInitialized         Status = "initialized"
	StatusPlanning            Status = "planning"
	StatusRunning             Status = "running"
	StatusPaused              Status = "paused"
	StatusCompleted           Status = "completed"
	StatusCompletedWithErrors Status = "completed_with_errors"
	StatusFailed              Status = "failed"
	StatusStopped             Status = "stopped"
)

// Terminal reports whether s is a final run state.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCompletedWithErrors, StatusFailed, StatusStopped:
		return true
	}
	return false
}

// NodeState is the per-node execution state. States only move forward:
// pending → assigned → running → completed|failed.
type NodeState string

const (
	NodePending   NodeState = "pending"
	NodeAssigned  NodeState = "assigned"
	NodeRunning   NodeState = "running"
	NodeCompleted NodeState = "completed"
	NodeFailed    NodeState = "failed"
)

func (s NodeState) terminal() bool {
	return s == NodeCompleted || s == NodeFailed
}

// nodeStatus is the mutable per-node record, guarded by Execution.mu.
type nodeStatus struct {
	state     NodeState
	progress  int
	agentID   string
	startTime *time.Time
	endTime   *time.Time
	err       error
	// outputs maps output handle to the dataID stored for it.
	outputs map[string]string
}

// Config carries the per-run settings of an Execution.
type Config struct {
	WorkflowID  string
	ExecutionID string
	// StopOnError makes a node failure fatal when something downstream
	// still depends on the failed node's output.
	StopOnError bool
	// MaxParallelNodes caps how many ready nodes run concurrently.
	// Values below 1 are treated as 1 (sequential).
	MaxParallelNodes int
}

// Execution is a single run of a workflow graph. Create with New, start
// with Execute, and observe through Snapshot and Subscribe. All methods
// are safe for concurrent use.
type Execution struct {
	cfg      Config
	graph    *graph.Graph
	registry *registry.Registry
	store    *datastore.Store
	metrics  *observability.Metrics

	pauseRequested atomic.Bool
	stopRequested  atomic.Bool

	mu            sync.Mutex
	status        Status
	nodes         map[string]*nodeStatus
	procs         map[string]processor.Processor
	configErrs    map[string]error
	executedNodes []string
	failedNodes   []string
	startTime     *time.Time
	endTime       *time.Time
	runErr        error

	subMu  sync.Mutex
	subSeq int
	subs   map[int]chan Event
}

// New creates an Execution over an already-validated graph.
func New(cfg Config, g *graph.Graph, reg *registry.Registry, store *datastore.Store, metrics *observability.Metrics) *Execution {
	if cfg.MaxParallelNodes < 1 {
		cfg.MaxParallelNodes = 1
	}
	nodes := make(map[string]*nodeStatus, g.Len())
	for _, id := range g.TopologicalOrder() {
		nodes[id] = &nodeStatus{state: NodePending}
	}
	return &Execution{
		cfg:        cfg,
		graph:      g,
		registry:   reg,
		store:      store,
		metrics:    metrics,
		status:     StatusInitialized,
		nodes:      nodes,
		procs:      make(map[string]processor.Processor, g.Len()),
		configErrs: make(map[string]error),
		subs:       make(map[int]chan Event),
	}
}

// ID returns the execution id.
func (e *Execution) ID() string { return e.cfg.ExecutionID }

// WorkflowID returns the id of the workflow being run.
func (e *Execution) WorkflowID() string { return e.cfg.WorkflowID }

// Execute runs the workflow from the start. It blocks until the run
// reaches a terminal state or pauses, and may be called exactly once.
// The returned error is non-nil only for a fatal (failed) run.
func (e *Execution) Execute(ctx context.Context) error {
	e.mu.Lock()
	if e.status != StatusInitialized {
		status := e.status
		e.mu.Unlock()
		return fmt.Errorf("execution %s already started (status %s)", e.cfg.ExecutionID, status)
	}
	now := time.Now()
	e.startTime = &now
	e.status = StatusPlanning
	e.mu.Unlock()
	e.publishRun()

	logger := ctxlog.FromContext(ctx).With("execution_id", e.cfg.ExecutionID, "workflow_id", e.cfg.WorkflowID)
	logger.Info("🚀 Execution starting.", "nodes", e.graph.Len(), "max_parallel", e.cfg.MaxParallelNodes, "stop_on_error", e.cfg.StopOnError)

	e.plan(ctx)

	e.mu.Lock()
	e.status = StatusRunning
	e.mu.Unlock()
	e.publishRun()

	return e.run(ctx)
}

// plan instantiates a processor for every node and marks the node
// assigned. Construction failures are kept and replayed when the node's
// turn comes, so they flow through the normal failure policy.
func (e *Execution) plan(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	order := e.graph.TopologicalOrder()
	for i, id := range order {
		node, _ := e.graph.Node(id)
		proc, err := e.registry.Create(node.Kind, node.ID, node.Config)

		e.mu.Lock()
		ns := e.nodes[id]
		ns.state = NodeAssigned
		// Advisory worker annotation; correctness never depends on it.
		ns.agentID = fmt.Sprintf("worker-%d", i%e.cfg.MaxParallelNodes+1)
		if err != nil {
			e.configErrs[id] = err
		} else {
			e.procs[id] = proc
		}
		e.mu.Unlock()

		if err != nil {
			logger.Warn("Node configuration invalid; will fail at dispatch.", "node_id", id, "error", err)
		}
	}
	logger.Debug("Planning complete.", "nodes", len(order))
}

// run drives dispatch waves until the work is done or a flag interrupts.
// It is shared by Execute and Resume.
func (e *Execution) run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("execution_id", e.cfg.ExecutionID)
	for {
		if e.stopRequested.Load() {
			logger.Info("🛑 Stop requested; halting before next dispatch.")
			e.finish(StatusStopped)
			return nil
		}
		if e.pauseRequested.Load() {
			logger.Info("⏸️ Pause requested; suspending before next dispatch.")
			e.mu.Lock()
			e.status = StatusPaused
			e.mu.Unlock()
			e.publishRun()
			return nil
		}

		batch := e.nextBatch()
		if len(batch) == 0 {
			if e.remaining() > 0 {
				// Unreachable on a validated DAG; guards against a wave
				// that made no progress.
				err := NewWorkflowError(e.cfg.WorkflowID, e.cfg.ExecutionID,
					fmt.Errorf("no dispatchable node among %d remaining", e.remaining()))
				e.failRun(err)
				return err
			}
			e.mu.Lock()
			anyFailed := len(e.failedNodes) > 0
			e.mu.Unlock()
			if anyFailed {
				logger.Info("⚠️ Execution finished with node failures.")
				e.finish(StatusCompletedWithErrors)
			} else {
				logger.Info("✅ Execution finished successfully.")
				e.finish(StatusCompleted)
			}
			return nil
		}

		var g errgroup.Group
		g.SetLimit(e.cfg.MaxParallelNodes)
		for _, id := range batch {
			id := id
			g.Go(func() error {
				e.processNode(ctx, id)
				return nil
			})
		}
		// Workers report failures through node state, never through the group.
		_ = g.Wait()

		for _, id := range batch {
			e.mu.Lock()
			ns := e.nodes[id]
			failed := ns.state == NodeFailed
			cause := ns.err
			e.mu.Unlock()
			if !failed {
				continue
			}
			if e.cfg.StopOnError && e.hasRemainingDependent(id) {
				err := NewWorkflowError(e.cfg.WorkflowID, e.cfg.ExecutionID, cause)
				logger.Error("❌ Fatal node failure; downstream work depends on it.", "node_id", id, "error", cause)
				e.failRun(err)
				return err
			}
			logger.Warn("Node failed; no remaining dependent, continuing.", "node_id", id, "error", cause)
		}
	}
}

// nextBatch returns up to MaxParallelNodes assigned nodes whose
// dependencies have all reached a terminal state, in topological order.
// A node whose upstream failed still dispatches: its own required-input
// validation decides whether it can proceed.
func (e *Execution) nextBatch() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var batch []string
	for _, id := range e.graph.TopologicalOrder() {
		if e.nodes[id].state != NodeAssigned {
			continue
		}
		ready := true
		for _, dep := range e.graph.Dependencies(id) {
			if !e.nodes[dep].state.terminal() {
				ready = false
				break
			}
		}
		if !ready {
			continue
		}
		batch = append(batch, id)
		if len(batch) == e.cfg.MaxParallelNodes {
			break
		}
	}
	return batch
}

// remaining counts nodes that have not reached a terminal state.
func (e *Execution) remaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, ns := range e.nodes {
		if !ns.state.terminal() {
			n++
		}
	}
	return n
}

// hasRemainingDependent reports whether any not-yet-executed node has an
// edge from the given node. Only the remaining order matters: dependents
// that already ran are irrelevant.
func (e *Execution) hasRemainingDependent(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, dep := range e.graph.Dependents(id) {
		if !e.nodes[dep].state.terminal() {
			return true
		}
	}
	return false
}

// failRun records the fatal error and moves the run to failed.
func (e *Execution) failRun(err error) {
	e.mu.Lock()
	e.runErr = err
	e.mu.Unlock()
	e.finish(StatusFailed)
}

// finish moves the run to a terminal status exactly once.
func (e *Execution) finish(status Status) {
	e.mu.Lock()
	if e.status.Terminal() {
		e.mu.Unlock()
		return
	}
	e.status = status
	now := time.Now()
	e.endTime = &now
	var elapsed time.Duration
	if e.startTime != nil {
		elapsed = now.Sub(*e.startTime)
	}
	e.mu.Unlock()

	e.metrics.ObserveRun(string(status), elapsed)
	e.publishRun()
}

// Pause requests a cooperative pause. The run suspends before the next
// dispatch wave; in-flight nodes finish first.
func (e *Execution) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status.Terminal() {
		return fmt.Errorf("execution %s already finished (status %s)", e.cfg.ExecutionID, e.status)
	}
	if e.status == StatusPaused {
		return fmt.Errorf("execution %s is already paused", e.cfg.ExecutionID)
	}
	e.pauseRequested.Store(true)
	return nil
}

// Resume re-enters the run loop from paused. Completed and failed nodes
// are never re-run; the remaining topological order is picked up where
// the pause left it.
func (e *Execution) Resume(ctx context.Context) error {
	e.mu.Lock()
	if e.status != StatusPaused {
		status := e.status
		e.mu.Unlock()
		return fmt.Errorf("execution %s is %s, not paused", e.cfg.ExecutionID, status)
	}
	e.pauseRequested.Store(false)
	e.status = StatusRunning
	e.mu.Unlock()
	e.publishRun()

	ctxlog.FromContext(ctx).Info("▶️ Execution resuming.", "execution_id", e.cfg.ExecutionID, "remaining", e.remaining())
	return e.run(ctx)
}

// Stop cancels the run. A paused run transitions to stopped immediately;
// a running one halts before its next dispatch wave. Stopped runs cannot
// be resumed.
func (e *Execution) Stop() error {
	e.mu.Lock()
	if e.status.Terminal() {
		status := e.status
		e.mu.Unlock()
		return fmt.Errorf("execution %s already finished (status %s)", e.cfg.ExecutionID, status)
	}
	e.stopRequested.Store(true)
	idle := e.status == StatusPaused || e.status == StatusInitialized
	e.mu.Unlock()

	if idle {
		e.finish(StatusStopped)
	}
	return nil
}

// Err returns the fatal run error, if any.
func (e *Execution) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runErr
}

// Results returns the stored output artifacts of every completed node,
// keyed by node id and output handle.
func (e *Execution) Results(ctx context.Context) (map[string]map[string]artifact.Artifact, error) {
	e.mu.Lock()
	refs := make(map[string]map[string]string)
	for id, ns := range e.nodes {
		if ns.state != NodeCompleted || len(ns.outputs) == 0 {
			continue
		}
		out := make(map[string]string, len(ns.outputs))
		for handle, dataID := range ns.outputs {
			out[handle] = dataID
		}
		refs[id] = out
	}
	e.mu.Unlock()

	results := make(map[string]map[string]artifact.Artifact, len(refs))
	for id, outputs := range refs {
		results[id] = make(map[string]artifact.Artifact, len(outputs))
		for handle, dataID := range outputs {
			a, err := e.store.Get(ctx, dataID)
			if err != nil {
				return nil, fmt.Errorf("loading result '%s' of node '%s': %w", handle, id, err)
			}
			results[id][handle] = a
		}
	}
	return results, nil
}
