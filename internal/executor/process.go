package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/SquizAI/DW-final-sub000/internal/ctxlog"
	"github.com/SquizAI/DW-final-sub000/internal/processor"
)

// Progress checkpoints of the generic processing pipeline. Processor
// self-reported progress is mapped into the band between validated
// inputs and completed execution.
const (
	progressStart     = 0
	progressValidated = 10
	progressExecuted  = 80
	progressDone      = 100
)

// processNode runs the full validate → execute → validate → store
// pipeline for one node and records the outcome. Any error or panic
// leaving a processor is wrapped into a NodeExecutionError; raw error
// types never cross the node boundary.
func (e *Execution) processNode(ctx context.Context, id string) {
	node, _ := e.graph.Node(id)
	logger := ctxlog.FromContext(ctx).With("execution_id", e.cfg.ExecutionID, "node_id", id, "kind", node.Kind)

	start := time.Now()
	e.setNodeRunning(id, start)
	logger.Debug("Node dispatched.")

	err := e.executeNode(ctx, id)
	elapsed := time.Since(start)

	if err != nil {
		wrapped := processor.WrapNodeError(id, node.Kind, err)
		e.setNodeFailed(id, wrapped)
		e.metrics.ObserveNode(string(node.Kind), string(NodeFailed), elapsed)
		logger.Warn("Node failed.", "error", wrapped, "duration", elapsed)
		return
	}
	e.setNodeCompleted(id)
	e.metrics.ObserveNode(string(node.Kind), string(NodeCompleted), elapsed)
	logger.Debug("Node completed.", "duration", elapsed)
}

// executeNode performs the three-step processor contract. The named
// return lets the deferred recover turn a processor panic into an error.
func (e *Execution) executeNode(ctx context.Context, id string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processor panic: %v", r)
		}
	}()

	e.mu.Lock()
	cfgErr := e.configErrs[id]
	proc := e.procs[id]
	e.mu.Unlock()
	if cfgErr != nil {
		return cfgErr
	}

	e.setNodeProgress(id, progressStart)
	inputs := e.store.GetNodeInputs(ctx, id, e.graph.InboundEdges(id))

	if err := proc.ValidateInputs(inputs); err != nil {
		return err
	}
	e.setNodeProgress(id, progressValidated)

	outputs, err := proc.Execute(ctx, inputs, func(percent int) {
		e.setNodeProgress(id, progressValidated+clampPercent(percent)*(progressExecuted-progressValidated)/100)
	})
	if err != nil {
		return err
	}
	e.setNodeProgress(id, progressExecuted)

	if err := proc.ValidateOutputs(outputs); err != nil {
		return err
	}

	stored := make(map[string]string, len(outputs))
	for handle, a := range outputs {
		dataID, err := e.store.Store(ctx, id, handle, a)
		if err != nil {
			return fmt.Errorf("storing output '%s': %w", handle, err)
		}
		stored[handle] = dataID
	}

	e.mu.Lock()
	e.nodes[id].outputs = stored
	e.mu.Unlock()

	e.setNodeProgress(id, progressDone)
	return nil
}

func (e *Execution) setNodeRunning(id string, start time.Time) {
	e.mu.Lock()
	ns := e.nodes[id]
	ns.state = NodeRunning
	ns.startTime = &start
	e.mu.Unlock()
	e.publishNode(id)
}

func (e *Execution) setNodeCompleted(id string) {
	now := time.Now()
	e.mu.Lock()
	ns := e.nodes[id]
	ns.state = NodeCompleted
	ns.progress = progressDone
	ns.endTime = &now
	e.executedNodes = append(e.executedNodes, id)
	e.mu.Unlock()
	e.publishNode(id)
}

func (e *Execution) setNodeFailed(id string, err error) {
	now := time.Now()
	e.mu.Lock()
	ns := e.nodes[id]
	ns.state = NodeFailed
	ns.endTime = &now
	ns.err = err
	e.failedNodes = append(e.failedNodes, id)
	e.mu.Unlock()
	e.publishNode(id)
}

// setNodeProgress moves a node's progress forward; it never regresses.
func (e *Execution) setNodeProgress(id string, percent int) {
	e.mu.Lock()
	ns := e.nodes[id]
	if percent <= ns.progress {
		e.mu.Unlock()
		return
	}
	ns.progress = percent
	e.mu.Unlock()
	e.publishNode(id)
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
