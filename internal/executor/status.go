package executor

import (
	"sort"
	"time"
)

// NodeSnapshot is the externally visible state of one node.
type NodeSnapshot struct {
	Status    NodeState         `json:"status"`
	Progress  int               `json:"progress"`
	AgentID   string            `json:"agent_id,omitempty"`
	Result    map[string]string `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
	StartTime *time.Time        `json:"start_time,omitempty"`
	EndTime   *time.Time        `json:"end_time,omitempty"`
}

// Snapshot is a point-in-time view of a run, shaped for the status API.
type Snapshot struct {
	ExecutionID          string                  `json:"execution_id"`
	WorkflowID           string                  `json:"workflow_id"`
	Status               Status                  `json:"status"`
	Progress             float64                 `json:"progress"`
	CurrentNode          string                  `json:"current_node,omitempty"`
	StartTime            *time.Time              `json:"start_time,omitempty"`
	EndTime              *time.Time              `json:"end_time,omitempty"`
	ExecutionTimeSeconds float64                 `json:"execution_time_seconds"`
	NodeStatuses         map[string]NodeSnapshot `json:"node_statuses"`
	ExecutedNodes        []string                `json:"executed_nodes"`
	FailedNodes          []string                `json:"failed_nodes"`
	Error                string                  `json:"error,omitempty"`
}

// Snapshot returns the current state of the run. Aggregate progress is
// the arithmetic mean over all node progress values, with not-yet-started
// nodes counting as zero, so it always lies in [0,100].
func (e *Execution) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		ExecutionID:   e.cfg.ExecutionID,
		WorkflowID:    e.cfg.WorkflowID,
		Status:        e.status,
		StartTime:     e.startTime,
		EndTime:       e.endTime,
		NodeStatuses:  make(map[string]NodeSnapshot, len(e.nodes)),
		ExecutedNodes: append([]string(nil), e.executedNodes...),
		FailedNodes:   append([]string(nil), e.failedNodes...),
	}
	if e.runErr != nil {
		snap.Error = e.runErr.Error()
	}

	total := 0
	var running []string
	for id, ns := range e.nodes {
		total += ns.progress
		node := NodeSnapshot{
			Status:    ns.state,
			Progress:  ns.progress,
			AgentID:   ns.agentID,
			StartTime: ns.startTime,
			EndTime:   ns.endTime,
		}
		if ns.err != nil {
			node.Error = ns.err.Error()
		}
		if len(ns.outputs) > 0 {
			node.Result = make(map[string]string, len(ns.outputs))
			for handle, dataID := range ns.outputs {
				node.Result[handle] = dataID
			}
		}
		snap.NodeStatuses[id] = node
		if ns.state == NodeRunning {
			running = append(running, id)
		}
	}
	if len(e.nodes) > 0 {
		snap.Progress = float64(total) / float64(len(e.nodes))
	}
	if len(running) > 0 {
		sort.Strings(running)
		snap.CurrentNode = running[0]
	}

	switch {
	case e.startTime == nil:
	case e.endTime != nil:
		snap.ExecutionTimeSeconds = e.endTime.Sub(*e.startTime).Seconds()
	default:
		snap.ExecutionTimeSeconds = time.Since(*e.startTime).Seconds()
	}
	return snap
}

// Progress returns the aggregate progress in [0,100].
func (e *Execution) Progress() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.nodes) == 0 {
		return 0
	}
	total := 0
	for _, ns := range e.nodes {
		total += ns.progress
	}
	return float64(total) / float64(len(e.nodes))
}

// Status returns the current run status.
func (e *Execution) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}
