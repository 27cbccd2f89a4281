package workflow

import "fmt"

// Execution modes accepted on a submission.
const (
	ModeSequential = "sequential"
	ModeParallel   = "parallel"
)

// Request is the wire format of a workflow submission.
type Request struct {
	WorkflowID    string        `json:"workflow_id,omitempty" yaml:"workflow_id"`
	Nodes         []RequestNode `json:"nodes" yaml:"nodes"`
	Edges         []RequestEdge `json:"edges" yaml:"edges"`
	ExecutionMode string        `json:"execution_mode,omitempty" yaml:"execution_mode"`
	StopOnError   bool          `json:"stop_on_error,omitempty" yaml:"stop_on_error"`
}

// RequestNode mirrors the client-side node shape: the kind-specific config
// travels in the `data` field.
type RequestNode struct {
	ID   string         `json:"id" yaml:"id"`
	Type string         `json:"type" yaml:"type"`
	Data map[string]any `json:"data" yaml:"data"`
}

// RequestEdge mirrors the client-side edge shape. The edge's own id is
// accepted but unused; handles default to "default" when omitted.
type RequestEdge struct {
	ID           string `json:"id,omitempty" yaml:"id"`
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"source_handle"`
	TargetHandle string `json:"targetHandle,omitempty" yaml:"target_handle"`
}

// Materialize converts the wire payload into the internal node and edge
// model, rejecting unknown node kinds.
func (r *Request) Materialize() ([]Node, []Edge, error) {
	nodes := make([]Node, 0, len(r.Nodes))
	for _, rn := range r.Nodes {
		if rn.ID == "" {
			return nil, nil, fmt.Errorf("node with empty id in submission")
		}
		kind, err := ParseKind(rn.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("node '%s': %w", rn.ID, err)
		}
		nodes = append(nodes, Node{ID: rn.ID, Kind: kind, Config: rn.Data})
	}

	edges := make([]Edge, 0, len(r.Edges))
	for _, re := range r.Edges {
		edges = append(edges, Edge{
			Source:       re.Source,
			Target:       re.Target,
			SourceHandle: re.SourceHandle,
			TargetHandle: re.TargetHandle,
		}.Normalize())
	}

	return nodes, edges, nil
}

// Parallelism translates the requested execution mode into a worker limit.
// Sequential mode (the default) runs one node at a time.
func (r *Request) Parallelism(maxParallelNodes int) int {
	if r.ExecutionMode == ModeParallel && maxParallelNodes > 1 {
		return maxParallelNodes
	}
	return 1
}
