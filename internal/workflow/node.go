// Package workflow defines the data model shared by the graph builder, the
// executor and the transport surfaces: nodes, edges and the submission
// payload they arrive in. Values here are immutable once a run starts.
package workflow

// DefaultHandle is the implicit handle name used when an edge does not name
// a specific output or input port.
const DefaultHandle = "default"

// Node is a single unit of work in a workflow definition.
type Node struct {
	// ID is the unique identifier of the node within its workflow.
	ID string
	// Kind selects which processor family executes this node.
	Kind Kind
	// Config carries the kind-specific configuration. Concrete processors
	// decode it into their typed config struct at creation time.
	Config map[string]any
}

// Edge is a directed dependency between two nodes. It doubles as a data
// route: the source node's output named SourceHandle is delivered to the
// target node under TargetHandle.
type Edge struct {
	Source       string
	Target       string
	SourceHandle string
	TargetHandle string
}

// Normalize fills in the default handles on an edge that omitted them.
func (e Edge) Normalize() Edge {
	if e.SourceHandle == "" {
		e.SourceHandle = DefaultHandle
	}
	if e.TargetHandle == "" {
		e.TargetHandle = DefaultHandle
	}
	return e
}
