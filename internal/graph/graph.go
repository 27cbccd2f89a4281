// Package graph builds and validates the workflow DAG. Build is the only
// entry point: it checks edge endpoints, rejects cycles with a precise
// diagnostic and precomputes a deterministic topological order. A built
// Graph is immutable, so reads need no locking.
package graph

import (
	"sort"

	"github.com/SquizAI/DW-final-sub000/internal/workflow"
)

// Graph is a validated, immutable workflow DAG.
type Graph struct {
	nodes map[string]workflow.Node
	edges []workflow.Edge
	// deps maps a node id to the set of node ids it depends on.
	deps map[string]map[string]struct{}
	// dependents maps a node id to the set of node ids depending on it.
	dependents map[string]map[string]struct{}
	// order is the topological execution order, fixed at build time.
	order []string
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (workflow.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes sorted by id.
func (g *Graph) Nodes() []workflow.Node {
	out := make([]workflow.Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns the normalized edge list.
func (g *Graph) Edges() []workflow.Edge {
	out := make([]workflow.Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Dependencies returns the sorted ids of the nodes the given node depends on.
func (g *Graph) Dependencies(id string) []string {
	return sortedKeys(g.deps[id])
}

// Dependents returns the sorted ids of the nodes that depend on the given node.
func (g *Graph) Dependents(id string) []string {
	return sortedKeys(g.dependents[id])
}

// TopologicalOrder returns the execution order computed at build time.
// Every edge's source appears before its target.
func (g *Graph) TopologicalOrder() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// InboundEdges returns the edges whose target is the given node, in the
// order they were submitted.
func (g *Graph) InboundEdges(id string) []workflow.Edge {
	var out []workflow.Edge
	for _, e := range g.edges {
		if e.Target == id {
			out = append(out, e)
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
