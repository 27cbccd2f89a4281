package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/SquizAI/DW-final-sub000/internal/ctxlog"
	"github.com/SquizAI/DW-final-sub000/internal/workflow"
)

// CycleError reports a dependency cycle found during validation. Path holds
// the minimal cycle in execution direction, repeating the entry node at the
// end, e.g. [a b a].
type CycleError struct {
	Path []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("workflow contains a dependency cycle: [%s]", strings.Join(e.Path, " -> "))
}

// Build constructs a validated DAG from a node and edge list. It has no side
// effects and is deterministic: the same input always yields the same graph,
// the same topological order and, for invalid input, the same diagnostic.
func Build(ctx context.Context, nodes []workflow.Node, edges []workflow.Edge) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting graph construction.", "nodes", len(nodes), "edges", len(edges))

	g := &Graph{
		nodes:      make(map[string]workflow.Node, len(nodes)),
		deps:       make(map[string]map[string]struct{}, len(nodes)),
		dependents: make(map[string]map[string]struct{}, len(nodes)),
	}

	for _, n := range nodes {
		if _, exists := g.nodes[n.ID]; exists {
			return nil, fmt.Errorf("duplicate node id '%s'", n.ID)
		}
		g.nodes[n.ID] = n
		g.deps[n.ID] = make(map[string]struct{})
		g.dependents[n.ID] = make(map[string]struct{})
	}

	for _, e := range edges {
		e = e.Normalize()
		if _, ok := g.nodes[e.Source]; !ok {
			return nil, fmt.Errorf("edge references non-existent source node '%s'", e.Source)
		}
		if _, ok := g.nodes[e.Target]; !ok {
			return nil, fmt.Errorf("edge references non-existent target node '%s'", e.Target)
		}
		if e.Source == e.Target {
			return nil, &CycleError{Path: []string{e.Source, e.Source}}
		}
		g.edges = append(g.edges, e)
		g.deps[e.Target][e.Source] = struct{}{}
		g.dependents[e.Source][e.Target] = struct{}{}
	}

	if cycle := g.findCycle(); cycle != nil {
		logger.Debug("Build: cycle detected.", "path", cycle.Path)
		return nil, cycle
	}

	g.order = g.topologicalOrder()
	logger.Debug("Build: graph construction successful.", "order", g.order)
	return g, nil
}

// findCycle runs a depth-first search over the dependent edges and returns
// the first cycle encountered. Node ids are visited in sorted order so the
// reported cycle is stable across calls.
func (g *Graph) findCycle() *CycleError {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(g.nodes))
	var stack []string

	var visit func(id string) *CycleError
	visit = func(id string) *CycleError {
		state[id] = visiting
		stack = append(stack, id)

		for _, next := range sortedKeys(g.dependents[id]) {
			switch state[next] {
			case visiting:
				// Slice the stack from the first occurrence of next to get
				// the minimal cycle, then close the loop.
				for i, onStack := range stack {
					if onStack == next {
						path := append(append([]string{}, stack[i:]...), next)
						return &CycleError{Path: path}
					}
				}
			case unvisited:
				if err := visit(next); err != nil {
					return err
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[id] = done
		return nil
	}

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if state[id] == unvisited {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// topologicalOrder computes an execution order using Kahn's algorithm. Ties
// between ready nodes break lexicographically, which keeps the order stable
// for identical input. Must only be called on an acyclic graph.
func (g *Graph) topologicalOrder() []string {
	indegree := make(map[string]int, len(g.nodes))
	for id, deps := range g.deps {
		indegree[id] = len(deps)
	}

	var ready []string
	for id, n := range indegree {
		if n == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		unlocked := false
		for _, dep := range sortedKeys(g.dependents[id]) {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
				unlocked = true
			}
		}
		if unlocked {
			sort.Strings(ready)
		}
	}
	return order
}
