// Package registry maps node kinds to processor constructors. A Registry is
// built once at process start, populated by Modules and read-only
// afterwards; it is passed by reference into the executor instead of living
// as hidden global state.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/SquizAI/DW-final-sub000/internal/processor"
	"github.com/SquizAI/DW-final-sub000/internal/workflow"
)

// Constructor builds a processor for one node, decoding and validating the
// node's config map in the process.
type Constructor func(id string, config map[string]any) (processor.Processor, error)

// Module is the interface all processor modules implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the processor constructors for a single application
// instance.
type Registry struct {
	constructors map[workflow.Kind]Constructor
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{constructors: make(map[workflow.Kind]Constructor)}
}

// RegisterProcessor registers the constructor for a node kind. Registering
// the same kind twice is a programmer error and panics at startup.
func (r *Registry) RegisterProcessor(kind workflow.Kind, c Constructor) {
	if _, exists := r.constructors[kind]; exists {
		panic(fmt.Sprintf("processor for kind '%s' already registered", kind))
	}
	slog.Debug("Registering processor constructor.", "kind", kind)
	r.constructors[kind] = c
}

// Create instantiates a processor for the given node. An unknown kind or a
// config the constructor rejects yields a NodeConfigurationError naming the
// offending node.
func (r *Registry) Create(kind workflow.Kind, id string, config map[string]any) (processor.Processor, error) {
	c, ok := r.constructors[kind]
	if !ok {
		return nil, &processor.NodeConfigurationError{
			NodeID: id,
			Kind:   kind.String(),
			Err:    errors.New("no processor registered for this kind"),
		}
	}
	p, err := c(id, config)
	if err != nil {
		var cfgErr *processor.NodeConfigurationError
		if errors.As(err, &cfgErr) {
			return nil, err
		}
		return nil, &processor.NodeConfigurationError{NodeID: id, Kind: kind.String(), Err: err}
	}
	return p, nil
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []workflow.Kind {
	out := make([]workflow.Kind, 0, len(r.constructors))
	for k := range r.constructors {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
