// Package visualize implements the visualization node kind. It does not
// render anything itself: it emits a chart-spec value artifact (chart type,
// axes, data series) for a client-side renderer to draw.
package visualize

import (
	"context"
	"fmt"

	"github.com/SquizAI/DW-final-sub000/internal/artifact"
	"github.com/SquizAI/DW-final-sub000/internal/processor"
	"github.com/SquizAI/DW-final-sub000/internal/registry"
	"github.com/SquizAI/DW-final-sub000/internal/workflow"
)

// Module registers the visualize processor.
type Module struct{}

// Register implements registry.Module.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterProcessor(workflow.KindVisualize, New)
}

// Config is the typed configuration of a visualize node.
type Config struct {
	// Chart is one of "bar", "line" or "scatter".
	Chart string `json:"chart"`
	// X and Y name the columns plotted on each axis.
	X string `json:"x"`
	Y string `json:"y"`
	// Title is an optional chart title.
	Title string `json:"title,omitempty"`
}

// Processor builds a chart spec from its input table.
type Processor struct {
	processor.Base
	cfg Config
}

// New decodes and validates a visualize node's config.
func New(id string, config map[string]any) (processor.Processor, error) {
	var cfg Config
	if err := workflow.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	switch cfg.Chart {
	case "bar", "line", "scatter":
	case "":
		return nil, fmt.Errorf("visualize requires 'chart'")
	default:
		return nil, fmt.Errorf("unknown chart type '%s'", cfg.Chart)
	}
	if cfg.X == "" || cfg.Y == "" {
		return nil, fmt.Errorf("visualize requires 'x' and 'y' columns")
	}
	return &Processor{
		Base: processor.Base{ID: id, NodeKind: workflow.KindVisualize},
		cfg:  cfg,
	}, nil
}

// RequiredInputs implements processor.Processor.
func (p *Processor) RequiredInputs() []string { return []string{workflow.DefaultHandle} }

// ExpectedOutputs implements processor.Processor.
func (p *Processor) ExpectedOutputs() []string { return []string{workflow.DefaultHandle} }

// ValidateInputs implements processor.Processor.
func (p *Processor) ValidateInputs(inputs processor.Inputs) error {
	return processor.RequireInputs(p.RequiredInputs(), inputs)
}

// ValidateOutputs implements processor.Processor.
func (p *Processor) ValidateOutputs(outputs processor.Outputs) error {
	return processor.RequireOutputs(p.ExpectedOutputs(), outputs)
}

// Execute implements processor.Processor.
func (p *Processor) Execute(ctx context.Context, inputs processor.Inputs, progress processor.Progress) (processor.Outputs, error) {
	table, err := processor.RequireTable(inputs, workflow.DefaultHandle)
	if err != nil {
		return nil, err
	}
	var problems []string
	for _, col := range []string{p.cfg.X, p.cfg.Y} {
		if !table.HasColumn(col) {
			problems = append(problems, fmt.Sprintf("column '%s' not present in input table", col))
		}
	}
	if len(problems) > 0 {
		return nil, &processor.DataValidationError{Problems: problems}
	}

	series := make([]map[string]any, 0, len(table.Rows))
	for _, row := range table.Rows {
		series = append(series, map[string]any{
			"x": row[p.cfg.X],
			"y": row[p.cfg.Y],
		})
	}
	progress(90)

	spec := map[string]any{
		"chart":  p.cfg.Chart,
		"x":      p.cfg.X,
		"y":      p.cfg.Y,
		"title":  p.cfg.Title,
		"series": series,
	}
	return processor.Outputs{workflow.DefaultHandle: artifact.FromValue(spec)}, nil
}
