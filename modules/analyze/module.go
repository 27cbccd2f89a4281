// Package analyze implements the analysis node kind: it computes summary
// statistics over one column of its input table and emits them as a value
// artifact.
package analyze

import (
	"context"
	"fmt"
	"math"

	"github.com/SquizAI/DW-final-sub000/internal/artifact"
	"github.com/SquizAI/DW-final-sub000/internal/processor"
	"github.com/SquizAI/DW-final-sub000/internal/registry"
	"github.com/SquizAI/DW-final-sub000/internal/workflow"
)

// Module registers the analyze processor.
type Module struct{}

// Register implements registry.Module.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterProcessor(workflow.KindAnalyze, New)
}

// Config is the typed configuration of an analyze node.
type Config struct {
	// Column is the column the statistics are computed over.
	Column string `json:"column"`
	// Metrics selects which statistics to compute; defaults to all of
	// count, mean, min, max.
	Metrics []string `json:"metrics,omitempty"`
}

var allMetrics = []string{"count", "mean", "min", "max"}

// Processor computes summary statistics.
type Processor struct {
	processor.Base
	cfg Config
}

// New decodes and validates an analyze node's config.
func New(id string, config map[string]any) (processor.Processor, error) {
	var cfg Config
	if err := workflow.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	if cfg.Column == "" {
		return nil, fmt.Errorf("analyze requires 'column'")
	}
	if len(cfg.Metrics) == 0 {
		cfg.Metrics = allMetrics
	}
	for _, m := range cfg.Metrics {
		switch m {
		case "count", "mean", "min", "max":
		default:
			return nil, fmt.Errorf("unknown metric '%s'", m)
		}
	}
	return &Processor{
		Base: processor.Base{ID: id, NodeKind: workflow.KindAnalyze},
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
	if !table.HasColumn(p.cfg.Column) {
		return nil, &processor.DataValidationError{
			Problems: []string{fmt.Sprintf("column '%s' not present in input table", p.cfg.Column)},
		}
	}

	count := 0
	sum := 0.0
	min := math.Inf(1)
	max := math.Inf(-1)
	for _, row := range table.Rows {
		n, ok := artifact.AsNumber(row[p.cfg.Column])
		if !ok {
			continue
		}
		count++
		sum += n
		min = math.Min(min, n)
		max = math.Max(max, n)
	}
	progress(90)

	stats := map[string]any{"column": p.cfg.Column}
	for _, m := range p.cfg.Metrics {
		switch m {
		case "count":
			stats["count"] = float64(count)
		case "mean":
			if count > 0 {
				stats["mean"] = sum / float64(count)
			}
		case "min":
			if count > 0 {
				stats["min"] = min
			}
		case "max":
			if count > 0 {
				stats["max"] = max
			}
		}
	}
	return processor.Outputs{workflow.DefaultHandle: artifact.FromValue(stats)}, nil
}
