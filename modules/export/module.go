// Package export implements the export node kind. It passes each declared
// input through as an identically named output artifact and can additionally
// write CSV or JSON files to disk. Multiple inputs stay keyed by handle and
// are never merged.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/SquizAI/DW-final-sub000/internal/artifact"
	"github.com/SquizAI/DW-final-sub000/internal/processor"
	"github.com/SquizAI/DW-final-sub000/internal/registry"
	"github.com/SquizAI/DW-final-sub000/internal/workflow"
)

// Module registers the export processor.
type Module struct{}

// Register implements registry.Module.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterProcessor(workflow.KindExport, New)
}

// Config is the typed configuration of an export node.
type Config struct {
	// Inputs names the handles this node requires; defaults to ["default"].
	Inputs []string `json:"inputs,omitempty"`
	// Format selects the on-disk format when Path is set: "csv" or "json".
	Format string `json:"format,omitempty"`
	// Path is the destination file. Empty means artifact passthrough only.
	// With multiple inputs the handle name is appended before the extension.
	Path string `json:"path,omitempty"`
}

// Processor exports its inputs.
type Processor struct {
	processor.Base
	cfg Config
}

// New decodes and validates an export node's config.
func New(id string, config map[string]any) (processor.Processor, error) {
	var cfg Config
	if err := workflow.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Inputs) == 0 {
		cfg.Inputs = []string{workflow.DefaultHandle}
	}
	if cfg.Path != "" {
		switch cfg.Format {
		case "csv", "json":
		case "":
			return nil, fmt.Errorf("export with 'path' requires 'format'")
		default:
			return nil, fmt.Errorf("unknown export format '%s'", cfg.Format)
		}
	}
	return &Processor{
		Base: processor.Base{ID: id, NodeKind: workflow.KindExport},
		cfg:  cfg,
	}, nil
}

// RequiredInputs implements processor.Processor.
func (p *Processor) RequiredInputs() []string { return p.cfg.Inputs }

// ExpectedOutputs implements processor.Processor. Outputs mirror inputs.
func (p *Processor) ExpectedOutputs() []string { return p.cfg.Inputs }

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
	outputs := make(processor.Outputs, len(p.cfg.Inputs))
	for i, handle := range p.cfg.Inputs {
		a := inputs[handle]
		if p.cfg.Path != "" {
			if err := p.writeFile(handle, a); err != nil {
				return nil, err
			}
		}
		outputs[handle] = a
		progress((i + 1) * 100 / len(p.cfg.Inputs))
	}
	return outputs, nil
}

// writeFile persists one artifact to the configured path.
func (p *Processor) writeFile(handle string, a artifact.Artifact) error {
	path := p.cfg.Path
	if len(p.cfg.Inputs) > 1 {
		path = pathWithHandle(path, handle)
	}
	switch p.cfg.Format {
	case "csv":
		if !a.IsTable() {
			return &processor.DataValidationError{
				Problems: []string{fmt.Sprintf("input '%s' is not tabular data and cannot be exported as csv", handle)},
			}
		}
		return writeCSV(path, a.Table)
	case "json":
		raw, err := json.MarshalIndent(exportableValue(a), "", "  ")
		if err != nil {
			return fmt.Errorf("encoding export for '%s': %w", handle, err)
		}
		return os.WriteFile(path, raw, 0o644)
	}
	return nil
}

// exportableValue unwraps the artifact envelope for file output.
func exportableValue(a artifact.Artifact) any {
	if a.IsTable() {
		return a.Table.Rows
	}
	return a.Value
}

func writeCSV(path string, table *artifact.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(table.Columns); err != nil {
		return err
	}
	for _, row := range table.Rows {
		record := make([]string, len(table.Columns))
		for i, col := range table.Columns {
			if v, ok := row[col]; ok {
				record[i] = fmt.Sprint(v)
			}
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// pathWithHandle turns "out.csv" + "left" into "out.left.csv".
func pathWithHandle(path, handle string) string {
	if i := strings.LastIndex(path, "."); i > 0 {
		return path[:i] + "." + handle + path[i:]
	}
	return path + "." + handle
}
