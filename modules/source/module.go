// Package source implements the data-source node kind: it materializes a
// table from inline rows or from a CSV/JSON file on disk.
package source

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/SquizAI/DW-final-sub000/internal/artifact"
	"github.com/SquizAI/DW-final-sub000/internal/processor"
	"github.com/SquizAI/DW-final-sub000/internal/registry"
	"github.com/SquizAI/DW-final-sub000/internal/workflow"
)

// Module registers the source processor.
type Module struct{}

// Register implements registry.Module.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterProcessor(workflow.KindSource, New)
}

// Config is the typed configuration of a source node.
type Config struct {
	// Format selects the data origin: "inline", "csv" or "json". When empty
	// it is inferred from Rows or the Path extension.
	Format string `json:"format,omitempty"`
	// Path is the file to read for csv/json formats.
	Path string `json:"path,omitempty"`
	// Rows holds inline data for the inline format.
	Rows []artifact.Row `json:"rows,omitempty"`
	// Columns optionally fixes the column order; inferred when empty.
	Columns []string `json:"columns,omitempty"`
}

// Processor loads a table according to its Config.
type Processor struct {
	processor.Base
	cfg Config
}

// New decodes and validates a source node's config.
func New(id string, config map[string]any) (processor.Processor, error) {
	var cfg Config
	if err := workflow.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	if cfg.Format == "" {
		switch {
		case cfg.Rows != nil:
			cfg.Format = "inline"
		case strings.HasSuffix(cfg.Path, ".csv"):
			cfg.Format = "csv"
		case strings.HasSuffix(cfg.Path, ".json"):
			cfg.Format = "json"
		default:
			return nil, fmt.Errorf("source format could not be inferred; set 'format', 'rows' or a recognized 'path'")
		}
	}
	switch cfg.Format {
	case "inline":
		if cfg.Rows == nil {
			return nil, fmt.Errorf("inline source requires 'rows'")
		}
	case "csv", "json":
		if cfg.Path == "" {
			return nil, fmt.Errorf("%s source requires 'path'", cfg.Format)
		}
	default:
		return nil, fmt.Errorf("unknown source format '%s'", cfg.Format)
	}
	return &Processor{
		Base: processor.Base{ID: id, NodeKind: workflow.KindSource},
		cfg:  cfg,
	}, nil
}

// RequiredInputs implements processor.Processor. Sources consume nothing.
func (p *Processor) RequiredInputs() []string { return nil }

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
	var (
		table *artifact.Table
		err   error
	)
	switch p.cfg.Format {
	case "inline":
		table = p.inlineTable()
	case "csv":
		table, err = readCSV(p.cfg.Path)
	case "json":
		table, err = readJSON(p.cfg.Path)
	}
	if err != nil {
		return nil, err
	}
	progress(100)
	return processor.Outputs{workflow.DefaultHandle: artifact.FromTable(table)}, nil
}

func (p *Processor) inlineTable() *artifact.Table {
	columns := p.cfg.Columns
	if len(columns) == 0 && len(p.cfg.Rows) > 0 {
		for name := range p.cfg.Rows[0] {
			columns = append(columns, name)
		}
		sort.Strings(columns)
	}
	return &artifact.Table{Columns: columns, Rows: p.cfg.Rows}
}

// readCSV loads a CSV file with a header row. Numeric-looking cells are
// parsed as numbers, everything else stays a string.
func readCSV(path string) (*artifact.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening csv source: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv source: %w", err)
	}
	if len(records) == 0 {
		return &artifact.Table{}, nil
	}

	columns := records[0]
	rows := make([]artifact.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(artifact.Row, len(columns))
		for i, col := range columns {
			if i >= len(record) {
				continue
			}
			if n, err := strconv.ParseFloat(record[i], 64); err == nil {
				row[col] = n
			} else {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return &artifact.Table{Columns: columns, Rows: rows}, nil
}

// readJSON loads a JSON file containing an array of flat objects.
func readJSON(path string) (*artifact.Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening json source: %w", err)
	}
	var rows []artifact.Row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("reading json source: %w", err)
	}

	seen := make(map[string]struct{})
	var columns []string
	for _, row := range rows {
		for name := range row {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				columns = append(columns, name)
			}
		}
	}
	sort.Strings(columns)
	return &artifact.Table{Columns: columns, Rows: rows}, nil
}
