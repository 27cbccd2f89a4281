// Package transform implements the transformation node kind: simple
// column-level operations on a single input table.
package transform

import (
	"context"
	"fmt"

	"github.com/SquizAI/DW-final-sub000/internal/artifact"
	"github.com/SquizAI/DW-final-sub000/internal/processor"
	"github.com/SquizAI/DW-final-sub000/internal/registry"
	"github.com/SquizAI/DW-final-sub000/internal/workflow"
)

// Module registers the transform processor.
type Module struct{}

// Register implements registry.Module.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterProcessor(workflow.KindTransform, New)
}

// Config is the typed configuration of a transform node.
type Config struct {
	// Operation is one of "add", "multiply", "rename", "filter", "select".
	Operation string `json:"operation"`
	// Column is the column operated on (add, multiply, rename, filter).
	Column string `json:"column,omitempty"`
	// Value is the operand for add/multiply and the comparison value for filter.
	Value any `json:"value,omitempty"`
	// To is the new column name for rename.
	To string `json:"to,omitempty"`
	// Comparator is the filter comparison: "eq", "ne", "gt" or "lt".
	Comparator string `json:"comparator,omitempty"`
	// Columns lists the columns kept by select.
	Columns []string `json:"columns,omitempty"`
}

// Processor applies one operation to its input table.
type Processor struct {
	processor.Base
	cfg Config
}

// New decodes and validates a transform node's config.
func New(id string, config map[string]any) (processor.Processor, error) {
	var cfg Config
	if err := workflow.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	switch cfg.Operation {
	case "add", "multiply":
		if cfg.Column == "" {
			return nil, fmt.Errorf("operation '%s' requires 'column'", cfg.Operation)
		}
		if _, ok := artifact.AsNumber(cfg.Value); !ok {
			return nil, fmt.Errorf("operation '%s' requires a numeric 'value'", cfg.Operation)
		}
	case "rename":
		if cfg.Column == "" || cfg.To == "" {
			return nil, fmt.Errorf("operation 'rename' requires 'column' and 'to'")
		}
	case "filter":
		if cfg.Column == "" {
			return nil, fmt.Errorf("operation 'filter' requires 'column'")
		}
		switch cfg.Comparator {
		case "eq", "ne", "gt", "lt":
		case "":
			cfg.Comparator = "eq"
		default:
			return nil, fmt.Errorf("unknown filter comparator '%s'", cfg.Comparator)
		}
	case "select":
		if len(cfg.Columns) == 0 {
			return nil, fmt.Errorf("operation 'select' requires 'columns'")
		}
	case "":
		return nil, fmt.Errorf("transform requires 'operation'")
	default:
		return nil, fmt.Errorf("unknown transform operation '%s'", cfg.Operation)
	}
	return &Processor{
		Base: processor.Base{ID: id, NodeKind: workflow.KindTransform},
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

	var out *artifact.Table
	switch p.cfg.Operation {
	case "add", "multiply":
		out, err = p.applyArithmetic(table, progress)
	case "rename":
		out = p.applyRename(table)
	case "filter":
		out, err = p.applyFilter(table)
	case "select":
		out = p.applySelect(table)
	}
	if err != nil {
		return nil, err
	}
	progress(100)
	return processor.Outputs{workflow.DefaultHandle: artifact.FromTable(out)}, nil
}

func (p *Processor) applyArithmetic(table *artifact.Table, progress processor.Progress) (*artifact.Table, error) {
	if !table.HasColumn(p.cfg.Column) {
		return nil, &processor.DataValidationError{
			Problems: []string{fmt.Sprintf("column '%s' not present in input table", p.cfg.Column)},
		}
	}
	operand, _ := artifact.AsNumber(p.cfg.Value)

	rows := make([]artifact.Row, 0, len(table.Rows))
	for i, row := range table.Rows {
		next := make(artifact.Row, len(row))
		for k, v := range row {
			next[k] = v
		}
		if n, ok := artifact.AsNumber(row[p.cfg.Column]); ok {
			switch p.cfg.Operation {
			case "add":
				next[p.cfg.Column] = n + operand
			case "multiply":
				next[p.cfg.Column] = n * operand
			}
		}
		rows = append(rows, next)
		if len(table.Rows) > 0 && i%1000 == 0 {
			progress(i * 100 / len(table.Rows))
		}
	}
	return &artifact.Table{Columns: table.Columns, Rows: rows}, nil
}

func (p *Processor) applyRename(table *artifact.Table) *artifact.Table {
	columns := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		if c == p.cfg.Column {
			columns[i] = p.cfg.To
		} else {
			columns[i] = c
		}
	}
	rows := make([]artifact.Row, 0, len(table.Rows))
	for _, row := range table.Rows {
		next := make(artifact.Row, len(row))
		for k, v := range row {
			if k == p.cfg.Column {
				next[p.cfg.To] = v
			} else {
				next[k] = v
			}
		}
		rows = append(rows, next)
	}
	return &artifact.Table{Columns: columns, Rows: rows}
}

func (p *Processor) applyFilter(table *artifact.Table) (*artifact.Table, error) {
	var rows []artifact.Row
	for _, row := range table.Rows {
		keep, err := compare(row[p.cfg.Column], p.cfg.Comparator, p.cfg.Value)
		if err != nil {
			return nil, err
		}
		if keep {
			rows = append(rows, row)
		}
	}
	return &artifact.Table{Columns: table.Columns, Rows: rows}, nil
}

func (p *Processor) applySelect(table *artifact.Table) *artifact.Table {
	keep := make(map[string]struct{}, len(p.cfg.Columns))
	for _, c := range p.cfg.Columns {
		keep[c] = struct{}{}
	}
	var columns []string
	for _, c := range table.Columns {
		if _, ok := keep[c]; ok {
			columns = append(columns, c)
		}
	}
	rows := make([]artifact.Row, 0, len(table.Rows))
	for _, row := range table.Rows {
		next := make(artifact.Row, len(columns))
		for _, c := range columns {
			if v, ok := row[c]; ok {
				next[c] = v
			}
		}
		rows = append(rows, next)
	}
	return &artifact.Table{Columns: columns, Rows: rows}
}

// compare evaluates `cell <comparator> operand`. Numeric comparison is used
// when both sides are numbers; gt/lt on non-numbers is an error.
func compare(cell any, comparator string, operand any) (bool, error) {
	cn, cok := artifact.AsNumber(cell)
	on, ook := artifact.AsNumber(operand)
	if cok && ook {
		switch comparator {
		case "eq":
			return cn == on, nil
		case "ne":
			return cn != on, nil
		case "gt":
			return cn > on, nil
		case "lt":
			return cn < on, nil
		}
	}
	switch comparator {
	case "eq":
		return fmt.Sprint(cell) == fmt.Sprint(operand), nil
	case "ne":
		return fmt.Sprint(cell) != fmt.Sprint(operand), nil
	default:
		return false, fmt.Errorf("comparator '%s' requires numeric values", comparator)
	}
}
