// Package artifact defines the payloads nodes exchange through the data
// store: tabular data plus scalar/JSON values. Artifacts are encoded to a
// self-describing JSON envelope so the store can hold them in memory or on
// disk interchangeably.
package artifact

import (
	"encoding/json"
	"fmt"
)

// Row is a single table record keyed by column name.
type Row = map[string]any

// Table is the tabular payload shape passed between nodes.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// NumRows returns the number of rows in the table.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// HasColumn reports whether the table declares the given column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Artifact is a named output payload. Exactly one of Table or Value is set.
type Artifact struct {
	Kind  string `json:"kind"`
	Table *Table `json:"table,omitempty"`
	Value any    `json:"value,omitempty"`
}

// Artifact kinds.
const (
	KindTable = "table"
	KindValue = "value"
)

// FromTable wraps a table into an artifact.
func FromTable(t *Table) Artifact {
	return Artifact{Kind: KindTable, Table: t}
}

// FromValue wraps a scalar or JSON-like value into an artifact.
func FromValue(v any) Artifact {
	return Artifact{Kind: KindValue, Value: v}
}

// IsTable reports whether the artifact carries tabular data.
func (a Artifact) IsTable() bool {
	return a.Kind == KindTable && a.Table != nil
}

// Encode serializes the artifact to its JSON envelope.
func (a Artifact) Encode() ([]byte, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encoding artifact: %w", err)
	}
	return raw, nil
}

// Decode parses an artifact from its JSON envelope.
func Decode(raw []byte) (Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return Artifact{}, fmt.Errorf("decoding artifact: %w", err)
	}
	switch a.Kind {
	case KindTable, KindValue:
		return a, nil
	default:
		return Artifact{}, fmt.Errorf("decoding artifact: unknown kind '%s'", a.Kind)
	}
}

// AsNumber coerces a cell or config value into a float64. JSON decoding
// produces float64 for all numbers, but values built in-process may still
// be Go integers.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
