package transform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SquizAI/DW-final-sub000/internal/artifact"
	"github.com/SquizAI/DW-final-sub000/internal/processor"
	"github.com/SquizAI/DW-final-sub000/internal/workflow"
)

func inputTable() processor.Inputs {
	return processor.Inputs{
		workflow.DefaultHandle: artifact.FromTable(&artifact.Table{
			Columns: []string{"a", "name"},
			Rows: []artifact.Row{
				{"a": float64(1), "name": "one"},
				{"a": float64(2), "name": "two"},
				{"a": float64(3), "name": "three"},
			},
		}),
	}
}

func apply(t *testing.T, config map[string]any, inputs processor.Inputs) *artifact.Table {
	t.Helper()
	p, err := New("t1", config)
	require.NoError(t, err)
	require.NoError(t, p.ValidateInputs(inputs))
	outputs, err := p.Execute(context.Background(), inputs, func(int) {})
	require.NoError(t, err)
	require.NoError(t, p.ValidateOutputs(outputs))
	out := outputs[workflow.DefaultHandle]
	require.True(t, out.IsTable())
	return out.Table
}

func TestAdd(t *testing.T) {
	table := apply(t, map[string]any{"operation": "add", "column": "a", "value": float64(10)}, inputTable())
	assert.Equal(t, float64(11), table.Rows[0]["a"])
	assert.Equal(t, float64(13), table.Rows[2]["a"])
	// Other columns are untouched.
	assert.Equal(t, "one", table.Rows[0]["name"])
}

func TestMultiply(t *testing.T) {
	table := apply(t, map[string]any{"operation": "multiply", "column": "a", "value": float64(2)}, inputTable())
	assert.Equal(t, float64(2), table.Rows[0]["a"])
	assert.Equal(t, float64(6), table.Rows[2]["a"])
}

func TestArithmeticDoesNotMutateInput(t *testing.T) {
	inputs := inputTable()
	apply(t, map[string]any{"operation": "add", "column": "a", "value": float64(1)}, inputs)
	assert.Equal(t, float64(1), inputs[workflow.DefaultHandle].Table.Rows[0]["a"])
}

func TestRename(t *testing.T) {
	table := apply(t, map[string]any{"operation": "rename", "column": "a", "to": "b"}, inputTable())
	assert.Equal(t, []string{"b", "name"}, table.Columns)
	assert.Equal(t, float64(1), table.Rows[0]["b"])
	assert.NotContains(t, table.Rows[0], "a")
}

func TestFilter(t *testing.T) {
	t.Run("numeric gt", func(t *testing.T) {
		table := apply(t, map[string]any{"operation": "filter", "column": "a", "comparator": "gt", "value": float64(1)}, inputTable())
		require.Len(t, table.Rows, 2)
		assert.Equal(t, float64(2), table.Rows[0]["a"])
	})

	t.Run("string eq is the default comparator", func(t *testing.T) {
		table := apply(t, map[string]any{"operation": "filter", "column": "name", "value": "two"}, inputTable())
		require.Len(t, table.Rows, 1)
		assert.Equal(t, "two", table.Rows[0]["name"])
	})

	t.Run("gt on strings fails", func(t *testing.T) {
		p, err := New("t1", map[string]any{"operation": "filter", "column": "name", "comparator": "gt", "value": "x"})
		require.NoError(t, err)
		_, err = p.Execute(context.Background(), inputTable(), func(int) {})
		assert.Error(t, err)
	})
}

func TestSelect(t *testing.T) {
	table := apply(t, map[string]any{"operation": "select", "columns": []any{"name"}}, inputTable())
	assert.Equal(t, []string{"name"}, table.Columns)
	assert.NotContains(t, table.Rows[0], "a")
}

func TestMissingColumnIsValidationError(t *testing.T) {
	p, err := New("t1", map[string]any{"operation": "add", "column": "nope", "value": float64(1)})
	require.NoError(t, err)
	_, err = p.Execute(context.Background(), inputTable(), func(int) {})
	var valErr *processor.DataValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Error(), "nope")
}

func TestConfigErrors(t *testing.T) {
	cases := []struct {
		name   string
		config map[string]any
	}{
		{"no operation", map[string]any{}},
		{"unknown operation", map[string]any{"operation": "pivot"}},
		{"add without column", map[string]any{"operation": "add", "value": float64(1)}},
		{"add with non-numeric value", map[string]any{"operation": "add", "column": "a", "value": "x"}},
		{"rename without to", map[string]any{"operation": "rename", "column": "a"}},
		{"filter with unknown comparator", map[string]any{"operation": "filter", "column": "a", "comparator": "ge"}},
		{"select without columns", map[string]any{"operation": "select"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New("t1", tc.config)
			assert.Error(t, err)
		})
	}
}
