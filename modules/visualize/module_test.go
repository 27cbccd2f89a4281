package visualize

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
			Columns: []string{"x", "y"},
			Rows: []artifact.Row{
				{"x": float64(1), "y": float64(10)},
				{"x": float64(2), "y": float64(20)},
			},
		}),
	}
}

func TestChartSpec(t *testing.T) {
	p, err := New("v1", map[string]any{"chart": "line", "x": "x", "y": "y", "title": "Trend"})
	require.NoError(t, err)

	outputs, err := p.Execute(context.Background(), inputTable(), func(int) {})
	require.NoError(t, err)

	spec, ok := outputs[workflow.DefaultHandle].Value.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "line", spec["chart"])
	assert.Equal(t, "Trend", spec["title"])

	series, ok := spec["series"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, series, 2)
	assert.Equal(t, float64(1), series[0]["x"])
	assert.Equal(t, float64(10), series[0]["y"])
}

func TestMissingAxisColumns(t *testing.T) {
	p, err := New("v1", map[string]any{"chart": "bar", "x": "x", "y": "missing"})
	require.NoError(t, err)

	_, err = p.Execute(context.Background(), inputTable(), func(int) {})
	var valErr *processor.DataValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Error(), "missing")
}

func TestConfigErrors(t *testing.T) {
	cases := []struct {
		name   string
		config map[string]any
	}{
		{"no chart", map[string]any{"x": "x", "y": "y"}},
		{"unknown chart", map[string]any{"chart": "pie", "x": "x", "y": "y"}},
		{"missing axes", map[string]any{"chart": "bar"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New("v1", tc.config)
			assert.Error(t, err)
		})
	}
}
