package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SquizAI/DW-final-sub000/internal/artifact"
	"github.com/SquizAI/DW-final-sub000/internal/processor"
	"github.com/SquizAI/DW-final-sub000/internal/workflow"
)

func mustNew(t *testing.T, config map[string]any) processor.Processor {
	t.Helper()
	p, err := New("src", config)
	require.NoError(t, err)
	return p
}

func run(t *testing.T, p processor.Processor) artifact.Artifact {
	t.Helper()
	outputs, err := p.Execute(context.Background(), nil, func(int) {})
	require.NoError(t, err)
	require.NoError(t, p.ValidateOutputs(outputs))
	return outputs[workflow.DefaultHandle]
}

func TestInlineRows(t *testing.T) {
	p := mustNew(t, map[string]any{
		"rows": []any{
			map[string]any{"b": float64(2), "a": float64(1)},
			map[string]any{"a": float64(3)},
		},
	})

	a := run(t, p)
	require.True(t, a.IsTable())
	// Columns are the sorted union over all rows.
	assert.Equal(t, []string{"a", "b"}, a.Table.Columns)
	require.Len(t, a.Table.Rows, 2)
	assert.Equal(t, float64(1), a.Table.Rows[0]["a"])
}

func TestCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,x\n2,y\n"), 0o644))

	p := mustNew(t, map[string]any{"format": "csv", "path": path})
	a := run(t, p)

	require.True(t, a.IsTable())
	assert.Equal(t, []string{"a", "b"}, a.Table.Columns)
	require.Len(t, a.Table.Rows, 2)
	// Numeric-looking cells parse as numbers, others stay strings.
	assert.Equal(t, float64(1), a.Table.Rows[0]["a"])
	assert.Equal(t, "x", a.Table.Rows[0]["b"])
}

func TestJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"a": 1}, {"a": 2, "b": "x"}]`), 0o644))

	p := mustNew(t, map[string]any{"format": "json", "path": path})
	a := run(t, p)

	require.True(t, a.IsTable())
	assert.Equal(t, []string{"a", "b"}, a.Table.Columns)
	require.Len(t, a.Table.Rows, 2)
}

func TestFormatInference(t *testing.T) {
	t.Run("rows imply inline", func(t *testing.T) {
		p := mustNew(t, map[string]any{"rows": []any{map[string]any{"a": float64(1)}}})
		assert.Equal(t, workflow.KindSource, p.Kind())
	})

	t.Run("path extension implies format", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.csv")
		require.NoError(t, os.WriteFile(path, []byte("a\n1\n"), 0o644))
		p := mustNew(t, map[string]any{"path": path})
		a := run(t, p)
		require.True(t, a.IsTable())
	})
}

func TestConfigErrors(t *testing.T) {
	cases := []struct {
		name   string
		config map[string]any
	}{
		{"empty config", map[string]any{}},
		{"unknown format", map[string]any{"format": "parquet", "path": "x.parquet"}},
		{"file format without path", map[string]any{"format": "csv"}},
		{"unknown field", map[string]any{"rows": []any{}, "delimiter": ";"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New("src", tc.config)
			assert.Error(t, err)
		})
	}
}

func TestMissingFileFailsExecute(t *testing.T) {
	p := mustNew(t, map[string]any{"format": "csv", "path": filepath.Join(t.TempDir(), "absent.csv")})
	_, err := p.Execute(context.Background(), nil, func(int) {})
	assert.Error(t, err)
}

func TestNoRequiredInputs(t *testing.T) {
	p := mustNew(t, map[string]any{"rows": []any{}})
	assert.Empty(t, p.RequiredInputs())
	assert.NoError(t, p.ValidateInputs(nil))
}
