package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SquizAI/DW-final-sub000/internal/artifact"
	"github.com/SquizAI/DW-final-sub000/internal/processor"
	"github.com/SquizAI/DW-final-sub000/internal/workflow"
)

func table() artifact.Artifact {
	return artifact.FromTable(&artifact.Table{
		Columns: []string{"a", "b"},
		Rows: []artifact.Row{
			{"a": float64(1), "b": "x"},
			{"a": float64(2), "b": "y"},
		},
	})
}

func TestPassthrough(t *testing.T) {
	p, err := New("ex1", map[string]any{})
	require.NoError(t, err)

	inputs := processor.Inputs{workflow.DefaultHandle: table()}
	outputs, err := p.Execute(context.Background(), inputs, func(int) {})
	require.NoError(t, err)
	require.NoError(t, p.ValidateOutputs(outputs))
	assert.Equal(t, inputs[workflow.DefaultHandle], outputs[workflow.DefaultHandle])
}

func TestMultipleInputsStayKeyed(t *testing.T) {
	p, err := New("ex1", map[string]any{"inputs": []any{"left", "right"}})
	require.NoError(t, err)

	inputs := processor.Inputs{
		"left":  artifact.FromValue("L"),
		"right": artifact.FromValue("R"),
	}
	require.NoError(t, p.ValidateInputs(inputs))
	outputs, err := p.Execute(context.Background(), inputs, func(int) {})
	require.NoError(t, err)

	// Branches are never merged.
	assert.Equal(t, "L", outputs["left"].Value)
	assert.Equal(t, "R", outputs["right"].Value)
}

func TestCSVExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	p, err := New("ex1", map[string]any{"format": "csv", "path": path})
	require.NoError(t, err)

	_, err = p.Execute(context.Background(), processor.Inputs{workflow.DefaultHandle: table()}, func(int) {})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,x\n2,y\n", string(raw))
}

func TestCSVExportRejectsNonTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	p, err := New("ex1", map[string]any{"format": "csv", "path": path})
	require.NoError(t, err)

	_, err = p.Execute(context.Background(), processor.Inputs{workflow.DefaultHandle: artifact.FromValue(42)}, func(int) {})
	var valErr *processor.DataValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestJSONExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	p, err := New("ex1", map[string]any{"format": "json", "path": path})
	require.NoError(t, err)

	_, err = p.Execute(context.Background(), processor.Inputs{workflow.DefaultHandle: table()}, func(int) {})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(raw, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, float64(1), rows[0]["a"])
}

func TestMultiInputFileNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	p, err := New("ex1", map[string]any{
		"inputs": []any{"left", "right"},
		"format": "json",
		"path":   path,
	})
	require.NoError(t, err)

	inputs := processor.Inputs{
		"left":  artifact.FromValue("L"),
		"right": artifact.FromValue("R"),
	}
	_, err = p.Execute(context.Background(), inputs, func(int) {})
	require.NoError(t, err)

	// The handle is appended before the extension.
	assert.FileExists(t, filepath.Join(dir, "out.left.json"))
	assert.FileExists(t, filepath.Join(dir, "out.right.json"))
	assert.NoFileExists(t, path)
}

func TestConfigErrors(t *testing.T) {
	_, err := New("ex1", map[string]any{"path": "out.csv"})
	assert.ErrorContains(t, err, "format")
	_, err = New("ex1", map[string]any{"path": "out.xml", "format": "xml"})
	assert.Error(t, err)
}
