package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_JSON(t *testing.T) {
	path := writeFile(t, "pipeline.json", `{
		"workflow_id": "wf-json",
		"nodes": [{"id": "src", "type": "source", "data": {"rows": [{"a": 1}]}}],
		"edges": []
	}`)

	req, err := LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "wf-json", req.WorkflowID)
	require.Len(t, req.Nodes, 1)
	assert.Equal(t, "source", req.Nodes[0].Type)
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeFile(t, "pipeline.yaml", `
workflow_id: wf-yaml
execution_mode: parallel
nodes:
  - id: src
    type: source
    data:
      rows:
        - a: 1
  - id: inc
    type: transform
    data:
      operation: add
      column: a
      value: 1
edges:
  - source: src
    target: inc
`)

	req, err := LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "wf-yaml", req.WorkflowID)
	assert.Equal(t, "parallel", req.ExecutionMode)
	require.Len(t, req.Nodes, 2)
	require.Len(t, req.Edges, 1)

	_, _, err = req.Materialize()
	require.NoError(t, err)
}

func TestLoadFile_HCL(t *testing.T) {
	path := writeFile(t, "pipeline.hcl", `
node "src" {
  type = "source"
  config {
    rows = [{ a = 1 }]
  }
}
`)

	req, err := LoadFile(context.Background(), path)
	require.NoError(t, err)
	// The id falls back to the file name.
	assert.Equal(t, "pipeline", req.WorkflowID)
	require.Len(t, req.Nodes, 1)
}

func TestLoadFile_Errors(t *testing.T) {
	t.Run("unsupported extension", func(t *testing.T) {
		path := writeFile(t, "pipeline.toml", "")
		_, err := LoadFile(context.Background(), path)
		assert.ErrorContains(t, err, "unsupported workflow file extension")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeFile(t, "bad.yaml", "nodes: [::")
		_, err := LoadFile(context.Background(), path)
		assert.Error(t, err)
	})
}
