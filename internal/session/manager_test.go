package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SquizAI/DW-final-sub000/internal/executor"
	"github.com/SquizAI/DW-final-sub000/internal/registry"
	"github.com/SquizAI/DW-final-sub000/internal/workflow"
	"github.com/SquizAI/DW-final-sub000/modules/source"
	"github.com/SquizAI/DW-final-sub000/modules/transform"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	r := registry.New()
	(&source.Module{}).Register(r)
	(&transform.Module{}).Register(r)
	m, err := NewManager(r, nil, Options{BaseDir: t.TempDir(), MaxParallelNodes: 4})
	require.NoError(t, err)
	return m
}

func pipelineRequest() *workflow.Request {
	return &workflow.Request{
		WorkflowID: "wf-1",
		Nodes: []workflow.RequestNode{
			{ID: "src", Type: "source", Data: map[string]any{
				"rows": []any{
					map[string]any{"a": float64(1)},
					map[string]any{"a": float64(2)},
				},
			}},
			{ID: "inc", Type: "transform", Data: map[string]any{
				"operation": "add", "column": "a", "value": float64(1),
			}},
		},
		Edges: []workflow.RequestEdge{
			{ID: "e1", Source: "src", Target: "inc"},
		},
	}
}

func TestManager_RunPipeline(t *testing.T) {
	m := newTestManager(t)

	exec, err := m.Run(context.Background(), pipelineRequest())
	require.NoError(t, err)
	require.Equal(t, executor.StatusCompleted, exec.Status())

	results, err := exec.Results(context.Background())
	require.NoError(t, err)
	table := results["inc"][workflow.DefaultHandle].Table
	require.NotNil(t, table)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, float64(2), table.Rows[0]["a"])
	assert.Equal(t, float64(3), table.Rows[1]["a"])

	got, err := m.Get(exec.ID())
	require.NoError(t, err)
	assert.Same(t, exec, got)
}

func TestManager_StartIsAsync(t *testing.T) {
	m := newTestManager(t)

	exec, err := m.Start(context.Background(), pipelineRequest())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return exec.Status() == executor.StatusCompleted
	}, 5*time.Second, 10*time.Millisecond)
}

func TestManager_GetUnknown(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_RejectsCycle(t *testing.T) {
	m := newTestManager(t)
	req := pipelineRequest()
	req.Edges = append(req.Edges, workflow.RequestEdge{ID: "back", Source: "inc", Target: "src"})

	_, err := m.Run(context.Background(), req)
	require.Error(t, err)
	var wErr *executor.WorkflowExecutionError
	require.ErrorAs(t, err, &wErr)
	assert.Equal(t, "wf-1", wErr.WorkflowID)
	assert.Contains(t, err.Error(), "cycle")
}

func TestManager_Delete(t *testing.T) {
	m := newTestManager(t)
	exec, err := m.Run(context.Background(), pipelineRequest())
	require.NoError(t, err)

	require.NoError(t, m.Delete(context.Background(), exec.ID()))
	_, err = m.Get(exec.ID())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.Delete(context.Background(), exec.ID()), ErrNotFound)
}
