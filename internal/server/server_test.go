package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SquizAI/DW-final-sub000/internal/executor"
	"github.com/SquizAI/DW-final-sub000/internal/observability"
	"github.com/SquizAI/DW-final-sub000/internal/registry"
	"github.com/SquizAI/DW-final-sub000/internal/session"
	"github.com/SquizAI/DW-final-sub000/modules/analyze"
	"github.com/SquizAI/DW-final-sub000/modules/export"
	"github.com/SquizAI/DW-final-sub000/modules/source"
	"github.com/SquizAI/DW-final-sub000/modules/transform"
	"github.com/SquizAI/DW-final-sub000/modules/visualize"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	r := registry.New()
	for _, m := range []registry.Module{
		&source.Module{}, &transform.Module{}, &analyze.Module{},
		&visualize.Module{}, &export.Module{},
	} {
		m.Register(r)
	}
	promReg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(promReg)
	sessions, err := session.NewManager(r, metrics, session.Options{
		BaseDir:          t.TempDir(),
		MaxParallelNodes: 4,
	})
	require.NoError(t, err)
	srv := New(sessions, nil)
	return srv, srv.Router(promReg)
}

const pipelineBody = `{
	"workflow_id": "wf-http",
	"nodes": [
		{"id": "src", "type": "source", "data": {"rows": [{"a": 1}, {"a": 2}]}},
		{"id": "inc", "type": "transform", "data": {"operation": "add", "column": "a", "value": 1}}
	],
	"edges": [
		{"id": "e1", "source": "src", "target": "inc"}
	]
}`

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func getJSON(t *testing.T, handler http.Handler, path string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if out != nil && w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w
}

// startPipeline submits the standard pipeline and waits for completion.
func startPipeline(t *testing.T, handler http.Handler) string {
	t.Helper()
	w := postJSON(t, handler, "/api/v1/workflows/execute", pipelineBody)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var accepted struct {
		ExecutionID string `json:"execution_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
	require.NotEmpty(t, accepted.ExecutionID)

	require.Eventually(t, func() bool {
		var snap executor.Snapshot
		getJSON(t, handler, "/api/v1/executions/"+accepted.ExecutionID+"/status", &snap)
		return snap.Status.Terminal()
	}, 5*time.Second, 10*time.Millisecond)
	return accepted.ExecutionID
}

func TestExecuteAndStatus(t *testing.T) {
	_, handler := newTestServer(t)
	id := startPipeline(t, handler)

	var snap executor.Snapshot
	w := getJSON(t, handler, "/api/v1/executions/"+id+"/status", &snap)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, executor.StatusCompleted, snap.Status)
	assert.Equal(t, "wf-http", snap.WorkflowID)
	assert.Equal(t, float64(100), snap.Progress)
	assert.Equal(t, []string{"src", "inc"}, snap.ExecutedNodes)
}

func TestResults(t *testing.T) {
	_, handler := newTestServer(t)
	id := startPipeline(t, handler)

	var resp struct {
		Status  string `json:"status"`
		Results map[string]map[string]struct {
			Kind  string `json:"kind"`
			Table *struct {
				Rows []map[string]any `json:"rows"`
			} `json:"table"`
		} `json:"results"`
	}
	w := getJSON(t, handler, "/api/v1/executions/"+id+"/results", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, resp.Results, "inc")
	table := resp.Results["inc"]["default"].Table
	require.NotNil(t, table)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, float64(2), table.Rows[0]["a"])
}

func TestExecuteRejectsBadRequests(t *testing.T) {
	_, handler := newTestServer(t)

	t.Run("malformed json", func(t *testing.T) {
		w := postJSON(t, handler, "/api/v1/workflows/execute", "{not json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty workflow", func(t *testing.T) {
		w := postJSON(t, handler, "/api/v1/workflows/execute", `{"nodes": [], "edges": []}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("cyclic workflow", func(t *testing.T) {
		body := strings.Replace(pipelineBody, `{"id": "e1", "source": "src", "target": "inc"}`,
			`{"id": "e1", "source": "src", "target": "inc"}, {"id": "e2", "source": "inc", "target": "src"}`, 1)
		w := postJSON(t, handler, "/api/v1/workflows/execute", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "cycle")
	})
}

func TestUnknownExecution(t *testing.T) {
	_, handler := newTestServer(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/executions/nope/status"},
		{http.MethodGet, "/api/v1/executions/nope/results"},
		{http.MethodPost, "/api/v1/executions/nope/pause"},
		{http.MethodPost, "/api/v1/executions/nope/resume"},
		{http.MethodPost, "/api/v1/executions/nope/stop"},
		{http.MethodDelete, "/api/v1/executions/nope"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code, tc.path)
		assert.Contains(t, w.Body.String(), "not found", tc.path)
	}
}

func TestControlOnFinishedExecution(t *testing.T) {
	_, handler := newTestServer(t)
	id := startPipeline(t, handler)

	w := postJSON(t, handler, "/api/v1/executions/"+id+"/pause", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = postJSON(t, handler, "/api/v1/executions/"+id+"/resume", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = postJSON(t, handler, "/api/v1/executions/"+id+"/stop", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteExecution(t *testing.T) {
	_, handler := newTestServer(t)
	id := startPipeline(t, handler)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/executions/"+id, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w2 := getJSON(t, handler, "/api/v1/executions/"+id+"/status", nil)
	assert.Equal(t, http.StatusNotFound, w2.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	_, handler := newTestServer(t)
	startPipeline(t, handler)

	w := getJSON(t, handler, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = getJSON(t, handler, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dwflow_engine_runs_total")
}

func TestEventsWebSocket(t *testing.T) {
	_, handler := newTestServer(t)
	id := startPipeline(t, handler)

	ts := httptest.NewServer(handler)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/executions/" + id + "/events"
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	defer ws.Close()

	// First frame is always the full snapshot.
	var snap executor.Snapshot
	require.NoError(t, ws.ReadJSON(&snap))
	assert.Equal(t, id, snap.ExecutionID)
	assert.Equal(t, executor.StatusCompleted, snap.Status)
}
