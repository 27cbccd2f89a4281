package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const eventWriteTimeout = 10 * time.Second

// handleEvents streams progress events for one execution over a
// WebSocket. The current snapshot is sent first so late subscribers see
// the full picture, then events follow until the run reaches a terminal
// state or the client disconnects.
func (s *Server) handleEvents(c *gin.Context) {
	exec, ok := s.lookup(c)
	if !ok {
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed.", "error", err)
		return
	}
	defer ws.Close()

	events, cancel := exec.Subscribe()
	defer cancel()

	if err := writeJSON(ws, exec.Snapshot()); err != nil {
		return
	}
	// Terminal already? The snapshot said everything there is to say.
	if exec.Status().Terminal() {
		return
	}

	// Detect client disconnects; we never expect payloads.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, open := <-events:
			if !open {
				return
			}
			if err := writeJSON(ws, ev); err != nil {
				return
			}
			if ev.NodeID == "" && exec.Status().Terminal() {
				return
			}
		case <-done:
			return
		}
	}
}

func writeJSON(ws *websocket.Conn, v any) error {
	_ = ws.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
	return ws.WriteJSON(v)
}
