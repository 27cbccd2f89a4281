package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SquizAI/DW-final-sub000/internal/ctxlog"
	"github.com/SquizAI/DW-final-sub000/internal/executor"
	"github.com/SquizAI/DW-final-sub000/internal/session"
	"github.com/SquizAI/DW-final-sub000/internal/workflow"
)

// handleExecute accepts a workflow submission and starts it asynchronously.
func (s *Server) handleExecute(c *gin.Context) {
	var req workflow.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.Nodes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workflow has no nodes"})
		return
	}

	ctx := ctxlog.WithLogger(c.Request.Context(), s.logger)
	exec, err := s.sessions.Start(ctx, &req)
	if err != nil {
		var wErr *executor.WorkflowExecutionError
		if errors.As(err, &wErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": wErr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"execution_id": exec.ID(),
		"workflow_id":  exec.WorkflowID(),
		"status":       exec.Status(),
	})
}

// lookup resolves the :id path parameter, writing not_found on miss.
func (s *Server) lookup(c *gin.Context) (*executor.Execution, bool) {
	exec, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": session.ErrNotFound.Error()})
		return nil, false
	}
	return exec, true
}

func (s *Server) handleStatus(c *gin.Context) {
	exec, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, exec.Snapshot())
}

func (s *Server) handleResults(c *gin.Context) {
	exec, ok := s.lookup(c)
	if !ok {
		return
	}
	results, err := exec.Results(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"execution_id": exec.ID(),
		"status":       exec.Status(),
		"results":      results,
	})
}

func (s *Server) handlePause(c *gin.Context) {
	exec, ok := s.lookup(c)
	if !ok {
		return
	}
	if err := exec.Pause(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"execution_id": exec.ID(), "status": exec.Status()})
}

func (s *Server) handleResume(c *gin.Context) {
	exec, ok := s.lookup(c)
	if !ok {
		return
	}
	if exec.Status() != executor.StatusPaused {
		c.JSON(http.StatusConflict, gin.H{
			"error": "execution " + exec.ID() + " is " + string(exec.Status()) + ", not paused",
		})
		return
	}
	// Resume blocks until the run finishes or pauses again; detach it
	// from the request lifetime.
	runCtx := ctxlog.WithLogger(context.Background(), s.logger)
	go func() { _ = exec.Resume(runCtx) }()
	c.JSON(http.StatusOK, gin.H{"execution_id": exec.ID(), "status": executor.StatusRunning})
}

func (s *Server) handleStop(c *gin.Context) {
	exec, ok := s.lookup(c)
	if !ok {
		return
	}
	if err := exec.Stop(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"execution_id": exec.ID(), "status": exec.Status()})
}

func (s *Server) handleDelete(c *gin.Context) {
	id := c.Param("id")
	if err := s.sessions.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": session.ErrNotFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"execution_id": id, "deleted": true})
}
