// Package server exposes the workflow engine over HTTP: a REST API for
// submitting and controlling executions, a WebSocket stream for live
// progress, a health endpoint and Prometheus metrics.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SquizAI/DW-final-sub000/internal/session"
)

// Server wires the session manager into the HTTP surface.
type Server struct {
	sessions *session.Manager
	logger   *slog.Logger
}

// New creates a Server over the given session manager.
func New(sessions *session.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{sessions: sessions, logger: logger}
}

// Router builds the gin engine with all routes registered. The metrics
// gatherer may be nil, in which case /metrics serves the default
// registry.
func (s *Server) Router(gatherer prometheus.Gatherer) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/healthz", s.handleHealth)
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/workflows/execute", s.handleExecute)
		executions := v1.Group("/executions")
		{
			executions.GET("/:id/status", s.handleStatus)
			executions.GET("/:id/results", s.handleResults)
			executions.GET("/:id/events", s.handleEvents)
			executions.POST("/:id/pause", s.handlePause)
			executions.POST("/:id/resume", s.handleResume)
			executions.POST("/:id/stop", s.handleStop)
			executions.DELETE("/:id", s.handleDelete)
		}
	}
	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestLogger logs one line per request at debug level.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Debug("Request handled.",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	}
}
