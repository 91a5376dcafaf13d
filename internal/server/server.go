package server

import (
	"errors"
	"log/slog"
	"net/http"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"

	"github.com/petrijr/socialflow/pkg/api"
	"github.com/petrijr/socialflow/pkg/worker"
)

type (
	// Server implements the HTTP API over an Engine
	Server struct {
		engine api.Engine
		worker *worker.Worker
		logger *slog.Logger
	}

	// ErrorResponse contains error details for failed requests
	ErrorResponse struct {
		Error  string `json:"error"`
		Status int    `json:"status,omitempty"`
	}

	// IDResponse carries the id of a created record
	IDResponse struct {
		ID string `json:"id"`
	}

	// ResultsResponse carries handler results
	ResultsResponse struct {
		Results []any `json:"results"`
	}

	// ResultResponse carries a single handler result
	ResultResponse struct {
		Result any `json:"result"`
	}

	// AcceptedResponse acknowledges a queued command
	AcceptedResponse struct {
		Queued bool `json:"queued"`
	}
)

// ErrAsyncUnavailable is returned for ?async=true when no worker is wired
var ErrAsyncUnavailable = errors.New("async dispatch is not configured")

// NewServer creates a new HTTP API server. w may be nil, in which case
// every route runs synchronously.
func NewServer(eng api.Engine, w *worker.Worker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine: eng,
		worker: w,
		logger: logger,
	}
}

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return s.logger
		}),
	))

	router.GET("/health", s.handleHealth)

	users := router.Group("/users")
	{
		users.POST("", s.createUser)
		users.GET("/:userID", s.getUser)
		users.GET("/:userID/notifications", s.pendingNotifications)
		users.POST("/:userID/friends", s.friendInvitation)
	}

	groups := router.Group("/groups")
	{
		groups.POST("", s.createGroup)
		groups.POST("/direct", s.createDirectGroup)
		groups.GET("/:groupID", s.getGroup)
		groups.POST("/:groupID/invitations", s.groupInvitation)
		groups.POST("/:groupID/messages", s.sendMessage)
	}

	tasks := router.Group("/tasks")
	{
		tasks.POST("", s.createTask)
		tasks.GET("/:taskID", s.getTask)
		tasks.POST("/:taskID/finish", s.finishTask)
		tasks.POST("/:taskID/cancel", s.cancelTask)
	}

	router.GET("/history/:subject", s.taskHistory)
	router.POST("/notifications", s.notify)
	router.GET("/notifications/:notificationID", s.getNotification)
	router.GET("/messages/:messageID", s.getMessage)
	router.POST("/messages/:messageID/read", s.readMessage)

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// isAsync reports whether the caller asked for queued execution.
func isAsync(c *gin.Context) bool {
	return c.Query("async") == "true"
}

func (s *Server) accepted(c *gin.Context) {
	c.JSON(http.StatusAccepted, AcceptedResponse{Queued: true})
}

// fail writes err with the status its kind maps to.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()), slog.Any("error", err))
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Status: status})
}

func (s *Server) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Status: http.StatusBadRequest})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, api.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, api.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, api.ErrEmailAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrAsyncUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
