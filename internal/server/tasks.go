package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/petrijr/socialflow/pkg/api"
)

type (
	createTaskRequest struct {
		From      string   `json:"from" binding:"required"`
		To        []string `json:"to" binding:"required"`
		EventType string   `json:"eventType" binding:"required"`
		Creator   string   `json:"creator"`
		Content   string   `json:"content"`
	}
)

func (s *Server) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	tr := api.TaskRequest{
		From:      req.From,
		To:        req.To,
		EventType: api.EventType(req.EventType),
		Creator:   req.Creator,
		Content:   req.Content,
	}
	if isAsync(c) {
		s.enqueueCreate(c, tr)
		return
	}

	results, err := s.engine.CreateTask(c.Request.Context(), tr)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ResultsResponse{Results: nonNil(results)})
}

func (s *Server) enqueueCreate(c *gin.Context, tr api.TaskRequest) {
	if s.worker == nil {
		s.fail(c, ErrAsyncUnavailable)
		return
	}
	if err := s.worker.EnqueueCreateTask(c.Request.Context(), tr); err != nil {
		s.fail(c, err)
		return
	}
	s.accepted(c)
}

func (s *Server) getTask(c *gin.Context) {
	task, err := s.engine.GetTask(c.Request.Context(), c.Param("taskID"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) finishTask(c *gin.Context) {
	id := c.Param("taskID")
	if isAsync(c) {
		if s.worker == nil {
			s.fail(c, ErrAsyncUnavailable)
			return
		}
		if err := s.worker.EnqueueFinishTask(c.Request.Context(), id); err != nil {
			s.fail(c, err)
			return
		}
		s.accepted(c)
		return
	}

	result, err := s.engine.FinishTask(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ResultResponse{Result: result})
}

func (s *Server) cancelTask(c *gin.Context) {
	id := c.Param("taskID")
	if isAsync(c) {
		if s.worker == nil {
			s.fail(c, ErrAsyncUnavailable)
			return
		}
		if err := s.worker.EnqueueCancelTask(c.Request.Context(), id); err != nil {
			s.fail(c, err)
			return
		}
		s.accepted(c)
		return
	}

	if err := s.engine.CancelTask(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) taskHistory(c *gin.Context) {
	events, err := s.engine.TaskHistory(c.Request.Context(), c.Param("subject"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if events == nil {
		events = []api.HistoryEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// nonNil keeps JSON output an array for skipped or empty fan-outs.
func nonNil(results []any) []any {
	if results == nil {
		return []any{}
	}
	return results
}
