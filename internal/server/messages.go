package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/petrijr/socialflow/pkg/api"
)

type (
	notifyRequest struct {
		From      string `json:"from" binding:"required"`
		To        string `json:"to" binding:"required"`
		Content   string `json:"content"`
		EventType string `json:"eventType" binding:"required"`
	}

	readMessageRequest struct {
		Reader string `json:"reader" binding:"required"`
	}
)

func (s *Server) notify(c *gin.Context) {
	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	id, err := s.engine.Notify(c.Request.Context(), req.From, req.To, req.Content, api.EventType(req.EventType))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, IDResponse{ID: id})
}

func (s *Server) getNotification(c *gin.Context) {
	n, err := s.engine.GetNotification(c.Request.Context(), c.Param("notificationID"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (s *Server) getMessage(c *gin.Context) {
	m, err := s.engine.GetMessage(c.Request.Context(), c.Param("messageID"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) readMessage(c *gin.Context) {
	var req readMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	if err := s.engine.ReadMessage(c.Request.Context(), req.Reader, c.Param("messageID")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
