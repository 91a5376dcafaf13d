package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/petrijr/socialflow/pkg/api"
)

type (
	createUserRequest struct {
		Name   string `json:"name"`
		Email  string `json:"email" binding:"required"`
		Avatar string `json:"avatar"`
	}

	friendInvitationRequest struct {
		To string `json:"to" binding:"required"`
	}
)

func (s *Server) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	id, err := s.engine.CreateUser(c.Request.Context(), api.NewUser{
		Name:   req.Name,
		Email:  req.Email,
		Avatar: req.Avatar,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, IDResponse{ID: id})
}

func (s *Server) getUser(c *gin.Context) {
	u, err := s.engine.GetUser(c.Request.Context(), c.Param("userID"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) pendingNotifications(c *gin.Context) {
	ids, err := s.engine.PendingNotifications(c.Request.Context(), c.Param("userID"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": ids})
}

func (s *Server) friendInvitation(c *gin.Context) {
	var req friendInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	from := c.Param("userID")
	if isAsync(c) {
		s.enqueueCreate(c, api.TaskRequest{
			From:      from,
			To:        []string{req.To},
			EventType: api.EventFriendInvitation,
		})
		return
	}

	results, err := s.engine.FriendInvitation(c.Request.Context(), from, req.To)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ResultsResponse{Results: nonNil(results)})
}
