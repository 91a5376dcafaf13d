package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type (
	createGroupRequest struct {
		Name    string   `json:"name" binding:"required"`
		Creator string   `json:"creator" binding:"required"`
		Avatar  string   `json:"avatar"`
		Invited []string `json:"invited"`
	}

	createDirectGroupRequest struct {
		User1 string `json:"user1" binding:"required"`
		User2 string `json:"user2" binding:"required"`
	}

	groupInvitationRequest struct {
		Inviter string   `json:"inviter" binding:"required"`
		Invited []string `json:"invited"`
	}

	sendMessageRequest struct {
		From    string `json:"from" binding:"required"`
		Content string `json:"content"`
	}
)

func (s *Server) createGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	id, err := s.engine.CreateGroup(c.Request.Context(), req.Name, req.Creator, req.Avatar, req.Invited)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, IDResponse{ID: id})
}

func (s *Server) createDirectGroup(c *gin.Context) {
	var req createDirectGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	id, err := s.engine.CreateDirectGroup(c.Request.Context(), req.User1, req.User2)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, IDResponse{ID: id})
}

func (s *Server) getGroup(c *gin.Context) {
	g, err := s.engine.GetGroup(c.Request.Context(), c.Param("groupID"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (s *Server) groupInvitation(c *gin.Context) {
	var req groupInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	results, err := s.engine.GroupInvitation(c.Request.Context(), req.Inviter, c.Param("groupID"), req.Invited)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ResultsResponse{Results: nonNil(results)})
}

func (s *Server) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	groupID := c.Param("groupID")
	if isAsync(c) {
		if s.worker == nil {
			s.fail(c, ErrAsyncUnavailable)
			return
		}
		if err := s.worker.EnqueueSendMessage(c.Request.Context(), req.From, groupID, req.Content); err != nil {
			s.fail(c, err)
			return
		}
		s.accepted(c)
		return
	}

	id, err := s.engine.SendMessage(c.Request.Context(), req.From, groupID, req.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, IDResponse{ID: id})
}
