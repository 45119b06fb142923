package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	joinrequestdomain "github.com/openconext/teams/internal/joinrequest/domain"
)

type createJoinRequest struct {
	Message string `json:"message"`
}

func (s *Server) CreateJoinRequest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	// The message is optional, so an empty body is fine.
	var req createJoinRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	request, err := s.joinRequestSvc.Create(c.Request.Context(), user, joinrequestdomain.CreateRequest{
		TeamID:  id,
		Message: req.Message,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, request)
}

func (s *Server) TeamJoinRequests(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	items, err := s.joinRequestSvc.ListForTeam(c.Request.Context(), user, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) ApproveJoinRequest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	membership, err := s.joinRequestSvc.Approve(c.Request.Context(), user, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, membership)
}

func (s *Server) RejectJoinRequest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.joinRequestSvc.Reject(c.Request.Context(), user, id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
