package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	membershipdomain "github.com/openconext/teams/internal/membership/domain"
	teamdomain "github.com/openconext/teams/internal/team/domain"
)

type changeRoleRequest struct {
	PersonURN string `json:"person_urn"`
	Role      string `json:"role"`
}

func (s *Server) ChangeRole(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.PersonURN) == "" {
		AbortWithError(c, newValidationError("person_urn", "required", "person_urn is required"))
		return
	}
	role, err := teamdomain.ParseRole(strings.ToUpper(strings.TrimSpace(req.Role)))
	if err != nil {
		AbortWithError(c, newValidationError("role", "invalid_role", err.Error()))
		return
	}

	membership, err := s.membershipSvc.ChangeRole(c.Request.Context(), user, membershipdomain.ChangeRoleRequest{
		TeamID:    id,
		PersonURN: strings.TrimSpace(req.PersonURN),
		Role:      role,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, membership)
}

func (s *Server) RemoveMember(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	personURN := strings.TrimSpace(c.Param("urn"))
	if personURN == "" {
		AbortWithError(c, newValidationError("urn", "required", "member urn is required"))
		return
	}

	if err := s.membershipSvc.Remove(c.Request.Context(), user, id, personURN); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
