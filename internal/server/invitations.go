package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/openconext/teams/internal/authorization"
	invitationdomain "github.com/openconext/teams/internal/invitation/domain"
	teamdomain "github.com/openconext/teams/internal/team/domain"
)

type inviteRequest struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	Message  string `json:"message"`
	Language string `json:"language"`
}

type resendInvitationRequest struct {
	InvitationID string `json:"invitation_id"`
	Message      string `json:"message"`
}

func (s *Server) Invite(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	if err := s.authzSvc.Authorize(c.Request.Context(), user, authorization.ObjectInvitation, authorization.ActionInvitationSend); err != nil {
		AbortWithError(c, err)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	role := teamdomain.RoleMember
	if strings.TrimSpace(req.Role) != "" {
		parsed, err := teamdomain.ParseRole(strings.ToUpper(strings.TrimSpace(req.Role)))
		if err != nil {
			AbortWithError(c, newValidationError("role", "invalid_role", err.Error()))
			return
		}
		role = parsed
	}

	invitation, err := s.invitationSvc.Invite(c.Request.Context(), user, invitationdomain.InviteRequest{
		TeamID:   id,
		Email:    req.Email,
		Role:     role,
		Message:  req.Message,
		Language: req.Language,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, invitation)
}

func (s *Server) TeamInvitations(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	items, err := s.invitationSvc.ForTeam(c.Request.Context(), user, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) ResendInvitation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req resendInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	id, err := snowflake.ParseString(req.InvitationID)
	if err != nil || id == 0 {
		AbortWithError(c, newValidationError("invitation_id", "invalid_id", "invalid identifier"))
		return
	}

	invitation, err := s.invitationSvc.Resend(c.Request.Context(), user, invitationdomain.ResendRequest{
		InvitationID: id,
		Message:      req.Message,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, invitation)
}

func (s *Server) SentInvitations(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	items, err := s.invitationSvc.SentBy(c.Request.Context(), user.Person.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) ReceivedInvitations(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	items, err := s.invitationSvc.ReceivedBy(c.Request.Context(), user.Email())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetInvitation(c *gin.Context) {
	invitation, err := s.invitationSvc.FindByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, invitation)
}

func (s *Server) AcceptInvitation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	membership, err := s.invitationSvc.Accept(c.Request.Context(), user, c.Param("token"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, membership)
}

func (s *Server) DeclineInvitation(c *gin.Context) {
	if err := s.invitationSvc.Decline(c.Request.Context(), c.Param("token")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
