package server

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/openconext/teams/internal/authorization"
	"github.com/openconext/teams/internal/federated"
	teamdomain "github.com/openconext/teams/internal/team/domain"
)

// Minimum search query lengths, matching the federation registry's limits.
const (
	minTeamQueryLength   = 3
	minPersonQueryLength = 2
)

type createTeamRequest struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	PersonalNote      string `json:"personal_note"`
	Viewable          bool   `json:"viewable"`
	HideMembers       bool   `json:"hide_members"`
	AdminEmail        string `json:"admin_email"`
	InvitationMessage string `json:"invitation_message"`
	Language          string `json:"language"`
}

type updateTeamRequest struct {
	Description     string `json:"description"`
	PersonalNote    string `json:"personal_note"`
	Viewable        bool   `json:"viewable"`
	HideMembers     bool   `json:"hide_members"`
	ResetPublicLink bool   `json:"reset_public_link"`
}

func (s *Server) CreateTeam(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	if err := s.authzSvc.Authorize(c.Request.Context(), user, authorization.ObjectTeam, authorization.ActionTeamCreate); err != nil {
		AbortWithError(c, err)
		return
	}

	var req createTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	view, err := s.teamSvc.Create(c.Request.Context(), user, teamdomain.CreateTeamRequest{
		Name:              req.Name,
		Description:       req.Description,
		PersonalNote:      req.PersonalNote,
		Viewable:          req.Viewable,
		HideMembers:       req.HideMembers,
		AdminEmail:        req.AdminEmail,
		InvitationMessage: req.InvitationMessage,
		Language:          req.Language,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (s *Server) UpdateTeam(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	view, err := s.teamSvc.Update(c.Request.Context(), user, teamdomain.UpdateTeamRequest{
		ID:              id,
		Description:     req.Description,
		PersonalNote:    req.PersonalNote,
		Viewable:        req.Viewable,
		HideMembers:     req.HideMembers,
		ResetPublicLink: req.ResetPublicLink,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (s *Server) DeleteTeam(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.teamSvc.Delete(c.Request.Context(), user, id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) GetTeam(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	view, err := s.teamSvc.View(c.Request.Context(), user, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (s *Server) TeamExists(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		AbortWithError(c, newValidationError("name", "required", "name is required"))
		return
	}

	exists, err := s.teamSvc.ExistsByName(c.Request.Context(), name)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

func (s *Server) TeamAutocomplete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	if err := s.authzSvc.Authorize(c.Request.Context(), user, authorization.ObjectTeam, authorization.ActionTeamSearch); err != nil {
		AbortWithError(c, err)
		return
	}
	query := strings.TrimSpace(c.Query("query"))
	if utf8.RuneCountInString(query) < minTeamQueryLength {
		AbortWithError(c, newValidationError("query", "query_too_short", "query must be at least 3 characters"))
		return
	}
	if !s.allowSearch(c, user) {
		return
	}

	items, err := s.teamSvc.Autocomplete(c.Request.Context(), user, query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) ExternalTeams(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	// Reuses the view gate so hidden teams stay hidden.
	view, err := s.teamSvc.View(c.Request.Context(), user, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var urn string
	if view.Detail != nil {
		urn = view.Detail.URN
	} else if view.Summary != nil {
		urn = view.Summary.URN
	}

	items, err := s.teamRepo.ExternalTeamsByTeamURN(c.Request.Context(), urn)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) TeamByPublicLink(c *gin.Context) {
	summary, err := s.teamSvc.ViewByPublicLink(c.Request.Context(), c.Param("token"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func pathID(c *gin.Context, name string) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(c.Param(name))
	if err != nil || id == 0 {
		AbortWithError(c, newValidationError(name, "invalid_id", "invalid identifier"))
		return 0, false
	}
	return id, true
}

func (s *Server) allowSearch(c *gin.Context, user federated.User) bool {
	result, err := s.searchLimiter.Allow(c.Request.Context(), user.URN())
	if err != nil {
		AbortWithError(c, err)
		return false
	}
	if !result.Allowed {
		if result.RetryAfter > 0 {
			c.Header("Retry-After", result.RetryAfter.Truncate(time.Second).String())
		}
		AbortWithError(c, ErrTooManyReqs)
		return false
	}
	return true
}
