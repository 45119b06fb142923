package server

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/openconext/teams/internal/authorization"
	invitationdomain "github.com/openconext/teams/internal/invitation/domain"
	joinrequestdomain "github.com/openconext/teams/internal/joinrequest/domain"
	teamdomain "github.com/openconext/teams/internal/team/domain"
)

// myTeamsResponse is the landing-page aggregate: everything the caller is a
// member of plus their open requests and invitations.
type myTeamsResponse struct {
	Teams        []teamdomain.TeamSummary        `json:"teams"`
	JoinRequests []joinrequestdomain.JoinRequest `json:"join_requests"`
	Invitations  []invitationdomain.Invitation   `json:"invitations"`
}

func (s *Server) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	c.JSON(http.StatusOK, user.Person)
}

func (s *Server) MyTeams(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	ctx := c.Request.Context()

	teams, err := s.teamSvc.ListForMember(ctx, user)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	joinRequests, err := s.joinRequestSvc.ListForPerson(ctx, user.Person.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	received, err := s.invitationSvc.ReceivedBy(ctx, user.Email())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	pending := make([]invitationdomain.Invitation, 0, len(received))
	for _, invitation := range received {
		if invitation.Status == invitationdomain.StatusPending {
			pending = append(pending, invitation)
		}
	}

	c.JSON(http.StatusOK, myTeamsResponse{
		Teams:        teams,
		JoinRequests: joinRequests,
		Invitations:  pending,
	})
}

func (s *Server) PersonAutocomplete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	if err := s.authzSvc.Authorize(c.Request.Context(), user, authorization.ObjectPerson, authorization.ActionPersonSearch); err != nil {
		AbortWithError(c, err)
		return
	}
	query := strings.TrimSpace(c.Query("query"))
	if utf8.RuneCountInString(query) < minPersonQueryLength {
		AbortWithError(c, newValidationError("query", "query_too_short", "query must be at least 2 characters"))
		return
	}
	if !s.allowSearch(c, user) {
		return
	}

	items, err := s.identitySvc.Autocomplete(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}
