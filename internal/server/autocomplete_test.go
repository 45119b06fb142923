package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/openconext/teams/internal/federated"
	identitydomain "github.com/openconext/teams/internal/identity/domain"
	teamdomain "github.com/openconext/teams/internal/team/domain"
	"github.com/stretchr/testify/assert"
)

type allowAllAuthz struct{}

func (allowAllAuthz) Authorize(ctx context.Context, user federated.User, object, action string) error {
	return nil
}

type stubTeamService struct {
	teamdomain.Service
	calls int
}

func (s *stubTeamService) Autocomplete(ctx context.Context, user federated.User, query string) ([]teamdomain.TeamAutocomplete, error) {
	s.calls++
	return []teamdomain.TeamAutocomplete{}, nil
}

type stubIdentityService struct {
	identitydomain.Service
	calls int
}

func (s *stubIdentityService) Autocomplete(ctx context.Context, query string) ([]identitydomain.PersonAutocomplete, error) {
	s.calls++
	return []identitydomain.PersonAutocomplete{}, nil
}

func newSearchRouter(teamSvc *stubTeamService, idSvc *stubIdentityService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	s := &Server{
		teamSvc:     teamSvc,
		identitySvc: idSvc,
		authzSvc:    allowAllAuthz{},
	}

	r := gin.New()
	r.Use(ErrorHandlingMiddleware())
	r.Use(func(c *gin.Context) {
		user := federated.User{Person: &identitydomain.Person{ID: 1, URN: "urn:john"}}
		c.Request = c.Request.WithContext(federated.WithUser(c.Request.Context(), user))
	})
	r.GET("/teams", s.TeamAutocomplete)
	r.GET("/persons/autocomplete", s.PersonAutocomplete)
	return r
}

func TestTeamAutocompleteRejectsShortQueries(t *testing.T) {
	teamSvc := &stubTeamService{}
	r := newSearchRouter(teamSvc, &stubIdentityService{})

	for _, query := range []string{"", "a", "ab", "+ab+"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/teams?query="+query, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "query %q", query)
		assert.Contains(t, w.Body.String(), "query_too_short")
	}
	assert.Zero(t, teamSvc.calls)
}

func TestTeamAutocompleteAcceptsThreeCharacters(t *testing.T) {
	teamSvc := &stubTeamService{}
	r := newSearchRouter(teamSvc, &stubIdentityService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/teams?query=rid", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, teamSvc.calls)
}

func TestPersonAutocompleteRejectsShortQueries(t *testing.T) {
	idSvc := &stubIdentityService{}
	r := newSearchRouter(&stubTeamService{}, idSvc)

	for _, query := range []string{"", "a"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/persons/autocomplete?query="+query, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "query %q", query)
	}
	assert.Zero(t, idSvc.calls)
}

func TestPersonAutocompleteAcceptsTwoCharacters(t *testing.T) {
	idSvc := &stubIdentityService{}
	r := newSearchRouter(&stubTeamService{}, idSvc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/persons/autocomplete?query=jo", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, idSvc.calls)
}
