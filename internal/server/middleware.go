package server

import (
	"github.com/gin-gonic/gin"
	"github.com/openconext/teams/internal/federated"
	identitydomain "github.com/openconext/teams/internal/identity/domain"
	obscontext "github.com/openconext/teams/internal/observability/context"
)

// Attribute headers asserted by the SSO gateway in front of this service.
const (
	headerNameID      = "name-id"
	headerDisplayName = "displayname"
	headerEmail       = "mail"
	headerMemberOf    = "is-member-of"
)

// FederatedAuth turns the gateway's attribute headers into a provisioned
// local person. Every authenticated request passes through here, so the
// person record is upserted on each call.
func (s *Server) FederatedAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		attrs := identitydomain.Attributes{
			NameID:   c.GetHeader(headerNameID),
			Name:     c.GetHeader(headerDisplayName),
			Email:    c.GetHeader(headerEmail),
			MemberOf: c.GetHeader(headerMemberOf),
		}

		person, err := s.identitySvc.Provision(c.Request.Context(), attrs)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		user := federated.User{Person: person}
		ctx := federated.WithUser(c.Request.Context(), user)
		ctx = obscontext.WithActorURN(ctx, user.URN())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// currentUser returns the provisioned caller. The federated middleware
// guarantees presence on every /api route.
func currentUser(c *gin.Context) (federated.User, bool) {
	return federated.FromContext(c.Request.Context())
}
