package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/openconext/teams/internal/federated"
	teamdomain "github.com/openconext/teams/internal/team/domain"
)

type Service interface {
	// Create files a join request for the caller on a viewable team and
	// notifies the team managers. Notification failure is never fatal.
	Create(ctx context.Context, user federated.User, req CreateRequest) (*JoinRequest, error)
	// Approve turns a join request into a MEMBER membership and removes
	// the request. Requires MANAGER or above in the team.
	Approve(ctx context.Context, user federated.User, id snowflake.ID) (*teamdomain.Membership, error)
	// Reject removes a join request. Requires MANAGER or above.
	Reject(ctx context.Context, user federated.User, id snowflake.ID) error

	ListForTeam(ctx context.Context, user federated.User, teamID snowflake.ID) ([]JoinRequest, error)
	ListForPerson(ctx context.Context, personID snowflake.ID) ([]JoinRequest, error)
}

type CreateRequest struct {
	TeamID  snowflake.ID
	Message string
}
