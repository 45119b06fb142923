package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/openconext/teams/internal/federated"
	teamdomain "github.com/openconext/teams/internal/team/domain"
)

// Service mutates membership state under the authorization rules.
type Service interface {
	ChangeRole(ctx context.Context, user federated.User, req ChangeRoleRequest) (*teamdomain.Membership, error)
	Remove(ctx context.Context, user federated.User, teamID snowflake.ID, personURN string) error
}

type ChangeRoleRequest struct {
	TeamID    snowflake.ID
	PersonURN string
	Role      teamdomain.Role
}
