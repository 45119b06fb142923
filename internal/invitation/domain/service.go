package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/openconext/teams/internal/federated"
	teamdomain "github.com/openconext/teams/internal/team/domain"
)

type Service interface {
	// Invite creates a pending invitation and attempts delivery. Delivery
	// failure is logged, never fatal.
	Invite(ctx context.Context, user federated.User, req InviteRequest) (*Invitation, error)
	// Accept turns a pending invitation into a membership for the caller
	// and marks the invitation accepted.
	Accept(ctx context.Context, user federated.User, token string) (*teamdomain.Membership, error)
	// Decline marks a pending invitation declined.
	Decline(ctx context.Context, token string) error
	// Resend appends a message, resets the expiry clock and redelivers.
	Resend(ctx context.Context, user federated.User, req ResendRequest) (*Invitation, error)

	FindByToken(ctx context.Context, token string) (*Invitation, error)
	// ForTeam lists a team's invitations. Requires MANAGER or above.
	ForTeam(ctx context.Context, user federated.User, teamID snowflake.ID) ([]Invitation, error)
	SentBy(ctx context.Context, personID snowflake.ID) ([]Invitation, error)
	ReceivedBy(ctx context.Context, email string) ([]Invitation, error)
}

type InviteRequest struct {
	TeamID   snowflake.ID
	Email    string
	Role     teamdomain.Role
	Message  string
	Language string
}

type ResendRequest struct {
	InvitationID snowflake.ID
	Message      string
}
