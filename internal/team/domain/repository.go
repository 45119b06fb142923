package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindByID(ctx context.Context, id snowflake.ID) (*Team, error)
	FindByURN(ctx context.Context, urn string) (*Team, error)
	FindByPublicLink(ctx context.Context, token string) (*Team, error)
	FindByMemberURN(ctx context.Context, personURN string) ([]Team, error)
	Create(ctx context.Context, team *Team) error
	Update(ctx context.Context, team *Team) error
	// Delete removes the team and its owned memberships, invitations and
	// join requests in one pass. External team links must be removed first.
	Delete(ctx context.Context, team *Team) error
	Autocomplete(ctx context.Context, viewerPersonID snowflake.ID, query string, limit int) ([]TeamAutocomplete, error)

	ExternalTeamsByTeamURN(ctx context.Context, teamURN string) ([]ExternalTeam, error)
	UnlinkExternalTeam(ctx context.Context, externalTeamID, teamID snowflake.ID) error
}

// MembershipRepository covers the membership mutations used by the
// authorization flows.
type MembershipRepository interface {
	WithTx(tx *gorm.DB) MembershipRepository

	Find(ctx context.Context, teamID snowflake.ID, personURN string) (*Membership, error)
	Create(ctx context.Context, membership *Membership) error
	UpdateRole(ctx context.Context, membershipID snowflake.ID, role Role) error
	Delete(ctx context.Context, membershipID snowflake.ID) error
}
