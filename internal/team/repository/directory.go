package repository

import (
	"context"

	identitydomain "github.com/openconext/teams/internal/identity/domain"
	"github.com/openconext/teams/internal/team/domain"
	"gorm.io/gorm"
)

type membershipDirectory struct {
	db *gorm.DB
}

// NewMembershipDirectory exposes membership lookups to the identity
// provisioner without handing it the team repositories.
func NewMembershipDirectory(db *gorm.DB) identitydomain.MembershipDirectory {
	return &membershipDirectory{db: db}
}

func (d *membershipDirectory) HoldsNonOwnerMembership(ctx context.Context, teamURN, personURN string) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Raw(
		`SELECT COUNT(*)
		 FROM memberships m
		 JOIN teams t ON t.id = m.team_id
		 WHERE t.urn = ? AND m.person_urn = ? AND m.role <> ?`,
		teamURN,
		personURN,
		domain.RoleOwner,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
