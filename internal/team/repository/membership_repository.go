package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/openconext/teams/internal/team/domain"
	"gorm.io/gorm"
)

type membershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) domain.MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) WithTx(tx *gorm.DB) domain.MembershipRepository {
	return &membershipRepository{db: tx}
}

func (r *membershipRepository) Find(ctx context.Context, teamID snowflake.ID, personURN string) (*domain.Membership, error) {
	var membership domain.Membership
	err := r.db.WithContext(ctx).
		Preload("Person").
		First(&membership, "team_id = ? AND person_urn = ?", teamID, personURN).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *membershipRepository) Create(ctx context.Context, membership *domain.Membership) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO memberships (id, team_id, person_id, person_urn, role, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		membership.ID,
		membership.TeamID,
		membership.PersonID,
		membership.PersonURN,
		membership.Role,
		membership.CreatedAt,
	).Error
}

func (r *membershipRepository) UpdateRole(ctx context.Context, membershipID snowflake.ID, role domain.Role) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE memberships SET role = ? WHERE id = ?`,
		role,
		membershipID,
	).Error
}

func (r *membershipRepository) Delete(ctx context.Context, membershipID snowflake.ID) error {
	return r.db.WithContext(ctx).Exec(
		`DELETE FROM memberships WHERE id = ?`,
		membershipID,
	).Error
}
