package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openconext/teams/internal/invitation/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.Invitation, error) {
	var invitation domain.Invitation
	err := r.db.WithContext(ctx).
		Preload("Team").
		Preload("Team.Memberships").
		Preload("Messages").
		First(&invitation, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *repository) FindByHash(ctx context.Context, hash string) (*domain.Invitation, error) {
	var invitation domain.Invitation
	err := r.db.WithContext(ctx).
		Preload("Team").
		Preload("Team.Memberships").
		Preload("Messages").
		First(&invitation, "invitation_hash = ?", hash).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) ([]domain.Invitation, error) {
	var invitations []domain.Invitation
	err := r.db.WithContext(ctx).
		Preload("Team").
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, err
	}
	return invitations, nil
}

func (r *repository) FindByTeamID(ctx context.Context, teamID snowflake.ID) ([]domain.Invitation, error) {
	var invitations []domain.Invitation
	err := r.db.WithContext(ctx).
		Preload("Messages").
		Where("team_id = ?", teamID).
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, err
	}
	return invitations, nil
}

func (r *repository) FindBySender(ctx context.Context, personID snowflake.ID) ([]domain.Invitation, error) {
	var invitations []domain.Invitation
	err := r.db.WithContext(ctx).
		Preload("Team").
		Where("id IN (?)", r.db.
			Table("invitation_messages").
			Select("invitation_id").
			Where("person_id = ?", personID),
		).
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, err
	}
	return invitations, nil
}

func (r *repository) Create(ctx context.Context, invitation *domain.Invitation) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO invitations (id, invitation_hash, team_id, email, intended_role, language, status, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, invitation.ID, invitation.InvitationHash, invitation.TeamID, invitation.Email,
		invitation.IntendedRole, invitation.Language, invitation.Status,
		invitation.ExpiresAt, invitation.CreatedAt).Error
}

func (r *repository) UpdateStatus(ctx context.Context, id snowflake.ID, status domain.Status) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE invitations SET status = ? WHERE id = ?
	`, status, id).Error
}

func (r *repository) ResetExpiry(ctx context.Context, id snowflake.ID, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE invitations SET expires_at = ?, status = ? WHERE id = ?
	`, expiresAt, domain.StatusPending, id).Error
}

func (r *repository) Delete(ctx context.Context, id snowflake.ID) error {
	// messages first, then the invitation
	if err := r.db.WithContext(ctx).Exec(`
		DELETE FROM invitation_messages WHERE invitation_id = ?
	`, id).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Exec(`
		DELETE FROM invitations WHERE id = ?
	`, id).Error
}

func (r *repository) AddMessage(ctx context.Context, message *domain.InvitationMessage) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO invitation_messages (id, invitation_id, person_id, person_urn, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, message.ID, message.InvitationID, message.PersonID, message.PersonURN,
		message.Text, message.CreatedAt).Error
}
