package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/openconext/teams/internal/joinrequest/domain"
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

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.JoinRequest, error) {
	var request domain.JoinRequest
	err := r.db.WithContext(ctx).
		Preload("Team").
		Preload("Team.Memberships").
		Preload("Person").
		First(&request, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) FindByTeamID(ctx context.Context, teamID snowflake.ID) ([]domain.JoinRequest, error) {
	var requests []domain.JoinRequest
	err := r.db.WithContext(ctx).
		Preload("Person").
		Where("team_id = ?", teamID).
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repository) FindByPersonID(ctx context.Context, personID snowflake.ID) ([]domain.JoinRequest, error) {
	var requests []domain.JoinRequest
	err := r.db.WithContext(ctx).
		Preload("Team").
		Where("person_id = ?", personID).
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repository) Find(ctx context.Context, teamID, personID snowflake.ID) (*domain.JoinRequest, error) {
	var request domain.JoinRequest
	err := r.db.WithContext(ctx).
		First(&request, "team_id = ? AND person_id = ?", teamID, personID).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) Create(ctx context.Context, request *domain.JoinRequest) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO join_requests (id, team_id, person_id, person_urn, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, request.ID, request.TeamID, request.PersonID, request.PersonURN,
		request.Message, request.CreatedAt).Error
}

func (r *repository) Delete(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).Exec(`
		DELETE FROM join_requests WHERE id = ?
	`, id).Error
}
