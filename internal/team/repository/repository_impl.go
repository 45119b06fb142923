package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/openconext/teams/internal/team/domain"
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

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.Team, error) {
	var team domain.Team
	err := r.db.WithContext(ctx).
		Preload("Memberships").
		Preload("Memberships.Person").
		First(&team, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *repository) FindByURN(ctx context.Context, urn string) (*domain.Team, error) {
	var team domain.Team
	err := r.db.WithContext(ctx).
		Preload("Memberships").
		First(&team, "urn = ?", urn).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *repository) FindByPublicLink(ctx context.Context, token string) (*domain.Team, error) {
	var team domain.Team
	err := r.db.WithContext(ctx).
		Preload("Memberships").
		First(&team, "public_link = ? AND public_link_disabled = ?", token, false).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *repository) FindByMemberURN(ctx context.Context, personURN string) ([]domain.Team, error) {
	var teams []domain.Team
	err := r.db.WithContext(ctx).
		Preload("Memberships").
		Where("id IN (?)", r.db.Table("memberships").Select("team_id").Where("person_urn = ?", personURN)).
		Order("name ASC").
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *repository) Create(ctx context.Context, team *domain.Team) error {
	return r.db.WithContext(ctx).Omit("Memberships").Create(team).Error
}

func (r *repository) Update(ctx context.Context, team *domain.Team) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE teams
		 SET description = ?, personal_note = ?, viewable = ?, hide_members = ?,
		     public_link = ?, public_link_disabled = ?
		 WHERE id = ?`,
		team.Description,
		team.PersonalNote,
		team.Viewable,
		team.HideMembers,
		team.PublicLink,
		team.PublicLinkDisabled,
		team.ID,
	).Error
}

func (r *repository) Delete(ctx context.Context, team *domain.Team) error {
	// Owned rows go with the team; external team links are expected to be
	// removed by the caller beforehand.
	steps := []string{
		`DELETE FROM invitation_messages WHERE invitation_id IN (SELECT id FROM invitations WHERE team_id = ?)`,
		`DELETE FROM invitations WHERE team_id = ?`,
		`DELETE FROM join_requests WHERE team_id = ?`,
		`DELETE FROM memberships WHERE team_id = ?`,
		`DELETE FROM teams WHERE id = ?`,
	}
	for _, step := range steps {
		if err := r.db.WithContext(ctx).Exec(step, team.ID).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) Autocomplete(ctx context.Context, viewerPersonID snowflake.ID, query string, limit int) ([]domain.TeamAutocomplete, error) {
	var results []domain.TeamAutocomplete
	like := "%" + query + "%"
	err := r.db.WithContext(ctx).Raw(
		`SELECT t.id, t.urn, t.name, t.description
		 FROM teams t
		 WHERE UPPER(t.name) LIKE UPPER(?)
		   AND (t.viewable = ? OR t.id IN (SELECT m.team_id FROM memberships m WHERE m.person_id = ?))
		 ORDER BY t.name ASC
		 LIMIT ?`,
		like,
		true,
		viewerPersonID,
		limit,
	).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *repository) ExternalTeamsByTeamURN(ctx context.Context, teamURN string) ([]domain.ExternalTeam, error) {
	var externalTeams []domain.ExternalTeam
	err := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.Table("team_external_teams").
			Select("external_team_id").
			Where("team_id IN (?)", r.db.Table("teams").Select("id").Where("urn = ?", teamURN))).
		Find(&externalTeams).Error
	if err != nil {
		return nil, err
	}
	return externalTeams, nil
}

func (r *repository) UnlinkExternalTeam(ctx context.Context, externalTeamID, teamID snowflake.ID) error {
	return r.db.WithContext(ctx).Exec(
		`DELETE FROM team_external_teams WHERE external_team_id = ? AND team_id = ?`,
		externalTeamID,
		teamID,
	).Error
}
