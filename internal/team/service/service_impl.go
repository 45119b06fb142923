package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/openconext/teams/internal/clock"
	"github.com/openconext/teams/internal/config"
	"github.com/openconext/teams/internal/federated"
	invitationdomain "github.com/openconext/teams/internal/invitation/domain"
	membershipdomain "github.com/openconext/teams/internal/membership/domain"
	"github.com/openconext/teams/internal/observability/logger"
	"github.com/openconext/teams/internal/team/domain"
	"github.com/openconext/teams/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const autocompleteLimit = 10

type service struct {
	db          *gorm.DB
	repo        domain.Repository
	members     domain.MembershipRepository
	invitations invitationdomain.Service
	settings    *config.SettingsHolder
	clock       clock.Clock
	genID       *snowflake.Node
}

func NewService(gormDB *gorm.DB, repo domain.Repository, members domain.MembershipRepository, invitations invitationdomain.Service, settings *config.SettingsHolder, clk clock.Clock, genID *snowflake.Node) domain.Service {
	return &service{
		db:          gormDB,
		repo:        repo,
		members:     members,
		invitations: invitations,
		settings:    settings,
		clock:       clk,
		genID:       genID,
	}
}

func (s *service) Create(ctx context.Context, user federated.User, req domain.CreateTeamRequest) (*domain.TeamView, error) {
	if user.IsGuest() {
		return nil, &domain.NotAllowedError{Reason: "guests may not create teams"}
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	urn := domain.ConstructURN(s.settings.Current().DefaultStemName, name)
	now := s.clock.Now()

	team := &domain.Team{
		ID:                 s.genID.Generate(),
		URN:                urn,
		Name:               name,
		Description:        strings.TrimSpace(req.Description),
		PersonalNote:       strings.TrimSpace(req.PersonalNote),
		Viewable:           req.Viewable,
		HideMembers:        req.HideMembers,
		PublicLinkDisabled: !req.Viewable,
		CreatedAt:          now,
	}
	if req.Viewable {
		team.PublicLink = domain.NewPublicLink()
	}

	membership := &domain.Membership{
		ID:        s.genID.Generate(),
		TeamID:    team.ID,
		PersonID:  user.Person.ID,
		PersonURN: user.URN(),
		Role:      domain.RoleAdmin,
		CreatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		members := s.members.WithTx(tx)

		_, err := repo.FindByURN(ctx, urn)
		if err == nil {
			return &domain.DuplicateTeamNameError{Name: name}
		}
		if !db.IsNotFoundErr(err) {
			return err
		}

		if err := repo.Create(ctx, team); err != nil {
			return err
		}
		return members.Create(ctx, membership)
	})
	if err != nil {
		// A concurrent create with the same name surfaces on the urn index.
		if db.IsDuplicateKeyErr(err) {
			return nil, &domain.DuplicateTeamNameError{Name: name}
		}
		return nil, err
	}

	log := logger.FromContext(ctx)
	log.Info("team created", zap.String("urn", urn), zap.String("actor", user.URN()))

	if email := strings.TrimSpace(req.AdminEmail); email != "" {
		_, err := s.invitations.Invite(ctx, user, invitationdomain.InviteRequest{
			TeamID:   team.ID,
			Email:    email,
			Role:     domain.RoleAdmin,
			Message:  req.InvitationMessage,
			Language: req.Language,
		})
		if err != nil {
			// Team creation stands; the admin invitation is best effort.
			log.Warn("admin invitation failed after team creation",
				zap.String("urn", urn),
				zap.String("email", email),
				zap.Error(err),
			)
		}
	}

	team.Memberships = []domain.Membership{*membership}
	view := domain.ViewTeamFor(team, membership, user.IsSuperAdmin())
	return &view, nil
}

func (s *service) Update(ctx context.Context, user federated.User, req domain.UpdateTeamRequest) (*domain.TeamView, error) {
	var updated *domain.Team
	var actorMembership *domain.Membership

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		team, err := s.findTeam(ctx, repo, req.ID)
		if err != nil {
			return err
		}

		membership, role, err := actorStanding(team, user)
		if err != nil {
			return err
		}
		if err := membershipdomain.OnlyAdminAllowed(role, user, team, "update"); err != nil {
			return err
		}

		// Name and urn are immutable after creation.
		team.Description = strings.TrimSpace(req.Description)
		team.PersonalNote = strings.TrimSpace(req.PersonalNote)
		team.HideMembers = req.HideMembers

		switch {
		case req.ResetPublicLink:
			team.ResetPublicLink()
		case req.Viewable && !team.Viewable:
			team.ResetPublicLink()
		case !req.Viewable && team.Viewable:
			team.Viewable = false
			team.PublicLinkDisabled = true
		}

		if err := repo.Update(ctx, team); err != nil {
			return err
		}

		updated = team
		actorMembership = membership
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("team updated",
		zap.String("urn", updated.URN),
		zap.String("actor", user.URN()),
	)

	view := domain.ViewTeamFor(updated, actorMembership, user.IsSuperAdmin())
	return &view, nil
}

func (s *service) Delete(ctx context.Context, user federated.User, id snowflake.ID) error {
	var urn string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		team, err := s.findTeam(ctx, repo, id)
		if err != nil {
			return err
		}

		_, role, err := actorStanding(team, user)
		if err != nil {
			return err
		}
		if err := membershipdomain.OnlyAdminAllowed(role, user, team, "delete"); err != nil {
			return err
		}

		// External teams are shared references: remove the links, keep the rows.
		externalTeams, err := repo.ExternalTeamsByTeamURN(ctx, team.URN)
		if err != nil {
			return err
		}
		for _, externalTeam := range externalTeams {
			if err := repo.UnlinkExternalTeam(ctx, externalTeam.ID, team.ID); err != nil {
				return err
			}
		}

		urn = team.URN
		return repo.Delete(ctx, team)
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info("team deleted", zap.String("urn", urn), zap.String("actor", user.URN()))
	return nil
}

func (s *service) View(ctx context.Context, user federated.User, id snowflake.ID) (*domain.TeamView, error) {
	team, err := s.findTeam(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	membership, _ := team.Member(user.URN())
	view := domain.ViewTeamFor(team, membership, user.IsSuperAdmin())
	if view.Kind == domain.ViewDenied {
		return nil, &domain.NotAllowedError{
			Reason: user.URN() + " may not view team " + team.URN,
		}
	}
	return &view, nil
}

func (s *service) ViewByPublicLink(ctx context.Context, token string) (*domain.TeamSummary, error) {
	team, err := s.repo.FindByPublicLink(ctx, strings.TrimSpace(token))
	if err != nil {
		if db.IsNotFoundErr(err) {
			return nil, &domain.NotFoundError{Kind: "team", ID: token}
		}
		return nil, err
	}
	summary := domain.SummarizeTeam(team)
	return &summary, nil
}

func (s *service) ListForMember(ctx context.Context, user federated.User) ([]domain.TeamSummary, error) {
	teams, err := s.repo.FindByMemberURN(ctx, user.URN())
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.TeamSummary, 0, len(teams))
	for i := range teams {
		summaries = append(summaries, domain.SummarizeTeamFor(&teams[i], user.URN()))
	}
	return summaries, nil
}

func (s *service) ExistsByName(ctx context.Context, name string) (bool, error) {
	urn := domain.ConstructURN(s.settings.Current().DefaultStemName, name)
	_, err := s.repo.FindByURN(ctx, urn)
	if err != nil {
		if db.IsNotFoundErr(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *service) Autocomplete(ctx context.Context, user federated.User, query string) ([]domain.TeamAutocomplete, error) {
	return s.repo.Autocomplete(ctx, user.Person.ID, strings.TrimSpace(query), autocompleteLimit)
}

func (s *service) findTeam(ctx context.Context, repo domain.Repository, id snowflake.ID) (*domain.Team, error) {
	team, err := repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFoundErr(err) {
			return nil, &domain.NotFoundError{Kind: "team", ID: strconv.FormatInt(int64(id), 10)}
		}
		return nil, err
	}
	return team, nil
}

// actorStanding resolves the caller's membership and effective role.
// Super-admins act with OWNER privileges without holding a membership.
func actorStanding(team *domain.Team, user federated.User) (*domain.Membership, domain.Role, error) {
	if membership, ok := team.Member(user.URN()); ok {
		return membership, membership.Role, nil
	}
	if user.IsSuperAdmin() {
		return nil, domain.RoleOwner, nil
	}
	return nil, "", &domain.NotAllowedError{
		Reason: user.URN() + " is not a member of team " + team.URN,
	}
}
