package service

import (
	"context"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/openconext/teams/internal/federated"
	"github.com/openconext/teams/internal/membership/domain"
	"github.com/openconext/teams/internal/observability/logger"
	teamdomain "github.com/openconext/teams/internal/team/domain"
	"github.com/openconext/teams/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	db    *gorm.DB
	teams teamdomain.Repository
	repo  teamdomain.MembershipRepository
}

func NewService(gormDB *gorm.DB, teams teamdomain.Repository, repo teamdomain.MembershipRepository) domain.Service {
	return &service{
		db:    gormDB,
		teams: teams,
		repo:  repo,
	}
}

func (s *service) ChangeRole(ctx context.Context, user federated.User, req domain.ChangeRoleRequest) (*teamdomain.Membership, error) {
	if !req.Role.Valid() {
		return nil, &teamdomain.IllegalMembershipError{Reason: "unknown role"}
	}

	var result *teamdomain.Membership
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		teams := s.teams.WithTx(tx)
		memberships := s.repo.WithTx(tx)

		team, err := findTeam(ctx, teams, req.TeamID)
		if err != nil {
			return err
		}

		actorRole, err := actorRoleIn(team, user)
		if err != nil {
			return err
		}

		if err := domain.MembersCanNotChangeRoles(actorRole); err != nil {
			return err
		}
		if err := domain.CanNotUpgradeToMoreImportantThenYourself(actorRole, req.Role); err != nil {
			return err
		}
		if err := domain.OneAdminIsRequired(team, req.PersonURN, req.Role); err != nil {
			return err
		}

		target, ok := team.Member(req.PersonURN)
		if !ok {
			return &teamdomain.NotFoundError{Kind: "membership", ID: req.PersonURN}
		}
		if target.Person != nil && target.Person.Guest && req.Role == teamdomain.RoleAdmin {
			return &teamdomain.IllegalMembershipError{Reason: "guests may not hold the admin role"}
		}

		if err := memberships.UpdateRole(ctx, target.ID, req.Role); err != nil {
			return err
		}
		target.Role = req.Role
		result = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("membership role changed",
		zap.Int64("team_id", int64(req.TeamID)),
		zap.String("person_urn", req.PersonURN),
		zap.String("role", string(req.Role)),
		zap.String("actor", user.URN()),
	)

	return result, nil
}

func (s *service) Remove(ctx context.Context, user federated.User, teamID snowflake.ID, personURN string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		teams := s.teams.WithTx(tx)
		memberships := s.repo.WithTx(tx)

		team, err := findTeam(ctx, teams, teamID)
		if err != nil {
			return err
		}

		actorRole, err := actorRoleIn(team, user)
		if err != nil {
			return err
		}

		if err := domain.MembersCanNotRemoveOthers(actorRole, personURN, user); err != nil {
			return err
		}
		// Removal counts as losing the role entirely.
		if err := domain.OneAdminIsRequired(team, personURN, teamdomain.RoleMember); err != nil {
			return err
		}

		target, ok := team.Member(personURN)
		if !ok {
			return &teamdomain.NotFoundError{Kind: "membership", ID: personURN}
		}

		return memberships.Delete(ctx, target.ID)
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info("membership removed",
		zap.Int64("team_id", int64(teamID)),
		zap.String("person_urn", personURN),
		zap.String("actor", user.URN()),
	)
	return nil
}

func findTeam(ctx context.Context, teams teamdomain.Repository, id snowflake.ID) (*teamdomain.Team, error) {
	team, err := teams.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFoundErr(err) {
			return nil, &teamdomain.NotFoundError{Kind: "team", ID: strconv.FormatInt(int64(id), 10)}
		}
		return nil, err
	}
	return team, nil
}

// actorRoleIn resolves the caller's effective role in the team. Super-admins
// act with OWNER privileges even without a membership.
func actorRoleIn(team *teamdomain.Team, user federated.User) (teamdomain.Role, error) {
	if m, ok := team.Member(user.URN()); ok {
		return m.Role, nil
	}
	if user.IsSuperAdmin() {
		return teamdomain.RoleOwner, nil
	}
	return "", &teamdomain.NotAllowedError{
		Reason: user.URN() + " is not a member of team " + team.URN,
	}
}
