package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/openconext/teams/internal/clock"
	"github.com/openconext/teams/internal/federated"
	"github.com/openconext/teams/internal/joinrequest/domain"
	membershipdomain "github.com/openconext/teams/internal/membership/domain"
	"github.com/openconext/teams/internal/observability/logger"
	"github.com/openconext/teams/internal/providers/email"
	teamdomain "github.com/openconext/teams/internal/team/domain"
	"github.com/openconext/teams/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	db      *gorm.DB
	repo    domain.Repository
	teams   teamdomain.Repository
	members teamdomain.MembershipRepository
	mailer  email.Provider
	clock   clock.Clock
	genID   *snowflake.Node
}

func NewService(gormDB *gorm.DB, repo domain.Repository, teams teamdomain.Repository, members teamdomain.MembershipRepository, mailer email.Provider, clk clock.Clock, genID *snowflake.Node) domain.Service {
	return &service{
		db:      gormDB,
		repo:    repo,
		teams:   teams,
		members: members,
		mailer:  mailer,
		clock:   clk,
		genID:   genID,
	}
}

func (s *service) Create(ctx context.Context, user federated.User, req domain.CreateRequest) (*domain.JoinRequest, error) {
	team, err := s.findTeam(ctx, req.TeamID)
	if err != nil {
		return nil, err
	}

	if err := membershipdomain.MembershipNotAllowed(team, user.URN()); err != nil {
		return nil, err
	}
	if err := membershipdomain.PrivateTeamDoesNotAllowMembers(team, user.URN()); err != nil {
		return nil, err
	}
	if _, err := s.repo.Find(ctx, team.ID, user.Person.ID); err == nil {
		return nil, &teamdomain.IllegalJoinRequestError{
			Reason: fmt.Sprintf("%s already has a pending request for team %s", user.URN(), team.URN),
		}
	} else if !db.IsNotFoundErr(err) {
		return nil, err
	}

	request := &domain.JoinRequest{
		ID:        s.genID.Generate(),
		TeamID:    team.ID,
		PersonID:  user.Person.ID,
		PersonURN: user.URN(),
		Message:   strings.TrimSpace(req.Message),
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Create(ctx, request); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, &teamdomain.IllegalJoinRequestError{
				Reason: fmt.Sprintf("%s already has a pending request for team %s", user.URN(), team.URN),
			}
		}
		return nil, err
	}

	logger.FromContext(ctx).Info("join request created",
		zap.String("team_urn", team.URN),
		zap.String("person_urn", user.URN()),
	)

	s.notifyManagers(ctx, user, team, request.Message)
	return request, nil
}

func (s *service) Approve(ctx context.Context, user federated.User, id snowflake.ID) (*teamdomain.Membership, error) {
	request, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	team := request.Team

	actorRole, err := s.actorRoleIn(team, user)
	if err != nil {
		return nil, err
	}
	if err := membershipdomain.MembersCanNotChangeRoles(actorRole); err != nil {
		return nil, err
	}
	if err := membershipdomain.MembershipNotAllowed(team, request.PersonURN); err != nil {
		return nil, err
	}

	membership := &teamdomain.Membership{
		ID:        s.genID.Generate(),
		TeamID:    team.ID,
		PersonID:  request.PersonID,
		PersonURN: request.PersonURN,
		Role:      teamdomain.RoleMember,
		CreatedAt: s.clock.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.members.WithTx(tx).Create(ctx, membership); err != nil {
			return err
		}
		return s.repo.WithTx(tx).Delete(ctx, request.ID)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("join request approved",
		zap.String("team_urn", team.URN),
		zap.String("person_urn", request.PersonURN),
		zap.String("actor", user.URN()),
	)
	return membership, nil
}

func (s *service) Reject(ctx context.Context, user federated.User, id snowflake.ID) error {
	request, err := s.findRequest(ctx, id)
	if err != nil {
		return err
	}

	actorRole, err := s.actorRoleIn(request.Team, user)
	if err != nil {
		return err
	}
	if err := membershipdomain.MembersCanNotChangeRoles(actorRole); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, request.ID); err != nil {
		return err
	}

	logger.FromContext(ctx).Info("join request rejected",
		zap.String("team_urn", request.Team.URN),
		zap.String("person_urn", request.PersonURN),
		zap.String("actor", user.URN()),
	)
	return nil
}

func (s *service) ListForTeam(ctx context.Context, user federated.User, teamID snowflake.ID) ([]domain.JoinRequest, error) {
	team, err := s.findTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	actorRole, err := s.actorRoleIn(team, user)
	if err != nil {
		return nil, err
	}
	if err := membershipdomain.MembersCanNotChangeRoles(actorRole); err != nil {
		return nil, err
	}

	return s.repo.FindByTeamID(ctx, teamID)
}

func (s *service) ListForPerson(ctx context.Context, personID snowflake.ID) ([]domain.JoinRequest, error) {
	return s.repo.FindByPersonID(ctx, personID)
}

func (s *service) findTeam(ctx context.Context, id snowflake.ID) (*teamdomain.Team, error) {
	team, err := s.teams.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFoundErr(err) {
			return nil, &teamdomain.NotFoundError{Kind: "team", ID: strconv.FormatInt(int64(id), 10)}
		}
		return nil, err
	}
	return team, nil
}

func (s *service) findRequest(ctx context.Context, id snowflake.ID) (*domain.JoinRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFoundErr(err) {
			return nil, &teamdomain.NotFoundError{Kind: "join request", ID: strconv.FormatInt(int64(id), 10)}
		}
		return nil, err
	}
	return request, nil
}

func (s *service) actorRoleIn(team *teamdomain.Team, user federated.User) (teamdomain.Role, error) {
	if membership, ok := team.Member(user.URN()); ok {
		return membership.Role, nil
	}
	if user.IsSuperAdmin() {
		return teamdomain.RoleOwner, nil
	}
	return "", &teamdomain.NotAllowedError{
		Reason: fmt.Sprintf("%s is not a member of team %s", user.URN(), team.URN),
	}
}

// notifyManagers mails the team's admins and managers about a new request.
// Delivery failure never fails the call.
func (s *service) notifyManagers(ctx context.Context, user federated.User, team *teamdomain.Team, messageText string) {
	var recipients []string
	for i := range team.Memberships {
		m := &team.Memberships[i]
		if !m.Role.AtLeast(teamdomain.RoleManager) || m.Person == nil || m.Person.Email == "" {
			continue
		}
		recipients = append(recipients, m.Person.Email)
	}
	if len(recipients) == 0 {
		return
	}

	err := s.mailer.SendTemplate(ctx, recipients, "join_request", map[string]interface{}{
		"requester_name":  user.Person.Name,
		"requester_email": user.Email(),
		"team_name":       team.Name,
		"message":         messageText,
	})
	if err != nil {
		logger.FromContext(ctx).Warn("join request mail delivery failed",
			zap.String("team_urn", team.URN),
			zap.Error(err),
		)
	}
}
