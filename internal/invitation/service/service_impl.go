package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openconext/teams/internal/clock"
	"github.com/openconext/teams/internal/config"
	"github.com/openconext/teams/internal/federated"
	"github.com/openconext/teams/internal/invitation/domain"
	membershipdomain "github.com/openconext/teams/internal/membership/domain"
	"github.com/openconext/teams/internal/observability/logger"
	"github.com/openconext/teams/internal/providers/email"
	teamdomain "github.com/openconext/teams/internal/team/domain"
	"github.com/openconext/teams/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	db       *gorm.DB
	repo     domain.Repository
	teams    teamdomain.Repository
	members  teamdomain.MembershipRepository
	mailer   email.Provider
	settings *config.SettingsHolder
	clock    clock.Clock
	genID    *snowflake.Node
}

func NewService(gormDB *gorm.DB, repo domain.Repository, teams teamdomain.Repository, members teamdomain.MembershipRepository, mailer email.Provider, settings *config.SettingsHolder, clk clock.Clock, genID *snowflake.Node) domain.Service {
	return &service{
		db:       gormDB,
		repo:     repo,
		teams:    teams,
		members:  members,
		mailer:   mailer,
		settings: settings,
		clock:    clk,
		genID:    genID,
	}
}

func (s *service) Invite(ctx context.Context, user federated.User, req domain.InviteRequest) (*domain.Invitation, error) {
	address := strings.TrimSpace(req.Email)
	if address == "" {
		return nil, &teamdomain.IllegalJoinRequestError{Reason: "invitation email must not be empty"}
	}

	role := req.Role
	if role == "" {
		role = teamdomain.RoleMember
	}
	if !role.Valid() {
		return nil, &teamdomain.IllegalMembershipError{Reason: fmt.Sprintf("unknown role %s", role)}
	}

	team, err := s.findTeam(ctx, req.TeamID)
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
	if err := membershipdomain.CanNotUpgradeToMoreImportantThenYourself(actorRole, role); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	invitation := &domain.Invitation{
		ID:             s.genID.Generate(),
		InvitationHash: teamdomain.NewPublicLink(),
		TeamID:         team.ID,
		Email:          address,
		IntendedRole:   role,
		Language:       language(req.Language),
		Status:         domain.StatusPending,
		ExpiresAt:      now.AddDate(0, 0, s.settings.Current().InvitationExpiryDays),
		CreatedAt:      now,
	}
	message := &domain.InvitationMessage{
		ID:           s.genID.Generate(),
		InvitationID: invitation.ID,
		PersonID:     user.Person.ID,
		PersonURN:    user.URN(),
		Text:         strings.TrimSpace(req.Message),
		CreatedAt:    now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, invitation); err != nil {
			return err
		}
		return repo.AddMessage(ctx, message)
	})
	if err != nil {
		return nil, err
	}

	invitation.Messages = []domain.InvitationMessage{*message}
	invitation.Team = team

	logger.FromContext(ctx).Info("invitation created",
		zap.String("team_urn", team.URN),
		zap.String("email", address),
		zap.String("role", string(role)),
	)

	s.deliver(ctx, user, team, invitation, message.Text)
	return invitation, nil
}

func (s *service) Accept(ctx context.Context, user federated.User, token string) (*teamdomain.Membership, error) {
	invitation, err := s.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	switch invitation.EffectiveStatus(s.clock.Now()) {
	case domain.StatusPending:
	case domain.StatusExpired:
		return nil, &teamdomain.IllegalJoinRequestError{Reason: "invitation has expired"}
	default:
		return nil, &teamdomain.IllegalJoinRequestError{
			Reason: fmt.Sprintf("invitation is %s", strings.ToLower(string(invitation.Status))),
		}
	}

	team := invitation.Team
	if err := membershipdomain.MembershipNotAllowed(team, user.URN()); err != nil {
		return nil, err
	}
	if user.IsGuest() && invitation.IntendedRole == teamdomain.RoleAdmin {
		return nil, &teamdomain.IllegalMembershipError{
			Reason: fmt.Sprintf("guest %s may not become admin of team %s", user.URN(), team.URN),
		}
	}

	membership := &teamdomain.Membership{
		ID:        s.genID.Generate(),
		TeamID:    team.ID,
		PersonID:  user.Person.ID,
		PersonURN: user.URN(),
		Role:      invitation.IntendedRole,
		CreatedAt: s.clock.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.members.WithTx(tx).Create(ctx, membership); err != nil {
			return err
		}
		return s.repo.WithTx(tx).UpdateStatus(ctx, invitation.ID, domain.StatusAccepted)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, &teamdomain.IllegalJoinRequestError{
				Reason: fmt.Sprintf("%s is already a member of team %s", user.URN(), team.URN),
			}
		}
		return nil, err
	}

	logger.FromContext(ctx).Info("invitation accepted",
		zap.String("team_urn", team.URN),
		zap.String("person_urn", user.URN()),
		zap.String("role", string(invitation.IntendedRole)),
	)
	return membership, nil
}

func (s *service) Decline(ctx context.Context, token string) error {
	invitation, err := s.FindByToken(ctx, token)
	if err != nil {
		return err
	}
	if invitation.EffectiveStatus(s.clock.Now()) != domain.StatusPending {
		return &teamdomain.IllegalJoinRequestError{Reason: "invitation is no longer pending"}
	}
	if err := s.repo.UpdateStatus(ctx, invitation.ID, domain.StatusDeclined); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("invitation declined", zap.String("email", invitation.Email))
	return nil
}

func (s *service) Resend(ctx context.Context, user federated.User, req domain.ResendRequest) (*domain.Invitation, error) {
	invitation, err := s.repo.FindByID(ctx, req.InvitationID)
	if err != nil {
		if db.IsNotFoundErr(err) {
			return nil, &teamdomain.NotFoundError{Kind: "invitation", ID: strconv.FormatInt(int64(req.InvitationID), 10)}
		}
		return nil, err
	}
	if invitation.Status == domain.StatusAccepted {
		return nil, &teamdomain.IllegalJoinRequestError{Reason: "invitation has already been accepted"}
	}

	team := invitation.Team
	actorRole, err := s.actorRoleIn(team, user)
	if err != nil {
		return nil, err
	}
	if err := membershipdomain.MembersCanNotChangeRoles(actorRole); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	expiresAt := now.AddDate(0, 0, s.settings.Current().InvitationExpiryDays)
	message := &domain.InvitationMessage{
		ID:           s.genID.Generate(),
		InvitationID: invitation.ID,
		PersonID:     user.Person.ID,
		PersonURN:    user.URN(),
		Text:         strings.TrimSpace(req.Message),
		CreatedAt:    now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.ResetExpiry(ctx, invitation.ID, expiresAt); err != nil {
			return err
		}
		return repo.AddMessage(ctx, message)
	})
	if err != nil {
		return nil, err
	}

	invitation.Status = domain.StatusPending
	invitation.ExpiresAt = expiresAt
	invitation.Messages = append(invitation.Messages, *message)

	logger.FromContext(ctx).Info("invitation resent",
		zap.String("team_urn", team.URN),
		zap.String("email", invitation.Email),
	)

	s.deliver(ctx, user, team, invitation, message.Text)
	return invitation, nil
}

func (s *service) FindByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	invitation, err := s.repo.FindByHash(ctx, strings.TrimSpace(token))
	if err != nil {
		if db.IsNotFoundErr(err) {
			return nil, &teamdomain.NotFoundError{Kind: "invitation", ID: token}
		}
		return nil, err
	}
	return invitation, nil
}

func (s *service) ForTeam(ctx context.Context, user federated.User, teamID snowflake.ID) ([]domain.Invitation, error) {
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

	invitations, err := s.repo.FindByTeamID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	s.resolveExpiry(invitations)
	return invitations, nil
}

func (s *service) SentBy(ctx context.Context, personID snowflake.ID) ([]domain.Invitation, error) {
	invitations, err := s.repo.FindBySender(ctx, personID)
	if err != nil {
		return nil, err
	}
	s.resolveExpiry(invitations)
	return invitations, nil
}

func (s *service) ReceivedBy(ctx context.Context, address string) ([]domain.Invitation, error) {
	invitations, err := s.repo.FindByEmail(ctx, strings.TrimSpace(address))
	if err != nil {
		return nil, err
	}
	s.resolveExpiry(invitations)
	return invitations, nil
}

func (s *service) resolveExpiry(invitations []domain.Invitation) {
	now := s.clock.Now()
	for i := range invitations {
		invitations[i].Status = invitations[i].EffectiveStatus(now)
	}
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

func language(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return "en"
	}
	return lang
}

// deliver sends the invitation mail. Delivery failure never fails the call.
func (s *service) deliver(ctx context.Context, user federated.User, team *teamdomain.Team, invitation *domain.Invitation, messageText string) {
	err := s.mailer.SendTemplate(ctx, []string{invitation.Email}, "invitation", map[string]interface{}{
		"inviter_name": user.Person.Name,
		"team_name":    team.Name,
		"role":         string(invitation.IntendedRole),
		"message":      messageText,
		"accept_url":   "/invitations/accept/" + invitation.InvitationHash,
		"expires_at":   invitation.ExpiresAt.Format(time.RFC1123),
	})
	if err != nil {
		logger.FromContext(ctx).Warn("invitation mail delivery failed",
			zap.String("email", invitation.Email),
			zap.Error(err),
		)
	}
}
