package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openconext/teams/internal/clock"
	"github.com/openconext/teams/internal/config"
	"github.com/openconext/teams/internal/federated"
	identitydomain "github.com/openconext/teams/internal/identity/domain"
	invitationdomain "github.com/openconext/teams/internal/invitation/domain"
	"github.com/openconext/teams/internal/team/domain"
	"github.com/openconext/teams/internal/team/repository"
	"github.com/openconext/teams/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	svc   domain.Service
	conn  *gorm.DB
	node  *snowflake.Node
	clk   *clock.FakeClock
	invps *stubInvitations
}

// stubInvitations records the optional admin invitation sent after create.
type stubInvitations struct {
	invitationdomain.Service

	calls []invitationdomain.InviteRequest
	err   error
}

func (s *stubInvitations) Invite(ctx context.Context, user federated.User, req invitationdomain.InviteRequest) (*invitationdomain.Invitation, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	return &invitationdomain.Invitation{Email: req.Email}, nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&identitydomain.Person{},
		&domain.Team{},
		&domain.Membership{},
		&domain.ExternalTeam{},
		&invitationdomain.Invitation{},
		&invitationdomain.InvitationMessage{},
	))
	require.NoError(t, conn.Exec(`CREATE TABLE IF NOT EXISTS join_requests (
		id INTEGER PRIMARY KEY,
		team_id INTEGER NOT NULL,
		person_id INTEGER NOT NULL,
		person_urn TEXT NOT NULL,
		message TEXT,
		created_at DATETIME NOT NULL
	)`).Error)

	settings := &config.SettingsHolder{}
	settings.Store(config.DefaultSettings())

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	invitations := &stubInvitations{}

	svc := NewService(
		conn,
		repository.NewRepository(conn),
		repository.NewMembershipRepository(conn),
		invitations,
		settings,
		clk,
		node,
	)
	return &fixture{svc: svc, conn: conn, node: node, clk: clk, invps: invitations}
}

func (f *fixture) user(t *testing.T, urn string, guest bool) federated.User {
	t.Helper()
	person := &identitydomain.Person{
		ID:            f.node.Generate(),
		URN:           urn,
		Name:          urn,
		Email:         urn + "@example.org",
		Guest:         guest,
		LastLoginDate: f.clk.Now(),
		CreatedAt:     f.clk.Now(),
	}
	require.NoError(t, f.conn.Create(person).Error)
	return federated.User{Person: person}
}

func (f *fixture) superAdmin(t *testing.T, urn string) federated.User {
	user := f.user(t, urn, false)
	user.Person.SuperAdmin = true
	return user
}

func TestCreateTeam(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "urn:jdoe", false)

	view, err := f.svc.Create(context.Background(), user, domain.CreateTeamRequest{
		Name:     "New Team Name",
		Viewable: true,
	})
	require.NoError(t, err)

	require.Equal(t, domain.ViewFull, view.Kind)
	assert.Equal(t, "demo:openconext:org:new_team_name", view.Detail.URN)
	assert.Equal(t, domain.RoleAdmin, view.Detail.Role)
	assert.Len(t, view.Detail.PublicLink, 32)
	assert.Empty(t, f.invps.calls)

	var membership domain.Membership
	require.NoError(t, f.conn.First(&membership, "person_urn = ?", "urn:jdoe").Error)
	assert.Equal(t, domain.RoleAdmin, membership.Role)
}

func TestCreateTeamRejectsGuests(t *testing.T) {
	f := newFixture(t)
	guest := f.user(t, "urn:guest", true)

	_, err := f.svc.Create(context.Background(), guest, domain.CreateTeamRequest{Name: "club"})

	var notAllowed *domain.NotAllowedError
	assert.ErrorAs(t, err, &notAllowed)
}

func TestCreateTeamRejectsDuplicateName(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "urn:jdoe", false)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, user, domain.CreateTeamRequest{Name: "Riders"})
	require.NoError(t, err)

	// Same urn after normalization.
	_, err = f.svc.Create(ctx, user, domain.CreateTeamRequest{Name: "  riders "})

	var duplicate *domain.DuplicateTeamNameError
	assert.ErrorAs(t, err, &duplicate)
}

func TestCreateTeamSendsAdminInvitation(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "urn:jdoe", false)

	_, err := f.svc.Create(context.Background(), user, domain.CreateTeamRequest{
		Name:       "Riders",
		AdminEmail: "colleague@example.org",
	})
	require.NoError(t, err)

	require.Len(t, f.invps.calls, 1)
	assert.Equal(t, "colleague@example.org", f.invps.calls[0].Email)
	assert.Equal(t, domain.RoleAdmin, f.invps.calls[0].Role)
}

func TestCreateTeamSurvivesInvitationFailure(t *testing.T) {
	f := newFixture(t)
	f.invps.err = assert.AnError
	user := f.user(t, "urn:jdoe", false)

	view, err := f.svc.Create(context.Background(), user, domain.CreateTeamRequest{
		Name:       "Riders",
		AdminEmail: "colleague@example.org",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ViewFull, view.Kind)
}

func TestUpdateTeamRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "urn:admin", false)

	view, err := f.svc.Create(ctx, admin, domain.CreateTeamRequest{Name: "Riders", Viewable: true})
	require.NoError(t, err)
	teamID := snowflake.ID(view.Detail.ID)

	member := f.user(t, "urn:member", false)
	require.NoError(t, f.conn.Create(&domain.Membership{
		ID:        f.node.Generate(),
		TeamID:    teamID,
		PersonID:  member.Person.ID,
		PersonURN: member.URN(),
		Role:      domain.RoleMember,
		CreatedAt: f.clk.Now(),
	}).Error)

	_, err = f.svc.Update(ctx, member, domain.UpdateTeamRequest{ID: teamID, Viewable: true})
	var notAllowed *domain.NotAllowedError
	assert.ErrorAs(t, err, &notAllowed)

	updated, err := f.svc.Update(ctx, admin, domain.UpdateTeamRequest{
		ID:          teamID,
		Description: "weekend rides",
		Viewable:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "weekend rides", updated.Detail.Description)
}

func TestUpdateTeamPublicLinkLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "urn:admin", false)

	view, err := f.svc.Create(ctx, admin, domain.CreateTeamRequest{Name: "Riders", Viewable: true})
	require.NoError(t, err)
	teamID := snowflake.ID(view.Detail.ID)
	originalLink := view.Detail.PublicLink

	t.Run("hiding the team disables the link", func(t *testing.T) {
		updated, err := f.svc.Update(ctx, admin, domain.UpdateTeamRequest{ID: teamID, Viewable: false})
		require.NoError(t, err)
		assert.False(t, updated.Detail.Viewable)
		assert.True(t, updated.Detail.PublicLinkDisabled)
	})

	t.Run("reset issues a fresh link and restores visibility", func(t *testing.T) {
		updated, err := f.svc.Update(ctx, admin, domain.UpdateTeamRequest{ID: teamID, ResetPublicLink: true})
		require.NoError(t, err)
		assert.True(t, updated.Detail.Viewable)
		assert.False(t, updated.Detail.PublicLinkDisabled)
		assert.NotEqual(t, originalLink, updated.Detail.PublicLink)
		assert.Len(t, updated.Detail.PublicLink, 32)
	})
}

func TestDeleteTeamCascadesAndUnlinksExternalTeams(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "urn:admin", false)

	view, err := f.svc.Create(ctx, admin, domain.CreateTeamRequest{Name: "Riders", Viewable: true})
	require.NoError(t, err)
	teamID := snowflake.ID(view.Detail.ID)

	external := &domain.ExternalTeam{
		ID:         f.node.Generate(),
		Identifier: "ext:riders",
		Name:       "riders elsewhere",
	}
	require.NoError(t, f.conn.Create(external).Error)
	require.NoError(t, f.conn.Exec(
		"INSERT INTO team_external_teams (team_id, external_team_id) VALUES (?, ?)",
		teamID, external.ID,
	).Error)

	require.NoError(t, f.svc.Delete(ctx, admin, teamID))

	var teams, memberships, links, externals int64
	f.conn.Model(&domain.Team{}).Count(&teams)
	f.conn.Model(&domain.Membership{}).Count(&memberships)
	f.conn.Table("team_external_teams").Count(&links)
	f.conn.Model(&domain.ExternalTeam{}).Count(&externals)

	assert.Zero(t, teams)
	assert.Zero(t, memberships)
	assert.Zero(t, links)
	assert.EqualValues(t, 1, externals, "external teams are shared and survive")
}

func TestViewVariants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "urn:admin", false)

	view, err := f.svc.Create(ctx, admin, domain.CreateTeamRequest{Name: "Riders", Viewable: true})
	require.NoError(t, err)
	teamID := snowflake.ID(view.Detail.ID)

	t.Run("member sees full view", func(t *testing.T) {
		got, err := f.svc.View(ctx, admin, teamID)
		require.NoError(t, err)
		assert.Equal(t, domain.ViewFull, got.Kind)
	})

	t.Run("non-member sees public summary", func(t *testing.T) {
		stranger := f.user(t, "urn:stranger", false)
		got, err := f.svc.View(ctx, stranger, teamID)
		require.NoError(t, err)
		assert.Equal(t, domain.ViewPublic, got.Kind)
		assert.Nil(t, got.Detail)
	})

	t.Run("non-member of hidden team is denied", func(t *testing.T) {
		_, err := f.svc.Update(ctx, admin, domain.UpdateTeamRequest{ID: teamID, Viewable: false})
		require.NoError(t, err)

		stranger := f.user(t, "urn:stranger2", false)
		_, err = f.svc.View(ctx, stranger, teamID)
		var notAllowed *domain.NotAllowedError
		assert.ErrorAs(t, err, &notAllowed)
	})

	t.Run("super-admin always sees full view", func(t *testing.T) {
		root := f.superAdmin(t, "urn:root")
		got, err := f.svc.View(ctx, root, teamID)
		require.NoError(t, err)
		assert.Equal(t, domain.ViewFull, got.Kind)
		assert.Equal(t, domain.RoleOwner, got.Detail.Role)
	})
}

func TestViewByPublicLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "urn:admin", false)

	view, err := f.svc.Create(ctx, admin, domain.CreateTeamRequest{Name: "Riders", Viewable: true})
	require.NoError(t, err)

	summary, err := f.svc.ViewByPublicLink(ctx, view.Detail.PublicLink)
	require.NoError(t, err)
	assert.Equal(t, view.Detail.URN, summary.URN)

	_, err = f.svc.ViewByPublicLink(ctx, "nope")
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestExistsByName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "urn:admin", false)

	_, err := f.svc.Create(ctx, admin, domain.CreateTeamRequest{Name: "Riders"})
	require.NoError(t, err)

	exists, err := f.svc.ExistsByName(ctx, "RIDERS")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = f.svc.ExistsByName(ctx, "walkers")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestListForMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "urn:admin", false)

	_, err := f.svc.Create(ctx, admin, domain.CreateTeamRequest{Name: "Riders"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, admin, domain.CreateTeamRequest{Name: "Walkers"})
	require.NoError(t, err)

	summaries, err := f.svc.ListForMember(ctx, admin)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	for _, summary := range summaries {
		assert.Equal(t, domain.RoleAdmin, summary.Role)
	}

	stranger := f.user(t, "urn:stranger", false)
	summaries, err = f.svc.ListForMember(ctx, stranger)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
