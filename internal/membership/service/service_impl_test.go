package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openconext/teams/internal/federated"
	identitydomain "github.com/openconext/teams/internal/identity/domain"
	"github.com/openconext/teams/internal/membership/domain"
	teamdomain "github.com/openconext/teams/internal/team/domain"
	teamrepository "github.com/openconext/teams/internal/team/repository"
	"github.com/openconext/teams/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	svc  domain.Service
	conn *gorm.DB
	node *snowflake.Node
	team *teamdomain.Team
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&identitydomain.Person{},
		&teamdomain.Team{},
		&teamdomain.Membership{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	team := &teamdomain.Team{
		ID:        node.Generate(),
		URN:       "demo:openconext:org:riders",
		Name:      "riders",
		Viewable:  true,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, conn.Create(team).Error)

	svc := NewService(conn, teamrepository.NewRepository(conn), teamrepository.NewMembershipRepository(conn))
	return &fixture{svc: svc, conn: conn, node: node, team: team}
}

func (f *fixture) member(t *testing.T, urn string, role teamdomain.Role, guest bool) federated.User {
	t.Helper()

	person := &identitydomain.Person{
		ID:            f.node.Generate(),
		URN:           urn,
		Name:          urn,
		Email:         urn + "@example.org",
		Guest:         guest,
		LastLoginDate: time.Now().UTC(),
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, f.conn.Create(person).Error)
	require.NoError(t, f.conn.Create(&teamdomain.Membership{
		ID:        f.node.Generate(),
		TeamID:    f.team.ID,
		PersonID:  person.ID,
		PersonURN: urn,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}).Error)
	return federated.User{Person: person}
}

func (f *fixture) roleOf(t *testing.T, urn string) teamdomain.Role {
	t.Helper()
	var membership teamdomain.Membership
	require.NoError(t, f.conn.First(&membership, "team_id = ? AND person_urn = ?", f.team.ID, urn).Error)
	return membership.Role
}

func TestChangeRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.member(t, "urn:admin", teamdomain.RoleAdmin, false)
	f.member(t, "urn:member", teamdomain.RoleMember, false)

	membership, err := f.svc.ChangeRole(ctx, admin, domain.ChangeRoleRequest{
		TeamID:    f.team.ID,
		PersonURN: "urn:member",
		Role:      teamdomain.RoleManager,
	})
	require.NoError(t, err)
	assert.Equal(t, teamdomain.RoleManager, membership.Role)
	assert.Equal(t, teamdomain.RoleManager, f.roleOf(t, "urn:member"))
}

func TestChangeRoleByMemberIsRejected(t *testing.T) {
	f := newFixture(t)
	f.member(t, "urn:admin", teamdomain.RoleAdmin, false)
	member := f.member(t, "urn:member", teamdomain.RoleMember, false)

	_, err := f.svc.ChangeRole(context.Background(), member, domain.ChangeRoleRequest{
		TeamID:    f.team.ID,
		PersonURN: "urn:member",
		Role:      teamdomain.RoleManager,
	})

	var illegal *teamdomain.IllegalMembershipError
	assert.ErrorAs(t, err, &illegal)
	assert.Equal(t, teamdomain.RoleMember, f.roleOf(t, "urn:member"))
}

func TestManagerCanNotGrantAdmin(t *testing.T) {
	f := newFixture(t)
	f.member(t, "urn:admin", teamdomain.RoleAdmin, false)
	manager := f.member(t, "urn:manager", teamdomain.RoleManager, false)
	f.member(t, "urn:member", teamdomain.RoleMember, false)

	_, err := f.svc.ChangeRole(context.Background(), manager, domain.ChangeRoleRequest{
		TeamID:    f.team.ID,
		PersonURN: "urn:member",
		Role:      teamdomain.RoleAdmin,
	})

	var illegal *teamdomain.IllegalMembershipError
	assert.ErrorAs(t, err, &illegal)
}

func TestDemotingTheOnlyAdminIsRejected(t *testing.T) {
	f := newFixture(t)
	admin := f.member(t, "urn:admin", teamdomain.RoleAdmin, false)

	_, err := f.svc.ChangeRole(context.Background(), admin, domain.ChangeRoleRequest{
		TeamID:    f.team.ID,
		PersonURN: "urn:admin",
		Role:      teamdomain.RoleMember,
	})

	var illegal *teamdomain.IllegalMembershipError
	assert.ErrorAs(t, err, &illegal)
	assert.Equal(t, teamdomain.RoleAdmin, f.roleOf(t, "urn:admin"))
}

func TestGuestMayNotBecomeAdmin(t *testing.T) {
	f := newFixture(t)
	admin := f.member(t, "urn:admin", teamdomain.RoleAdmin, false)
	f.member(t, "urn:guest", teamdomain.RoleMember, true)

	_, err := f.svc.ChangeRole(context.Background(), admin, domain.ChangeRoleRequest{
		TeamID:    f.team.ID,
		PersonURN: "urn:guest",
		Role:      teamdomain.RoleAdmin,
	})

	var illegal *teamdomain.IllegalMembershipError
	assert.ErrorAs(t, err, &illegal)
}

func TestSuperAdminActsWithOwnerRank(t *testing.T) {
	f := newFixture(t)
	f.member(t, "urn:admin", teamdomain.RoleAdmin, false)
	f.member(t, "urn:member", teamdomain.RoleMember, false)

	root := federated.User{Person: &identitydomain.Person{
		ID:         f.node.Generate(),
		URN:        "urn:root",
		SuperAdmin: true,
	}}

	membership, err := f.svc.ChangeRole(context.Background(), root, domain.ChangeRoleRequest{
		TeamID:    f.team.ID,
		PersonURN: "urn:member",
		Role:      teamdomain.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, teamdomain.RoleAdmin, membership.Role)
}

func TestRemoveSelf(t *testing.T) {
	f := newFixture(t)
	f.member(t, "urn:admin", teamdomain.RoleAdmin, false)
	member := f.member(t, "urn:member", teamdomain.RoleMember, false)

	require.NoError(t, f.svc.Remove(context.Background(), member, f.team.ID, "urn:member"))

	var count int64
	f.conn.Model(&teamdomain.Membership{}).Where("person_urn = ?", "urn:member").Count(&count)
	assert.Zero(t, count)
}

func TestMemberCanNotRemoveOthers(t *testing.T) {
	f := newFixture(t)
	f.member(t, "urn:admin", teamdomain.RoleAdmin, false)
	member := f.member(t, "urn:member", teamdomain.RoleMember, false)
	f.member(t, "urn:other", teamdomain.RoleMember, false)

	err := f.svc.Remove(context.Background(), member, f.team.ID, "urn:other")

	var illegal *teamdomain.IllegalMembershipError
	assert.ErrorAs(t, err, &illegal)
}

func TestRemovingTheOnlyAdminIsRejected(t *testing.T) {
	f := newFixture(t)
	admin := f.member(t, "urn:admin", teamdomain.RoleAdmin, false)
	f.member(t, "urn:member", teamdomain.RoleMember, false)

	err := f.svc.Remove(context.Background(), admin, f.team.ID, "urn:admin")

	var illegal *teamdomain.IllegalMembershipError
	assert.ErrorAs(t, err, &illegal)
}

func TestAdminRemovesMember(t *testing.T) {
	f := newFixture(t)
	admin := f.member(t, "urn:admin", teamdomain.RoleAdmin, false)
	f.member(t, "urn:member", teamdomain.RoleMember, false)

	require.NoError(t, f.svc.Remove(context.Background(), admin, f.team.ID, "urn:member"))
}
