package domain

import (
	"testing"

	"github.com/openconext/teams/internal/federated"
	identitydomain "github.com/openconext/teams/internal/identity/domain"
	teamdomain "github.com/openconext/teams/internal/team/domain"
	"github.com/stretchr/testify/assert"
)

func testTeam(memberships ...teamdomain.Membership) *teamdomain.Team {
	return &teamdomain.Team{
		ID:          1,
		URN:         "demo:openconext:org:riders",
		Name:        "riders",
		Viewable:    true,
		Memberships: memberships,
	}
}

func userWithURN(urn string) federated.User {
	return federated.User{Person: &identitydomain.Person{URN: urn}}
}

func TestMembersCanNotChangeRoles(t *testing.T) {
	assert.Error(t, MembersCanNotChangeRoles(teamdomain.RoleGuest))
	assert.Error(t, MembersCanNotChangeRoles(teamdomain.RoleMember))
	assert.NoError(t, MembersCanNotChangeRoles(teamdomain.RoleManager))
	assert.NoError(t, MembersCanNotChangeRoles(teamdomain.RoleAdmin))
	assert.NoError(t, MembersCanNotChangeRoles(teamdomain.RoleOwner))
}

func TestOneAdminIsRequired(t *testing.T) {
	team := testTeam(
		teamdomain.Membership{PersonURN: "urn:admin", Role: teamdomain.RoleAdmin},
		teamdomain.Membership{PersonURN: "urn:member", Role: teamdomain.RoleMember},
	)

	t.Run("demoting the only admin fails", func(t *testing.T) {
		err := OneAdminIsRequired(team, "urn:admin", teamdomain.RoleMember)
		assert.IsType(t, &teamdomain.IllegalMembershipError{}, err)
	})

	t.Run("granting admin always passes", func(t *testing.T) {
		assert.NoError(t, OneAdminIsRequired(team, "urn:member", teamdomain.RoleAdmin))
	})

	t.Run("changing a non-admin passes", func(t *testing.T) {
		assert.NoError(t, OneAdminIsRequired(team, "urn:member", teamdomain.RoleManager))
	})

	t.Run("demoting one of two admins passes", func(t *testing.T) {
		twoAdmins := testTeam(
			teamdomain.Membership{PersonURN: "urn:admin", Role: teamdomain.RoleAdmin},
			teamdomain.Membership{PersonURN: "urn:admin2", Role: teamdomain.RoleAdmin},
		)
		assert.NoError(t, OneAdminIsRequired(twoAdmins, "urn:admin", teamdomain.RoleMember))
	})
}

func TestCanNotUpgradeToMoreImportantThenYourself(t *testing.T) {
	assert.Error(t, CanNotUpgradeToMoreImportantThenYourself(teamdomain.RoleManager, teamdomain.RoleAdmin))
	assert.NoError(t, CanNotUpgradeToMoreImportantThenYourself(teamdomain.RoleManager, teamdomain.RoleManager))
	assert.NoError(t, CanNotUpgradeToMoreImportantThenYourself(teamdomain.RoleAdmin, teamdomain.RoleManager))
	assert.NoError(t, CanNotUpgradeToMoreImportantThenYourself(teamdomain.RoleOwner, teamdomain.RoleAdmin))
}

func TestMembersCanNotRemoveOthers(t *testing.T) {
	actor := userWithURN("urn:member")

	t.Run("members remove themselves", func(t *testing.T) {
		assert.NoError(t, MembersCanNotRemoveOthers(teamdomain.RoleMember, "urn:member", actor))
	})

	t.Run("members can not remove others", func(t *testing.T) {
		err := MembersCanNotRemoveOthers(teamdomain.RoleMember, "urn:other", actor)
		assert.IsType(t, &teamdomain.IllegalMembershipError{}, err)
	})

	t.Run("admins remove anyone", func(t *testing.T) {
		assert.NoError(t, MembersCanNotRemoveOthers(teamdomain.RoleAdmin, "urn:other", actor))
	})
}

func TestMembershipNotAllowed(t *testing.T) {
	team := testTeam(teamdomain.Membership{PersonURN: "urn:member", Role: teamdomain.RoleMember})

	err := MembershipNotAllowed(team, "urn:member")
	assert.IsType(t, &teamdomain.IllegalJoinRequestError{}, err)

	assert.NoError(t, MembershipNotAllowed(team, "urn:newcomer"))
}

func TestPrivateTeamDoesNotAllowMembers(t *testing.T) {
	private := testTeam()
	private.Viewable = false

	err := PrivateTeamDoesNotAllowMembers(private, "urn:newcomer")
	assert.IsType(t, &teamdomain.IllegalJoinRequestError{}, err)

	assert.NoError(t, PrivateTeamDoesNotAllowMembers(testTeam(), "urn:newcomer"))
}

func TestOnlyAdminAllowed(t *testing.T) {
	team := testTeam()

	t.Run("admin passes", func(t *testing.T) {
		assert.NoError(t, OnlyAdminAllowed(teamdomain.RoleAdmin, userWithURN("urn:admin"), team, "update"))
	})

	t.Run("manager fails", func(t *testing.T) {
		err := OnlyAdminAllowed(teamdomain.RoleManager, userWithURN("urn:manager"), team, "update")
		assert.IsType(t, &teamdomain.NotAllowedError{}, err)
	})

	t.Run("super-admin bypasses membership", func(t *testing.T) {
		superAdmin := federated.User{Person: &identitydomain.Person{URN: "urn:root", SuperAdmin: true}}
		assert.NoError(t, OnlyAdminAllowed("", superAdmin, team, "delete"))
	})
}
