package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructURN(t *testing.T) {
	stem := "demo:openconext:org"

	cases := []struct {
		name     string
		team     string
		expected string
	}{
		{"lowercases", "TeamName", "demo:openconext:org:teamname"},
		{"trims whitespace", "  new team name  ", "demo:openconext:org:new_team_name"},
		{"replaces spaces", "new team name", "demo:openconext:org:new_team_name"},
		{"replaces apostrophes", "john's team", "demo:openconext:org:john_s_team"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ConstructURN(stem, tc.team))
		})
	}
}

func TestNewPublicLink(t *testing.T) {
	link := NewPublicLink()
	assert.Len(t, link, 32)
	assert.NotContains(t, link, "-")
	assert.NotEqual(t, link, NewPublicLink())
}

func TestResetPublicLink(t *testing.T) {
	team := &Team{PublicLink: "old", PublicLinkDisabled: true, Viewable: false}

	team.ResetPublicLink()

	assert.NotEqual(t, "old", team.PublicLink)
	assert.Len(t, team.PublicLink, 32)
	assert.False(t, team.PublicLinkDisabled)
	assert.True(t, team.Viewable)
}

func TestRoleRanks(t *testing.T) {
	assert.True(t, RoleOwner.AtLeast(RoleAdmin))
	assert.True(t, RoleAdmin.AtLeast(RoleManager))
	assert.True(t, RoleManager.AtLeast(RoleMember))
	assert.True(t, RoleMember.AtLeast(RoleGuest))
	assert.False(t, RoleMember.AtLeast(RoleManager))
	assert.False(t, RoleGuest.AtLeast(RoleMember))
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("ADMIN")
	assert.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	_, err = ParseRole("SUPERVISOR")
	assert.Error(t, err)
}

func TestTeamCounts(t *testing.T) {
	team := &Team{Memberships: []Membership{
		{PersonURN: "urn:a", Role: RoleAdmin},
		{PersonURN: "urn:b", Role: RoleMember},
		{PersonURN: "urn:c", Role: RoleOwner},
	}}

	assert.Equal(t, 1, team.AdminCount())
	assert.Equal(t, 2, team.MembershipCount(), "owner memberships are not counted")

	member, ok := team.Member("urn:b")
	assert.True(t, ok)
	assert.Equal(t, RoleMember, member.Role)

	_, ok = team.Member("urn:unknown")
	assert.False(t, ok)
}
