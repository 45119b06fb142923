package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func viewableTeam() *Team {
	return &Team{
		ID:           1,
		URN:          "demo:openconext:org:riders",
		Name:         "riders",
		PersonalNote: "note for admins",
		Viewable:     true,
		Memberships: []Membership{
			{PersonURN: "urn:admin", Role: RoleAdmin},
			{PersonURN: "urn:member", Role: RoleMember},
		},
	}
}

func TestViewTeamForMember(t *testing.T) {
	team := viewableTeam()
	membership, _ := team.Member("urn:member")

	view := ViewTeamFor(team, membership, false)

	assert.Equal(t, ViewFull, view.Kind)
	assert.NotNil(t, view.Detail)
	assert.Equal(t, RoleMember, view.Detail.Role)
	assert.Empty(t, view.Detail.PersonalNote, "personal note is admin-only")
	assert.Len(t, view.Detail.Memberships, 2)
}

func TestViewTeamForAdmin(t *testing.T) {
	team := viewableTeam()
	membership, _ := team.Member("urn:admin")

	view := ViewTeamFor(team, membership, false)

	assert.Equal(t, ViewFull, view.Kind)
	assert.Equal(t, "note for admins", view.Detail.PersonalNote)
}

func TestViewTeamForNonMember(t *testing.T) {
	view := ViewTeamFor(viewableTeam(), nil, false)

	assert.Equal(t, ViewPublic, view.Kind)
	assert.Nil(t, view.Detail)
	assert.NotNil(t, view.Summary)
	assert.Equal(t, 2, view.Summary.MembershipCount)
}

func TestViewTeamForNonMemberOfPrivateTeam(t *testing.T) {
	team := viewableTeam()
	team.Viewable = false

	view := ViewTeamFor(team, nil, false)

	assert.Equal(t, ViewDenied, view.Kind)
	assert.Nil(t, view.Detail)
	assert.Nil(t, view.Summary)
}

func TestViewTeamForSuperAdmin(t *testing.T) {
	team := viewableTeam()
	team.Viewable = false

	view := ViewTeamFor(team, nil, true)

	assert.Equal(t, ViewFull, view.Kind)
	assert.Equal(t, RoleOwner, view.Detail.Role)
	assert.Equal(t, "note for admins", view.Detail.PersonalNote)
}

func TestViewHidesMembersFromNonAdmins(t *testing.T) {
	team := viewableTeam()
	team.HideMembers = true

	membership, _ := team.Member("urn:member")
	view := ViewTeamFor(team, membership, false)
	assert.Empty(t, view.Detail.Memberships)

	admin, _ := team.Member("urn:admin")
	view = ViewTeamFor(team, admin, false)
	assert.Len(t, view.Detail.Memberships, 2)
}

func TestSummarizeTeamFor(t *testing.T) {
	team := viewableTeam()

	summary := SummarizeTeamFor(team, "urn:member")
	assert.Equal(t, RoleMember, summary.Role)

	summary = SummarizeTeamFor(team, "urn:stranger")
	assert.Empty(t, summary.Role)
}
