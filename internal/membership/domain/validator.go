// The rules below govern membership state. Each rule is an independent,
// side-effect-free check returning a typed error, so callers compose the
// subset an action needs.
package domain

import (
	"fmt"

	"github.com/openconext/teams/internal/federated"
	teamdomain "github.com/openconext/teams/internal/team/domain"
)

// MembersCanNotChangeRoles rejects role-altering actions from actors below
// MANAGER.
func MembersCanNotChangeRoles(actorRole teamdomain.Role) error {
	if !actorRole.AtLeast(teamdomain.RoleManager) {
		return &teamdomain.IllegalMembershipError{
			Reason: fmt.Sprintf("role %s may not change roles", actorRole),
		}
	}
	return nil
}

// OneAdminIsRequired rejects a role change that would leave the team without
// any ADMIN. OWNER memberships do not count towards the requirement.
func OneAdminIsRequired(team *teamdomain.Team, personURN string, newRole teamdomain.Role) error {
	if newRole == teamdomain.RoleAdmin {
		return nil
	}
	current, ok := team.Member(personURN)
	if !ok || current.Role != teamdomain.RoleAdmin {
		return nil
	}
	if team.AdminCount() == 1 {
		return &teamdomain.IllegalMembershipError{
			Reason: fmt.Sprintf("%s is the only admin of team %s", personURN, team.URN),
		}
	}
	return nil
}

// CanNotUpgradeToMoreImportantThenYourself rejects granting a role more
// privileged than the actor's own.
func CanNotUpgradeToMoreImportantThenYourself(actorRole, requestedRole teamdomain.Role) error {
	if requestedRole.Rank() > actorRole.Rank() {
		return &teamdomain.IllegalMembershipError{
			Reason: fmt.Sprintf("role %s may not grant role %s", actorRole, requestedRole),
		}
	}
	return nil
}

// MembersCanNotRemoveOthers allows removal by admins, or by anyone removing
// themselves.
func MembersCanNotRemoveOthers(actorRole teamdomain.Role, targetURN string, actor federated.User) error {
	if actorRole.AtLeast(teamdomain.RoleAdmin) {
		return nil
	}
	if targetURN == actor.URN() {
		return nil
	}
	return &teamdomain.IllegalMembershipError{
		Reason: fmt.Sprintf("role %s may not remove other members", actorRole),
	}
}

// MembershipNotAllowed rejects joins and direct adds for persons who already
// hold a membership in the team.
func MembershipNotAllowed(team *teamdomain.Team, personURN string) error {
	if _, ok := team.Member(personURN); ok {
		return &teamdomain.IllegalJoinRequestError{
			Reason: fmt.Sprintf("%s is already a member of team %s", personURN, team.URN),
		}
	}
	return nil
}

// PrivateTeamDoesNotAllowMembers rejects unsolicited joins on non-viewable
// teams. Invitation is the only way into a private team.
func PrivateTeamDoesNotAllowMembers(team *teamdomain.Team, personURN string) error {
	if !team.Viewable {
		return &teamdomain.IllegalJoinRequestError{
			Reason: fmt.Sprintf("team %s is private and does not accept join requests from %s", team.URN, personURN),
		}
	}
	return nil
}

// OnlyAdminAllowed gates team update and delete. Platform super-admins
// bypass the membership requirement.
func OnlyAdminAllowed(actorRole teamdomain.Role, actor federated.User, team *teamdomain.Team, action string) error {
	if actor.IsSuperAdmin() {
		return nil
	}
	if actorRole == teamdomain.RoleAdmin {
		return nil
	}
	return &teamdomain.NotAllowedError{
		Reason: fmt.Sprintf("%s may not %s team %s with role %s", actor.URN(), action, team.URN, actorRole),
	}
}
