// Package authorization enforces platform-level capability gates. Per-team
// rules live with the team and membership services; this layer only answers
// what a class of user may do at all, e.g. guests may not create teams.
package authorization

import (
	"context"
	"errors"

	"github.com/openconext/teams/internal/federated"
)

const (
	ObjectTeam       = "team"
	ObjectPerson     = "person"
	ObjectInvitation = "invitation"
)

const (
	ActionTeamCreate = "team.create"
	ActionTeamSearch = "team.search"

	ActionPersonSearch = "person.search"

	ActionInvitationSend = "invitation.send"
)

var (
	ErrForbidden     = errors.New("authorization: forbidden")
	ErrInvalidObject = errors.New("authorization: object is required")
	ErrInvalidAction = errors.New("authorization: action is required")
)

type Service interface {
	Authorize(ctx context.Context, user federated.User, object string, action string) error
}
