package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidName signals an empty or whitespace-only team name.
var ErrInvalidName = errors.New("team name must not be empty")

// IllegalMembershipError signals a role or authorization invariant violation.
type IllegalMembershipError struct {
	Reason string
}

func (e *IllegalMembershipError) Error() string {
	return "illegal membership: " + e.Reason
}

// IllegalJoinRequestError signals a violated join or invite precondition.
type IllegalJoinRequestError struct {
	Reason string
}

func (e *IllegalJoinRequestError) Error() string {
	return "illegal join request: " + e.Reason
}

// NotAllowedError signals that the actor lacks the standing for an action
// entirely, e.g. is not a member of the team at all.
type NotAllowedError struct {
	Reason string
}

func (e *NotAllowedError) Error() string {
	return "not allowed: " + e.Reason
}

// DuplicateTeamNameError signals a urn collision on team creation.
type DuplicateTeamNameError struct {
	Name string
}

func (e *DuplicateTeamNameError) Error() string {
	return fmt.Sprintf("team name %q is already taken", e.Name)
}

// NotFoundError signals that a referenced entity does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}
