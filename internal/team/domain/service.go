package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/openconext/teams/internal/federated"
)

// Service is the team lifecycle manager.
type Service interface {
	Create(ctx context.Context, user federated.User, req CreateTeamRequest) (*TeamView, error)
	Update(ctx context.Context, user federated.User, req UpdateTeamRequest) (*TeamView, error)
	Delete(ctx context.Context, user federated.User, id snowflake.ID) error

	View(ctx context.Context, user federated.User, id snowflake.ID) (*TeamView, error)
	ViewByPublicLink(ctx context.Context, token string) (*TeamSummary, error)
	ListForMember(ctx context.Context, user federated.User) ([]TeamSummary, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Autocomplete(ctx context.Context, user federated.User, query string) ([]TeamAutocomplete, error)
}

type CreateTeamRequest struct {
	Name              string
	Description       string
	PersonalNote      string
	Viewable          bool
	HideMembers       bool
	AdminEmail        string
	InvitationMessage string
	Language          string
}

type UpdateTeamRequest struct {
	ID              snowflake.ID
	Description     string
	PersonalNote    string
	Viewable        bool
	HideMembers     bool
	ResetPublicLink bool
}
