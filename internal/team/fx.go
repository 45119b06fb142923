package team

import (
	"github.com/openconext/teams/internal/team/repository"
	"github.com/openconext/teams/internal/team/service"
	"go.uber.org/fx"
)

var Module = fx.Module("team",
	fx.Provide(
		repository.NewRepository,
		repository.NewMembershipRepository,
		repository.NewMembershipDirectory,
		service.NewService,
	),
)
