package joinrequest

import (
	"github.com/openconext/teams/internal/joinrequest/repository"
	"github.com/openconext/teams/internal/joinrequest/service"
	"go.uber.org/fx"
)

var Module = fx.Module("joinrequest",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
