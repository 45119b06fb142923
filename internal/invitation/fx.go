package invitation

import (
	"github.com/openconext/teams/internal/invitation/repository"
	"github.com/openconext/teams/internal/invitation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invitation",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
