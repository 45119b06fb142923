package identity

import (
	"github.com/openconext/teams/internal/identity/repository"
	"github.com/openconext/teams/internal/identity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("identity.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
