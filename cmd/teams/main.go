package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/openconext/teams/internal/authorization"
	"github.com/openconext/teams/internal/clock"
	"github.com/openconext/teams/internal/config"
	"github.com/openconext/teams/internal/identity"
	"github.com/openconext/teams/internal/invitation"
	"github.com/openconext/teams/internal/joinrequest"
	"github.com/openconext/teams/internal/membership"
	"github.com/openconext/teams/internal/migration"
	"github.com/openconext/teams/internal/observability"
	"github.com/openconext/teams/internal/providers/email"
	"github.com/openconext/teams/internal/ratelimit"
	"github.com/openconext/teams/internal/server"
	"github.com/openconext/teams/internal/team"
	"github.com/openconext/teams/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		authorization.Module,
		email.Module,
		ratelimit.Module,
		identity.Module,
		team.Module,
		membership.Module,
		invitation.Module,
		joinrequest.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
