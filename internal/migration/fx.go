package migration

import (
	"github.com/openconext/teams/internal/config"
	identitydomain "github.com/openconext/teams/internal/identity/domain"
	invitationdomain "github.com/openconext/teams/internal/invitation/domain"
	joinrequestdomain "github.com/openconext/teams/internal/joinrequest/domain"
	teamdomain "github.com/openconext/teams/internal/team/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// mysql and sqlite deployments derive the schema from the models.
			return conn.AutoMigrate(
				&identitydomain.Person{},
				&teamdomain.Team{},
				&teamdomain.Membership{},
				&teamdomain.ExternalTeam{},
				&invitationdomain.Invitation{},
				&invitationdomain.InvitationMessage{},
				&joinrequestdomain.JoinRequest{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
