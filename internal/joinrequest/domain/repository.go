package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindByID(ctx context.Context, id snowflake.ID) (*JoinRequest, error)
	FindByTeamID(ctx context.Context, teamID snowflake.ID) ([]JoinRequest, error)
	FindByPersonID(ctx context.Context, personID snowflake.ID) ([]JoinRequest, error)
	Find(ctx context.Context, teamID, personID snowflake.ID) (*JoinRequest, error)
	Create(ctx context.Context, request *JoinRequest) error
	Delete(ctx context.Context, id snowflake.ID) error
}
