package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindByID(ctx context.Context, id snowflake.ID) (*Invitation, error)
	FindByHash(ctx context.Context, hash string) (*Invitation, error)
	FindByEmail(ctx context.Context, email string) ([]Invitation, error)
	FindByTeamID(ctx context.Context, teamID snowflake.ID) ([]Invitation, error)
	FindBySender(ctx context.Context, personID snowflake.ID) ([]Invitation, error)
	Create(ctx context.Context, invitation *Invitation) error
	UpdateStatus(ctx context.Context, id snowflake.ID, status Status) error
	ResetExpiry(ctx context.Context, id snowflake.ID, expiresAt time.Time) error
	Delete(ctx context.Context, id snowflake.ID) error
	AddMessage(ctx context.Context, message *InvitationMessage) error
}
