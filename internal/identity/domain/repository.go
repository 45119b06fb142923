package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByURNIgnoreCase(ctx context.Context, urn string) (*Person, error)
	Create(ctx context.Context, person *Person) error
	Update(ctx context.Context, person *Person) error
	Search(ctx context.Context, query string, limit int) ([]Person, error)
}
