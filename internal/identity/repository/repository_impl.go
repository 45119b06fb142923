package repository

import (
	"context"

	"github.com/openconext/teams/internal/identity/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) FindByURNIgnoreCase(ctx context.Context, urn string) (*domain.Person, error) {
	var person domain.Person
	err := r.db.WithContext(ctx).
		Where("LOWER(urn) = LOWER(?)", urn).
		First(&person).Error
	if err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *repository) Create(ctx context.Context, person *domain.Person) error {
	return r.db.WithContext(ctx).Create(person).Error
}

func (r *repository) Update(ctx context.Context, person *domain.Person) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE persons SET name = ?, email = ?, guest = ?, last_login_date = ? WHERE id = ?`,
		person.Name,
		person.Email,
		person.Guest,
		person.LastLoginDate,
		person.ID,
	).Error
}

func (r *repository) Search(ctx context.Context, query string, limit int) ([]domain.Person, error) {
	var persons []domain.Person
	like := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", like, like).
		Order("name ASC").
		Limit(limit).
		Find(&persons).Error
	if err != nil {
		return nil, err
	}
	return persons, nil
}
