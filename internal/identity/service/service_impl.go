package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/openconext/teams/internal/clock"
	"github.com/openconext/teams/internal/config"
	"github.com/openconext/teams/internal/identity/domain"
	"github.com/openconext/teams/internal/observability/logger"
	"github.com/openconext/teams/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const autocompleteLimit = 10

type service struct {
	db        *gorm.DB
	repo      domain.Repository
	directory domain.MembershipDirectory
	settings  *config.SettingsHolder
	clock     clock.Clock
	genID     *snowflake.Node
}

func NewService(gormDB *gorm.DB, repo domain.Repository, directory domain.MembershipDirectory, settings *config.SettingsHolder, clk clock.Clock, genID *snowflake.Node) domain.Service {
	return &service{
		db:        gormDB,
		repo:      repo,
		directory: directory,
		settings:  settings,
		clock:     clk,
		genID:     genID,
	}
}

func (s *service) Provision(ctx context.Context, attrs domain.Attributes) (*domain.Person, error) {
	if err := validateAttributes(attrs); err != nil {
		return nil, err
	}

	settings := s.settings.Current()

	// A person is a non-guest only when the asserted group token matches the
	// configured value exactly.
	guest := attrs.MemberOf != settings.NonGuestsMemberOf

	person, err := s.upsert(ctx, attrs, guest)
	if err != nil {
		return nil, err
	}

	superAdmin, err := s.isSuperAdmin(ctx, person.URN, settings.SuperAdminsTeamURNs)
	if err != nil {
		return nil, err
	}
	person.SuperAdmin = superAdmin

	logger.FromContext(ctx).Info("person provisioned",
		zap.String("urn", person.URN),
		zap.Bool("guest", person.Guest),
		zap.Bool("super_admin", person.SuperAdmin),
	)

	return person, nil
}

func (s *service) upsert(ctx context.Context, attrs domain.Attributes, guest bool) (*domain.Person, error) {
	var person *domain.Person

	upsertOnce := func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindByURNIgnoreCase(ctx, attrs.NameID)
		if err != nil && !db.IsNotFoundErr(err) {
			return err
		}

		if existing != nil {
			existing.Name = attrs.Name
			existing.Email = attrs.Email
			existing.Guest = guest
			existing.LastLoginDate = s.clock.Now()
			if err := repo.Update(ctx, existing); err != nil {
				return err
			}
			person = existing
			return nil
		}

		now := s.clock.Now()
		created := &domain.Person{
			ID:            s.genID.Generate(),
			URN:           attrs.NameID,
			Name:          attrs.Name,
			Email:         attrs.Email,
			Guest:         guest,
			LastLoginDate: now,
			CreatedAt:     now,
		}
		if err := repo.Create(ctx, created); err != nil {
			return err
		}
		person = created
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(upsertOnce)
	if db.IsDuplicateKeyErr(err) {
		// Lost the first-login race; the row exists now, so retry as update.
		err = s.db.WithContext(ctx).Transaction(upsertOnce)
	}
	if err != nil {
		return nil, err
	}

	return person, nil
}

// isSuperAdmin elevates a person who holds any non-OWNER membership in one of
// the configured super-admin teams. Note the quirk: elevation follows from
// being a fellow member of such a team, not from matching a listed URN.
func (s *service) isSuperAdmin(ctx context.Context, personURN string, teamURNs []string) (bool, error) {
	for _, teamURN := range teamURNs {
		holds, err := s.directory.HoldsNonOwnerMembership(ctx, teamURN, personURN)
		if err != nil {
			return false, err
		}
		if holds {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) Autocomplete(ctx context.Context, query string) ([]domain.PersonAutocomplete, error) {
	if !s.settings.Current().PersonEmailPicker {
		return []domain.PersonAutocomplete{}, nil
	}

	persons, err := s.repo.Search(ctx, strings.TrimSpace(query), autocompleteLimit)
	if err != nil {
		return nil, err
	}

	results := make([]domain.PersonAutocomplete, 0, len(persons))
	for _, person := range persons {
		results = append(results, domain.PersonAutocomplete{
			Name:  person.Name,
			Email: person.Email,
		})
	}
	return results, nil
}

func validateAttributes(attrs domain.Attributes) error {
	var missing []string
	if strings.TrimSpace(attrs.NameID) == "" {
		missing = append(missing, "name-id")
	}
	if strings.TrimSpace(attrs.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(attrs.Email) == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return &domain.MissingAttributesError{Missing: missing}
	}
	return nil
}
