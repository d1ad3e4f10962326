package provider

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/carepoint/intake/internal/platform/db"
	"github.com/carepoint/intake/internal/platform/telemetry"
	"github.com/carepoint/intake/internal/platform/validation"
)

type Service struct {
	repo Repository
	tx   db.TxRunner
}

func NewService(repo Repository, tx db.TxRunner) *Service {
	return &Service{repo: repo, tx: tx}
}

func (s *Service) List(ctx context.Context) ([]*Provider, error) {
	ctx, span := telemetry.StartSpan(ctx, "provider.List")
	defer span.End()

	items, err := s.repo.List(ctx)
	telemetry.RecordError(span, err)
	return items, err
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return s.repo.GetByID(ctx, id)
}

// Seed validates every entry and upserts them all in one transaction.
// Nothing is written if any entry is invalid.
func (s *Service) Seed(ctx context.Context, entries []SeedEntry) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "provider.Seed")
	defer span.End()

	if err := validateSeed(entries); err != nil {
		return 0, err
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		for i, e := range entries {
			p := &Provider{
				Name:         e.Name,
				Specialty:    e.Specialty,
				Email:        e.Email,
				Phone:        e.Phone,
				Availability: e.Availability,
			}
			if err := s.repo.Upsert(ctx, p); err != nil {
				return fmt.Errorf("upsert provider %d (%s): %w", i, e.Email, err)
			}
		}
		return nil
	})
	telemetry.RecordError(span, err)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

func validateSeed(entries []SeedEntry) error {
	v := validation.New(validation.Required)
	seen := make(map[string]int, len(entries))
	for i, e := range entries {
		field := func(name string) string { return fmt.Sprintf("providers.%d.%s", i, name) }

		v.Field(field("name"), &e.Name, validation.MaxLen(255))
		v.Field(field("specialty"), &e.Specialty, validation.MaxLen(255))
		v.Field(field("email"), &e.Email, validation.MaxLen(255), validation.Email())
		v.Optional(field("phone"), &e.Phone, validation.MaxLen(20), validation.Phone())
		for j := range e.Availability {
			v.Field(fmt.Sprintf("providers.%d.availability.%d", i, j), &e.Availability[j], validation.Time())
		}

		if first, dup := seen[e.Email]; dup && e.Email != "" {
			v.Add(field("email"), fmt.Sprintf("The email duplicates providers.%d.email.", first))
		} else {
			seen[e.Email] = i
		}
	}
	return v.Err()
}
