package provider

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Upsert inserts p or, when a provider with the same email exists,
	// updates it in place. p.ID is set to the stored id.
	Upsert(ctx context.Context, p *Provider) error
	GetByID(ctx context.Context, id uuid.UUID) (*Provider, error)
	List(ctx context.Context) ([]*Provider, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
