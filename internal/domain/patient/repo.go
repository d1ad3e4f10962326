package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create stores p. A duplicate email surfaces as a unique violation
	// on patients_email_key.
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	// Delete removes the patient together with their intake forms and
	// appointments.
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns patients ordered by last name, then first name.
	List(ctx context.Context) ([]*Patient, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	// EmailTaken reports whether another patient than exclude uses email.
	EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
}
