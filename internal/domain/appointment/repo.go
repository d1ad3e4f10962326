package appointment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	// GetByID returns the appointment with its patient and provider.
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns appointments with patient and provider, latest date
	// and time first.
	List(ctx context.Context, f Filter) ([]*Appointment, error)
	// ListByPatient returns a patient's appointments with their provider.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
	ListByPatients(ctx context.Context, patientIDs []uuid.UUID) (map[uuid.UUID][]*Appointment, error)
}
