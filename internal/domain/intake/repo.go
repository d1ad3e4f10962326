package intake

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, f *Form) error
	GetByID(ctx context.Context, id uuid.UUID) (*Form, error)
	Update(ctx context.Context, f *Form) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns every form, newest first.
	List(ctx context.Context) ([]*Form, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Form, error)
	// ListByPatients groups the forms of several patients by patient id.
	ListByPatients(ctx context.Context, patientIDs []uuid.UUID) (map[uuid.UUID][]*Form, error)
	// MarkProcessed stores an analysis result and sets processed in a
	// single statement, returning the updated form.
	MarkProcessed(ctx context.Context, id uuid.UUID, summary, risk string) (*Form, error)
}
