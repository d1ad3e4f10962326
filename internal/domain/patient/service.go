package patient

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carepoint/intake/internal/domain/appointment"
	"github.com/carepoint/intake/internal/domain/intake"
	"github.com/carepoint/intake/internal/platform/db"
	"github.com/carepoint/intake/internal/platform/telemetry"
	"github.com/carepoint/intake/internal/platform/validation"
)

// FormLister loads intake forms for patients, newest first.
type FormLister interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*intake.Form, error)
	ListByPatients(ctx context.Context, patientIDs []uuid.UUID) (map[uuid.UUID][]*intake.Form, error)
}

// AppointmentLister loads appointments for patients, latest date first.
type AppointmentLister interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error)
	ListByPatients(ctx context.Context, patientIDs []uuid.UUID) (map[uuid.UUID][]*appointment.Appointment, error)
}

const (
	maxNameLength  = 255
	maxPhoneLength = 20
)

type Service struct {
	repo         Repository
	forms        FormLister
	appointments AppointmentLister
	tx           db.TxRunner
	now          func() time.Time
}

// NewService builds a Service. now defaults to time.Now and bounds the
// date of birth.
func NewService(repo Repository, forms FormLister, appointments AppointmentLister, tx db.TxRunner, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, forms: forms, appointments: appointments, tx: tx, now: now}
}

func (s *Service) validate(ctx context.Context, in *Input, mode validation.Mode, self uuid.UUID) error {
	v := validation.New(mode)
	v.Field("firstName", in.FirstName, validation.MaxLen(maxNameLength))
	v.Field("lastName", in.LastName, validation.MaxLen(maxNameLength))
	v.Field("email", in.Email, validation.MaxLen(maxNameLength), validation.Email())
	v.Field("phone", in.Phone, validation.MaxLen(maxPhoneLength))
	v.Field("dateOfBirth", in.DateOfBirth, validation.Date(), validation.BeforeOrEqual(s.now))
	v.Field("gender", in.Gender, validation.In(Genders...))
	v.Field("address", in.Address)

	ec := in.contact()
	v.Field("emergencyContact.name", ec.Name, validation.MaxLen(maxNameLength))
	v.Field("emergencyContact.phone", ec.Phone, validation.MaxLen(maxPhoneLength))
	v.Field("emergencyContact.relationship", ec.Relationship, validation.MaxLen(maxNameLength))

	if in.Email != nil && !v.Has("email") {
		taken, err := s.repo.EmailTaken(ctx, *in.Email, self)
		if err != nil {
			return err
		}
		if taken {
			v.Add("email", validation.Taken("email"))
		}
	}
	return v.Err()
}

// emailConflict turns a unique violation that raced past the pre-check
// into the same validation error the pre-check reports.
func emailConflict(err error) error {
	if db.IsUniqueViolation(err, EmailConstraint) {
		return validation.Errors{"email": {validation.Taken("email")}}
	}
	return err
}

func (s *Service) Create(ctx context.Context, in Input) (*Patient, error) {
	ctx, span := telemetry.StartSpan(ctx, "patient.Create")
	defer span.End()

	p := &Patient{}
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.validate(ctx, &in, validation.Required, uuid.Nil); err != nil {
			return err
		}
		in.apply(p)
		return emailConflict(s.repo.Create(ctx, p))
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("patient.id", p.ID.String()))
	return p, nil
}

// Get returns the patient with intake forms and appointments loaded.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	ctx, span := telemetry.StartSpan(ctx, "patient.Get", attribute.String("patient.id", id.String()))
	defer span.End()

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.loadRelations(ctx, []*Patient{p}); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return p, nil
}

// List returns every patient with intake forms and appointments loaded.
func (s *Service) List(ctx context.Context) ([]*Patient, error) {
	ctx, span := telemetry.StartSpan(ctx, "patient.List")
	defer span.End()

	items, err := s.repo.List(ctx)
	if err == nil {
		err = s.loadRelations(ctx, items)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("patient.count", len(items)))
	return items, nil
}

func (s *Service) loadRelations(ctx context.Context, items []*Patient) error {
	ids := make([]uuid.UUID, len(items))
	for i, p := range items {
		ids[i] = p.ID
	}
	forms, err := s.forms.ListByPatients(ctx, ids)
	if err != nil {
		return err
	}
	appts, err := s.appointments.ListByPatients(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range items {
		p.IntakeForms = forms[p.ID]
		if p.IntakeForms == nil {
			p.IntakeForms = []*intake.Form{}
		}
		p.Appointments = appts[p.ID]
		if p.Appointments == nil {
			p.Appointments = []*appointment.Appointment{}
		}
	}
	return nil
}

// Update changes only the supplied fields. Email uniqueness ignores the
// patient's own record.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Patient, error) {
	ctx, span := telemetry.StartSpan(ctx, "patient.Update", attribute.String("patient.id", id.String()))
	defer span.End()

	var p *Patient
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.validate(ctx, &in, validation.Sometimes, id); err != nil {
			return err
		}
		in.apply(p)
		return emailConflict(s.repo.Update(ctx, p))
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return p, nil
}

// Delete removes the patient; their intake forms and appointments go with
// them.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) requireExists(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// IntakeForms lists the patient's forms, newest first.
func (s *Service) IntakeForms(ctx context.Context, id uuid.UUID) ([]*intake.Form, error) {
	if err := s.requireExists(ctx, id); err != nil {
		return nil, err
	}
	return s.forms.ListByPatient(ctx, id)
}

// Appointments lists the patient's appointments with their provider,
// latest date first.
func (s *Service) Appointments(ctx context.Context, id uuid.UUID) ([]*appointment.Appointment, error) {
	if err := s.requireExists(ctx, id); err != nil {
		return nil, err
	}
	return s.appointments.ListByPatient(ctx, id)
}
