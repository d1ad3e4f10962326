package appointment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carepoint/intake/internal/platform/db"
	"github.com/carepoint/intake/internal/platform/telemetry"
	"github.com/carepoint/intake/internal/platform/validation"
)

// ExistenceChecker reports whether a referenced record exists.
type ExistenceChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

const maxNotesLength = 1000

type Service struct {
	repo      Repository
	patients  ExistenceChecker
	providers ExistenceChecker
	now       func() time.Time
}

// NewService builds a Service. now defaults to time.Now and decides what
// "today" means for the upcoming scope.
func NewService(repo Repository, patients, providers ExistenceChecker, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, patients: patients, providers: providers, now: now}
}

func (s *Service) today() time.Time { return s.now().UTC() }

func (s *Service) validate(ctx context.Context, in *Input, mode validation.Mode) (*validation.Validator, error) {
	v := validation.New(mode)
	v.Field("patientId", in.PatientID, validation.UUID())
	v.Field("providerId", in.ProviderID, validation.UUID())
	v.Field("appointmentDate", in.AppointmentDate, validation.Date())
	v.Field("appointmentTime", in.AppointmentTime, validation.Time())
	v.Field("type", in.Type, validation.In(Types...))
	v.Optional("status", in.Status, validation.In(Statuses...))
	v.Optional("notes", in.Notes, validation.MaxLen(maxNotesLength))

	refs := []struct {
		field string
		value *string
		check ExistenceChecker
	}{
		{"patientId", in.PatientID, s.patients},
		{"providerId", in.ProviderID, s.providers},
	}
	for _, ref := range refs {
		if ref.value == nil || v.Has(ref.field) {
			continue
		}
		ok, err := ref.check.Exists(ctx, uuid.MustParse(*ref.value))
		if err != nil {
			return nil, err
		}
		if !ok {
			v.Add(ref.field, validation.Invalid(ref.field))
		}
	}
	return v, nil
}

// referenceGone turns a foreign-key violation, raised when the patient or
// provider is deleted between validation and the write, into a field error.
func referenceGone(err error) error {
	var pgErr *pgconn.PgError
	if !db.IsForeignKeyViolation(err) || !errors.As(err, &pgErr) {
		return err
	}
	field := "patientId"
	if strings.Contains(pgErr.ConstraintName, "provider") {
		field = "providerId"
	}
	v := validation.New(validation.Sometimes)
	v.Add(field, validation.Invalid(field))
	return v.Err()
}

func (s *Service) Create(ctx context.Context, in Input) (*Appointment, error) {
	ctx, span := telemetry.StartSpan(ctx, "appointment.Create")
	defer span.End()

	v, err := s.validate(ctx, &in, validation.Required)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	a := &Appointment{Status: StatusScheduled}
	in.apply(a)
	if err := s.repo.Create(ctx, a); err != nil {
		telemetry.RecordError(span, err)
		return nil, referenceGone(err)
	}
	span.SetAttributes(attribute.String("appointment.id", a.ID.String()))
	return s.repo.GetByID(ctx, a.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns appointments in the given scope, optionally narrowed to one
// status. An unknown scope or status is a validation error.
func (s *Service) List(ctx context.Context, scope, status string) ([]*Appointment, error) {
	ctx, span := telemetry.StartSpan(ctx, "appointment.List",
		attribute.String("appointment.scope", scope),
		attribute.String("appointment.status", status))
	defer span.End()

	v := validation.New(validation.Sometimes)
	v.Optional("scope", &scope, validation.In(string(ScopeUpcoming), string(ScopeCompleted)))
	v.Optional("status", &status, validation.In(Statuses...))
	if err := v.Err(); err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx, Filter{Scope: Scope(scope), Status: status, Today: s.today()})
	telemetry.RecordError(span, err)
	return items, err
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) ListByPatients(ctx context.Context, patientIDs []uuid.UUID) (map[uuid.UUID][]*Appointment, error) {
	return s.repo.ListByPatients(ctx, patientIDs)
}

// Update applies the supplied fields. A status change must follow the
// allowed transitions; cancelled and completed appointments keep their
// status.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Appointment, error) {
	ctx, span := telemetry.StartSpan(ctx, "appointment.Update", attribute.String("appointment.id", id.String()))
	defer span.End()

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v, err := s.validate(ctx, &in, validation.Sometimes)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if in.statusGiven() && !v.Has("status") && !CanTransition(a.Status, *in.Status) {
		v.Add("status", "The status cannot change from "+a.Status+" to "+*in.Status+".")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	in.apply(a)
	if err := s.repo.Update(ctx, a); err != nil {
		telemetry.RecordError(span, err)
		return nil, referenceGone(err)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
