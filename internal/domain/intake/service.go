package intake

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carepoint/intake/internal/platform/analysis"
	"github.com/carepoint/intake/internal/platform/apperr"
	"github.com/carepoint/intake/internal/platform/db"
	"github.com/carepoint/intake/internal/platform/telemetry"
	"github.com/carepoint/intake/internal/platform/validation"
)

// PatientChecker reports whether a patient exists.
type PatientChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

const maxVitalLength = 255

// patientGone reports a patient deleted after validation as a patientId
// field error.
func patientGone(err error) error {
	if !db.IsForeignKeyViolation(err) {
		return err
	}
	v := validation.New(validation.Sometimes)
	v.Add("patientId", validation.Invalid("patientId"))
	return v.Err()
}

type Service struct {
	repo     Repository
	patients PatientChecker
	analyzer analysis.Analyzer
}

func NewService(repo Repository, patients PatientChecker, analyzer analysis.Analyzer) *Service {
	return &Service{repo: repo, patients: patients, analyzer: analyzer}
}

func (s *Service) validate(ctx context.Context, in *Input, mode validation.Mode) error {
	v := validation.New(mode)
	v.Field("patientId", in.PatientID, validation.UUID())
	v.Field("chiefComplaint", in.ChiefComplaint)
	v.Optional("currentMedications", in.CurrentMedications)
	v.Optional("allergies", in.Allergies)
	v.Optional("medicalHistory", in.MedicalHistory)
	v.Optional("socialHistory", in.SocialHistory)
	v.Optional("familyHistory", in.FamilyHistory)
	v.Optional("reviewOfSystems", in.ReviewOfSystems)

	keys := make([]string, 0, len(in.VitalSigns))
	for k := range in.VitalSigns {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		val := in.VitalSigns[k]
		v.Optional("vitalSigns."+k, &val, validation.MaxLen(maxVitalLength))
	}

	if in.PatientID != nil && !v.Has("patientId") {
		ok, err := s.patients.Exists(ctx, uuid.MustParse(*in.PatientID))
		if err != nil {
			return err
		}
		if !ok {
			v.Add("patientId", validation.Invalid("patientId"))
		}
	}
	return v.Err()
}

func (s *Service) Create(ctx context.Context, in Input) (*Form, error) {
	ctx, span := telemetry.StartSpan(ctx, "intake.Create")
	defer span.End()

	if err := s.validate(ctx, &in, validation.Required); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	f := &Form{VitalSigns: VitalSigns{}}
	in.apply(f)
	if err := s.repo.Create(ctx, f); err != nil {
		telemetry.RecordError(span, err)
		return nil, patientGone(err)
	}
	span.SetAttributes(attribute.String("intake.form_id", f.ID.String()))
	return f, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Form, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Form, error) {
	return s.repo.List(ctx)
}

// ListByPatient does not check that the patient exists; callers that need
// a 404 for a missing patient check first.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Form, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) ListByPatients(ctx context.Context, patientIDs []uuid.UUID) (map[uuid.UUID][]*Form, error) {
	return s.repo.ListByPatients(ctx, patientIDs)
}

// Update applies the supplied fields only. The form must exist before the
// body is validated, so a missing form is a 404 even for an invalid body.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Form, error) {
	ctx, span := telemetry.StartSpan(ctx, "intake.Update", attribute.String("intake.form_id", id.String()))
	defer span.End()

	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &in, validation.Sometimes); err != nil {
		return nil, err
	}
	in.apply(f)
	if err := s.repo.Update(ctx, f); err != nil {
		telemetry.RecordError(span, err)
		return nil, patientGone(err)
	}
	return f, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Process runs the analyzer over the form and stores the result. Running
// it again overwrites the previous summary and risk assessment. When the
// analyzer fails the form is left unchanged.
func (s *Service) Process(ctx context.Context, id uuid.UUID) (*Form, error) {
	ctx, span := telemetry.StartSpan(ctx, "intake.Process", attribute.String("intake.form_id", id.String()))
	defer span.End()

	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := s.analyzer.Analyze(ctx, f.AnalysisInput())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, apperr.Unavailable("Analysis service unavailable", err)
	}
	span.SetAttributes(attribute.String("intake.risk_level", res.RiskLevel))

	risk := res.RiskAssessment
	if risk == "" {
		risk = analysis.FormatRisk(res.RiskLevel, res.Suggestions)
	}
	out, err := s.repo.MarkProcessed(ctx, id, res.Summary, risk)
	telemetry.RecordError(span, err)
	return out, err
}
