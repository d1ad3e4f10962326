package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carepoint/intake/internal/platform/db"
)

const table = "intake_forms"

var columns = []interface{}{
	"id", "patient_id", "chief_complaint", "current_medications", "allergies",
	"medical_history", "social_history", "family_history", "review_of_systems",
	"vital_signs", "processed", "ai_summary", "risk_assessment", "created_at", "updated_at",
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier { return db.Conn(ctx, r.pool) }

func scanForm(row pgx.Row) (*Form, error) {
	var f Form
	var vitals []byte
	err := row.Scan(&f.ID, &f.PatientID, &f.ChiefComplaint, &f.CurrentMedications, &f.Allergies,
		&f.MedicalHistory, &f.SocialHistory, &f.FamilyHistory, &f.ReviewOfSystems,
		&vitals, &f.Processed, &f.AISummary, &f.RiskAssessment, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	f.VitalSigns = VitalSigns{}
	if len(vitals) > 0 {
		if err := json.Unmarshal(vitals, &f.VitalSigns); err != nil {
			return nil, fmt.Errorf("decode vital_signs: %w", err)
		}
	}
	return &f, nil
}

// vitalsValue encodes vital signs for the jsonb column. goqu cannot
// render maps, so the value travels as JSON text.
func vitalsValue(v VitalSigns) (string, error) {
	if v == nil {
		v = VitalSigns{}
	}
	b, err := json.Marshal(map[string]string(v))
	return string(b), err
}

func record(f *Form, vitals string) goqu.Record {
	return goqu.Record{
		"patient_id":          f.PatientID,
		"chief_complaint":     f.ChiefComplaint,
		"current_medications": f.CurrentMedications,
		"allergies":           f.Allergies,
		"medical_history":     f.MedicalHistory,
		"social_history":      f.SocialHistory,
		"family_history":      f.FamilyHistory,
		"review_of_systems":   f.ReviewOfSystems,
		"vital_signs":         goqu.L("?::jsonb", vitals),
		"processed":           f.Processed,
		"ai_summary":          db.Nullable(f.AISummary),
		"risk_assessment":     db.Nullable(f.RiskAssessment),
	}
}

func (r *repoPG) Create(ctx context.Context, f *Form) error {
	vitals, err := vitalsValue(f.VitalSigns)
	if err != nil {
		return err
	}
	f.ID = uuid.New()
	rec := record(f, vitals)
	rec["id"] = f.ID

	query, args, err := db.Insert(table).Rows(rec).Returning("created_at", "updated_at").ToSQL()
	if err != nil {
		return err
	}
	return r.conn(ctx).QueryRow(ctx, query, args...).Scan(&f.CreatedAt, &f.UpdatedAt)
}

func selectForms() *goqu.SelectDataset {
	return db.From(table).Select(columns...)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Form, error) {
	query, args, err := selectForms().Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return nil, err
	}
	f, err := scanForm(r.conn(ctx).QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *repoPG) Update(ctx context.Context, f *Form) error {
	vitals, err := vitalsValue(f.VitalSigns)
	if err != nil {
		return err
	}
	rec := record(f, vitals)
	rec["updated_at"] = goqu.L("NOW()")

	query, args, err := db.Update(table).Set(rec).Where(goqu.C("id").Eq(f.ID)).Returning("updated_at").ToSQL()
	if err != nil {
		return err
	}
	err = r.conn(ctx).QueryRow(ctx, query, args...).Scan(&f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := db.Delete(table).Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// listQuery orders newest first. The id breaks ties between forms created
// in the same transaction.
func listQuery(where ...exp.Expression) (string, []interface{}, error) {
	return selectForms().Where(where...).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc()).ToSQL()
}

func (r *repoPG) list(ctx context.Context, where ...exp.Expression) ([]*Form, error) {
	query, args, err := listQuery(where...)
	if err != nil {
		return nil, err
	}
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Form{}
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

func (r *repoPG) List(ctx context.Context) ([]*Form, error) {
	return r.list(ctx)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Form, error) {
	return r.list(ctx, goqu.C("patient_id").Eq(patientID))
}

func (r *repoPG) ListByPatients(ctx context.Context, patientIDs []uuid.UUID) (map[uuid.UUID][]*Form, error) {
	out := make(map[uuid.UUID][]*Form, len(patientIDs))
	if len(patientIDs) == 0 {
		return out, nil
	}
	ids := make([]string, len(patientIDs))
	for i, id := range patientIDs {
		ids[i] = id.String()
	}
	items, err := r.list(ctx, goqu.C("patient_id").In(ids))
	if err != nil {
		return nil, err
	}
	for _, f := range items {
		out[f.PatientID] = append(out[f.PatientID], f)
	}
	return out, nil
}

func (r *repoPG) MarkProcessed(ctx context.Context, id uuid.UUID, summary, risk string) (*Form, error) {
	query, args, err := db.Update(table).Set(goqu.Record{
		"processed":       true,
		"ai_summary":      summary,
		"risk_assessment": risk,
		"updated_at":      goqu.L("NOW()"),
	}).Where(goqu.C("id").Eq(id)).Returning(columns...).ToSQL()
	if err != nil {
		return nil, err
	}
	f, err := scanForm(r.conn(ctx).QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}
