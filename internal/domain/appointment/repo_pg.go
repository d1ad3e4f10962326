package appointment

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carepoint/intake/internal/platform/db"
	"github.com/carepoint/intake/internal/platform/validation"
)

const table = "appointments"

var joinedColumns = []interface{}{
	goqu.I("a.id"), goqu.I("a.patient_id"), goqu.I("a.provider_id"),
	goqu.I("a.appointment_date"), goqu.I("a.appointment_time"), goqu.I("a.type"),
	goqu.I("a.status"), goqu.I("a.notes"), goqu.I("a.created_at"), goqu.I("a.updated_at"),
	goqu.I("p.first_name"), goqu.I("p.last_name"), goqu.I("p.email"), goqu.I("p.phone"),
	goqu.I("pr.name"), goqu.I("pr.specialty"), goqu.I("pr.email"), goqu.I("pr.phone"),
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier { return db.Conn(ctx, r.pool) }

func scanJoined(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var p PatientSummary
	var pr ProviderSummary
	err := row.Scan(&a.ID, &a.PatientID, &a.ProviderID,
		&a.AppointmentDate, &a.AppointmentTime, &a.Type,
		&a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
		&p.FirstName, &p.LastName, &p.Email, &p.Phone,
		&pr.Name, &pr.Specialty, &pr.Email, &pr.Phone)
	if err != nil {
		return nil, err
	}
	p.ID = a.PatientID
	p.FullName = p.FirstName + " " + p.LastName
	pr.ID = a.ProviderID
	a.Patient = &p
	a.Provider = &pr
	return &a, nil
}

func selectJoined() *goqu.SelectDataset {
	return db.From(goqu.T(table).As("a")).
		Join(goqu.T("patients").As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("a.patient_id")))).
		Join(goqu.T("providers").As("pr"), goqu.On(goqu.I("pr.id").Eq(goqu.I("a.provider_id")))).
		Select(joinedColumns...)
}

func record(a *Appointment) goqu.Record {
	return goqu.Record{
		"patient_id":       a.PatientID,
		"provider_id":      a.ProviderID,
		"appointment_date": a.AppointmentDate.Format(validation.DateLayout),
		"appointment_time": a.AppointmentTime,
		"type":             a.Type,
		"status":           a.Status,
		"notes":            db.Nullable(a.Notes),
	}
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	rec := record(a)
	rec["id"] = a.ID

	query, args, err := db.Insert(table).Rows(rec).Returning("created_at", "updated_at").ToSQL()
	if err != nil {
		return err
	}
	return r.conn(ctx).QueryRow(ctx, query, args...).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	query, args, err := selectJoined().Where(goqu.I("a.id").Eq(id)).ToSQL()
	if err != nil {
		return nil, err
	}
	a, err := scanJoined(r.conn(ctx).QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	rec := record(a)
	rec["updated_at"] = goqu.L("NOW()")

	query, args, err := db.Update(table).Set(rec).Where(goqu.C("id").Eq(a.ID)).Returning("updated_at").ToSQL()
	if err != nil {
		return err
	}
	err = r.conn(ctx).QueryRow(ctx, query, args...).Scan(&a.UpdatedAt)
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

// listQuery orders by date then time, latest first.
func listQuery(where ...exp.Expression) (string, []interface{}, error) {
	return selectJoined().Where(where...).
		Order(goqu.I("a.appointment_date").Desc(), goqu.I("a.appointment_time").Desc(), goqu.I("a.id").Asc()).
		ToSQL()
}

func (r *repoPG) query(ctx context.Context, where ...exp.Expression) ([]*Appointment, error) {
	query, args, err := listQuery(where...)
	if err != nil {
		return nil, err
	}
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Appointment{}
	for rows.Next() {
		a, err := scanJoined(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// filterExpressions translates a Filter into WHERE conditions.
func filterExpressions(f Filter) []exp.Expression {
	var where []exp.Expression
	switch f.Scope {
	case ScopeUpcoming:
		where = append(where,
			goqu.I("a.appointment_date").Gte(f.Today.UTC().Format(validation.DateLayout)),
			goqu.I("a.status").In(StatusScheduled, StatusConfirmed),
		)
	case ScopeCompleted:
		where = append(where, goqu.I("a.status").Eq(StatusCompleted))
	}
	if f.Status != "" {
		where = append(where, goqu.I("a.status").Eq(f.Status))
	}
	return where
}

func (r *repoPG) List(ctx context.Context, f Filter) ([]*Appointment, error) {
	return r.query(ctx, filterExpressions(f)...)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	items, err := r.query(ctx, goqu.I("a.patient_id").Eq(patientID))
	if err != nil {
		return nil, err
	}
	for _, a := range items {
		a.Patient = nil
	}
	return items, nil
}

func (r *repoPG) ListByPatients(ctx context.Context, patientIDs []uuid.UUID) (map[uuid.UUID][]*Appointment, error) {
	out := make(map[uuid.UUID][]*Appointment, len(patientIDs))
	if len(patientIDs) == 0 {
		return out, nil
	}
	ids := make([]string, len(patientIDs))
	for i, id := range patientIDs {
		ids[i] = id.String()
	}
	items, err := r.query(ctx, goqu.I("a.patient_id").In(ids))
	if err != nil {
		return nil, err
	}
	for _, a := range items {
		a.Patient = nil
		out[a.PatientID] = append(out[a.PatientID], a)
	}
	return out, nil
}
