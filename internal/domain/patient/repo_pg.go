package patient

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carepoint/intake/internal/platform/db"
	"github.com/carepoint/intake/internal/platform/validation"
)

const (
	table = "patients"
	// EmailConstraint is the unique constraint guarding patients.email.
	EmailConstraint = "patients_email_key"
)

var columns = []interface{}{
	"id", "first_name", "last_name", "email", "phone", "date_of_birth", "gender", "address",
	"emergency_contact_name", "emergency_contact_phone", "emergency_contact_relationship",
	"created_at", "updated_at",
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier { return db.Conn(ctx, r.pool) }

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.DateOfBirth, &p.Gender, &p.Address,
		&p.EmergencyContact.Name, &p.EmergencyContact.Phone, &p.EmergencyContact.Relationship,
		&p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func record(p *Patient) goqu.Record {
	return goqu.Record{
		"first_name":                     p.FirstName,
		"last_name":                      p.LastName,
		"email":                          p.Email,
		"phone":                          p.Phone,
		"date_of_birth":                  p.DateOfBirth.Format(validation.DateLayout),
		"gender":                         p.Gender,
		"address":                        p.Address,
		"emergency_contact_name":         p.EmergencyContact.Name,
		"emergency_contact_phone":        p.EmergencyContact.Phone,
		"emergency_contact_relationship": p.EmergencyContact.Relationship,
	}
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	rec := record(p)
	rec["id"] = p.ID

	query, args, err := db.Insert(table).Rows(rec).Returning("created_at", "updated_at").ToSQL()
	if err != nil {
		return err
	}
	return r.conn(ctx).QueryRow(ctx, query, args...).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	query, args, err := db.From(table).Select(columns...).Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return nil, err
	}
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	rec := record(p)
	rec["updated_at"] = goqu.L("NOW()")

	query, args, err := db.Update(table).Set(rec).Where(goqu.C("id").Eq(p.ID)).Returning("updated_at").ToSQL()
	if err != nil {
		return err
	}
	err = r.conn(ctx).QueryRow(ctx, query, args...).Scan(&p.UpdatedAt)
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

func (r *repoPG) List(ctx context.Context) ([]*Patient, error) {
	query, args, err := db.From(table).Select(columns...).
		Order(goqu.C("last_name").Asc(), goqu.C("first_name").Asc(), goqu.C("id").Asc()).ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *repoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query, args, err := db.From(table).Select(goqu.L("1")).Where(goqu.C("id").Eq(id)).Limit(1).ToSQL()
	if err != nil {
		return false, err
	}
	var one int
	err = r.conn(ctx).QueryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (r *repoPG) EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	query, args, err := db.From(table).Select(goqu.L("1")).
		Where(goqu.C("email").Eq(email), goqu.C("id").Neq(exclude)).Limit(1).ToSQL()
	if err != nil {
		return false, err
	}
	var one int
	err = r.conn(ctx).QueryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}
