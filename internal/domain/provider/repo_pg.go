package provider

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carepoint/intake/internal/platform/db"
)

const table = "providers"

var columns = []interface{}{
	"id", "name", "specialty", "email", "phone", "availability", "created_at", "updated_at",
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier { return db.Conn(ctx, r.pool) }

func scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider
	err := row.Scan(&p.ID, &p.Name, &p.Specialty, &p.Email, &p.Phone, &p.Availability, &p.CreatedAt, &p.UpdatedAt)
	if p.Availability == nil {
		p.Availability = []string{}
	}
	return &p, err
}

// Upsert is written by hand: goqu expands slices into value lists, which
// does not fit the TEXT[] availability column.
func (r *repoPG) Upsert(ctx context.Context, p *Provider) error {
	if p.Availability == nil {
		p.Availability = []string{}
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO providers (id, name, specialty, email, phone, availability)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT providers_email_key DO UPDATE SET
			name = EXCLUDED.name,
			specialty = EXCLUDED.specialty,
			phone = EXCLUDED.phone,
			availability = EXCLUDED.availability,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		uuid.New(), p.Name, p.Specialty, p.Email, p.Phone, p.Availability,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	query, args, err := db.From(table).Select(columns...).Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return nil, err
	}
	p, err := scanProvider(r.conn(ctx).QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repoPG) List(ctx context.Context) ([]*Provider, error) {
	query, args, err := db.From(table).Select(columns...).Order(goqu.C("name").Asc(), goqu.C("id").Asc()).ToSQL()
	if err != nil {
		return nil, err
	}
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Provider{}
	for rows.Next() {
		p, err := scanProvider(rows)
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
