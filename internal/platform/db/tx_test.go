package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestNoTx_RunsFn(t *testing.T) {
	called := false
	err := NoTx{}.WithTx(context.Background(), func(ctx context.Context) error {
		called = true
		if TxFromContext(ctx) != nil {
			t.Error("expected no tx in context")
		}
		return nil
	})
	if err != nil || !called {
		t.Fatalf("expected fn to run without error, called=%v err=%v", called, err)
	}
}

func TestNoTx_PropagatesError(t *testing.T) {
	want := errors.New("boom")
	if err := (NoTx{}).WithTx(context.Background(), func(context.Context) error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "patients_email_key"}
	wrapped := fmt.Errorf("insert patient: %w", pgErr)

	if !IsUniqueViolation(wrapped, "patients_email_key") {
		t.Error("expected wrapped unique violation to match constraint")
	}
	if !IsUniqueViolation(wrapped, "") {
		t.Error("expected empty constraint to match any unique violation")
	}
	if IsUniqueViolation(wrapped, "other_key") {
		t.Error("expected mismatched constraint not to match")
	}
	if IsUniqueViolation(errors.New("plain"), "") {
		t.Error("expected plain error not to match")
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	if !IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("expected FK violation")
	}
	if IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}) {
		t.Error("unique violation is not an FK violation")
	}
}

func TestBuilders_EmitPlaceholders(t *testing.T) {
	sql, args, err := Update("patients").
		Set(goqu.Record{"email": "new@example.com"}).
		Where(goqu.C("id").Eq("abc")).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL: %v", err)
	}
	if !strings.Contains(sql, "$1") || !strings.Contains(sql, "$2") {
		t.Errorf("expected positional placeholders, got %s", sql)
	}
	if len(args) != 2 {
		t.Errorf("expected 2 args, got %v", args)
	}

	sql, _, err = From("intake_forms").Order(goqu.C("created_at").Desc()).ToSQL()
	if err != nil {
		t.Fatalf("ToSQL: %v", err)
	}
	if !strings.Contains(sql, `ORDER BY "created_at" DESC`) {
		t.Errorf("expected descending order clause, got %s", sql)
	}
}

func TestNullable(t *testing.T) {
	if Nullable(nil) != nil {
		t.Error("expected nil for nil pointer")
	}
	s := "note"
	if Nullable(&s) != "note" {
		t.Error("expected dereferenced value")
	}
}
