package integration

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carepoint/intake/internal/domain/appointment"
	"github.com/carepoint/intake/internal/domain/intake"
	"github.com/carepoint/intake/internal/domain/patient"
	"github.com/carepoint/intake/internal/domain/provider"
	"github.com/carepoint/intake/internal/platform/analysis"
	"github.com/carepoint/intake/internal/platform/db"
	"github.com/carepoint/intake/internal/platform/middleware"
	"github.com/carepoint/intake/pkg/client"
)

// Tests run against INTEGRATION_DB_URL when set. With INTEGRATION_DOCKER=1
// a throwaway postgres container is started instead. Otherwise the package
// is skipped.

type testDB struct {
	ConnStr       string
	MigrationsDir string
}

var globalDB *testDB

func TestMain(m *testing.M) {
	ctx := context.Background()

	connStr := os.Getenv("INTEGRATION_DB_URL")
	cleanup := func() {}
	switch {
	case connStr != "":
	case os.Getenv("INTEGRATION_DOCKER") == "1":
		var err error
		connStr, cleanup, err = startPostgresContainer(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start postgres container: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "skipping integration tests: set INTEGRATION_DB_URL or INTEGRATION_DOCKER=1")
		os.Exit(0)
	}

	globalDB = &testDB{ConnStr: connStr, MigrationsDir: findMigrationsDir()}
	code := m.Run()
	cleanup()
	os.Exit(code)
}

// findMigrationsDir locates the migrations directory relative to this file.
func findMigrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

// newSchemaPool creates a fresh schema, returns a pool whose search_path
// points at it, and migrates it. The schema is dropped when t ends.
func newSchemaPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()
	schema := "itest_" + strings.ReplaceAll(uuid.NewString()[:8], "-", "")

	admin, err := pgxpool.New(ctx, globalDB.ConnStr)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := admin.Exec(ctx, "CREATE SCHEMA "+schema); err != nil {
		admin.Close()
		t.Fatalf("create schema %s: %v", schema, err)
	}

	cfg, err := pgxpool.ParseConfig(globalDB.ConnStr)
	if err != nil {
		t.Fatalf("parse conn string: %v", err)
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("connect to schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if _, err := admin.Exec(context.Background(), "DROP SCHEMA IF EXISTS "+schema+" CASCADE"); err != nil {
			t.Logf("warning: failed to drop schema %s: %v", schema, err)
		}
		admin.Close()
	})

	if _, err := db.NewMigrator(pool, globalDB.MigrationsDir).Up(ctx); err != nil {
		t.Fatalf("migrate %s: %v", schema, err)
	}
	return pool
}

// fixedNow keeps appointment scopes stable across runs.
var fixedNow = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }

// newAPI serves the full route set over pool and returns a client for it.
func newAPI(t *testing.T, pool *pgxpool.Pool) *client.Client {
	t.Helper()

	patientRepo := patient.NewRepo(pool)
	providerRepo := provider.NewRepo(pool)
	intakeSvc := intake.NewService(intake.NewRepo(pool), patientRepo, analysis.NewKeywordAnalyzer())
	appointmentSvc := appointment.NewService(appointment.NewRepo(pool), patientRepo, providerRepo, fixedNow)
	patientSvc := patient.NewService(patientRepo, intakeSvc, appointmentSvc, db.NewTxRunner(pool), fixedNow)
	providerSvc := provider.NewService(providerRepo, db.NewTxRunner(pool))

	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler(zerolog.Nop())
	api := e.Group("/api")
	patient.NewHandler(patientSvc).RegisterRoutes(api)
	intake.NewHandler(intakeSvc).RegisterRoutes(api)
	appointment.NewHandler(appointmentSvc).RegisterRoutes(api)
	provider.NewHandler(providerSvc).RegisterRoutes(api)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return client.New(srv.URL+"/api", client.WithHTTPClient(srv.Client()))
}

// seedProviders loads the repository's provider seed file into pool.
func seedProviders(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	entries, err := provider.LoadSeedFile(filepath.Join(filepath.Dir(findMigrationsDir()), "seed", "providers.yaml"))
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	svc := provider.NewService(provider.NewRepo(pool), db.NewTxRunner(pool))
	if _, err := svc.Seed(context.Background(), entries); err != nil {
		t.Fatalf("seed providers: %v", err)
	}
}

func samplePatient(email string) client.Patient {
	return client.Patient{
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       email,
		Phone:       "555-0100",
		DateOfBirth: "1990-05-15",
		Gender:      "female",
		Address:     "1 Main St",
		EmergencyContact: client.EmergencyContact{
			Name:         "John Doe",
			Phone:        "555-0199",
			Relationship: "spouse",
		},
	}
}

func ptrStr(s string) *string { return &s }
