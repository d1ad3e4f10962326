package integration

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/carepoint/intake/internal/platform/db"
	"github.com/carepoint/intake/pkg/client"
)

func TestMigrations_Idempotent(t *testing.T) {
	pool := newSchemaPool(t)
	ctx := context.Background()

	n, err := db.NewMigrator(pool, globalDB.MigrationsDir).Up(ctx)
	if err != nil {
		t.Fatalf("second Up: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no pending migrations, applied %d", n)
	}

	statuses, err := db.NewMigrator(pool, globalDB.MigrationsDir).Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	for _, s := range statuses {
		if !s.Applied {
			t.Errorf("migration %d %s not applied", s.Version, s.Name)
		}
	}
}

func TestPatientLifecycle(t *testing.T) {
	pool := newSchemaPool(t)
	api := newAPI(t, pool)
	ctx := context.Background()

	created, err := api.CreatePatient(ctx, samplePatient("jane@example.com"))
	if err != nil {
		t.Fatalf("CreatePatient: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected id after create")
	}
	if created.FullName != "Jane Doe" {
		t.Errorf("expected fullName Jane Doe, got %q", created.FullName)
	}

	t.Run("DuplicateEmail", func(t *testing.T) {
		_, err := api.CreatePatient(ctx, samplePatient("jane@example.com"))
		var apiErr *client.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.Status != http.StatusUnprocessableEntity {
			t.Errorf("expected 422, got %d", apiErr.Status)
		}
		if len(apiErr.Errors["email"]) == 0 {
			t.Errorf("expected email error, got %v", apiErr.Errors)
		}
	})

	t.Run("Update", func(t *testing.T) {
		updated, err := api.UpdatePatient(ctx, created.ID, map[string]interface{}{"phone": "555-0111"})
		if err != nil {
			t.Fatalf("UpdatePatient: %v", err)
		}
		if updated.Phone != "555-0111" {
			t.Errorf("expected phone 555-0111, got %q", updated.Phone)
		}
		if updated.Email != "jane@example.com" {
			t.Errorf("partial update changed email to %q", updated.Email)
		}
	})

	t.Run("UpdateKeepsOwnEmail", func(t *testing.T) {
		if _, err := api.UpdatePatient(ctx, created.ID, map[string]interface{}{"email": "jane@example.com"}); err != nil {
			t.Fatalf("re-saving own email: %v", err)
		}
	})

	t.Run("GetIncludesRelations", func(t *testing.T) {
		got, err := api.GetPatient(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetPatient: %v", err)
		}
		if got.IntakeForms == nil || got.Appointments == nil {
			t.Errorf("expected empty relation lists, got forms=%v appointments=%v", got.IntakeForms, got.Appointments)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := api.DeletePatient(ctx, created.ID); err != nil {
			t.Fatalf("DeletePatient: %v", err)
		}
		_, err := api.GetPatient(ctx, created.ID)
		if !client.IsNotFound(err) {
			t.Errorf("expected 404 after delete, got %v", err)
		}
	})
}

func TestRegisterAndProcessIntake(t *testing.T) {
	pool := newSchemaPool(t)
	api := newAPI(t, pool)
	ctx := context.Background()

	reg, err := api.RegisterWithIntake(ctx, samplePatient("intake@example.com"), client.IntakeForm{
		ChiefComplaint:     "Severe chest pain and shortness of breath",
		CurrentMedications: "Lisinopril 10mg daily",
		Allergies:          "Penicillin",
		VitalSigns:         map[string]string{"bloodPressure": "150/95", "heartRate": "104"},
	})
	if err != nil {
		t.Fatalf("RegisterWithIntake: %v", err)
	}
	if reg.Form.Processed {
		t.Error("submitted form should start unprocessed")
	}
	if !reg.Processed.Processed {
		t.Fatal("expected processed form")
	}
	if reg.Processed.AISummary == nil || *reg.Processed.AISummary == "" {
		t.Error("expected aiSummary")
	}
	if reg.Processed.RiskAssessment == nil || !strings.Contains(*reg.Processed.RiskAssessment, "High risk") {
		t.Errorf("expected high risk assessment, got %v", reg.Processed.RiskAssessment)
	}
	if reg.Processed.VitalSigns["heartRate"] != "104" {
		t.Errorf("vital signs not stored: %v", reg.Processed.VitalSigns)
	}

	forms, err := api.PatientIntakeForms(ctx, reg.Patient.ID)
	if err != nil {
		t.Fatalf("PatientIntakeForms: %v", err)
	}
	if len(forms) != 1 || forms[0].ID != reg.Form.ID {
		t.Errorf("expected the registered form, got %+v", forms)
	}

	t.Run("UnknownPatient", func(t *testing.T) {
		_, err := api.SubmitIntakeForm(ctx, client.IntakeForm{
			PatientID:      "00000000-0000-4000-8000-000000000000",
			ChiefComplaint: "Cough",
		})
		var apiErr *client.APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %v", err)
		}
		if len(apiErr.Errors["patientId"]) == 0 {
			t.Errorf("expected patientId error, got %v", apiErr.Errors)
		}
	})

	t.Run("DeletingPatientRemovesForms", func(t *testing.T) {
		if err := api.DeletePatient(ctx, reg.Patient.ID); err != nil {
			t.Fatalf("DeletePatient: %v", err)
		}
		_, err := api.GetIntakeForm(ctx, reg.Form.ID)
		if !client.IsNotFound(err) {
			t.Errorf("expected form to be gone, got %v", err)
		}
	})
}

func TestAppointmentsAndDashboard(t *testing.T) {
	pool := newSchemaPool(t)
	seedProviders(t, pool)
	api := newAPI(t, pool)
	ctx := context.Background()

	providers, err := api.ListProviders(ctx)
	if err != nil {
		t.Fatalf("ListProviders: %v", err)
	}
	if len(providers) == 0 {
		t.Fatal("expected seeded providers")
	}
	providerID := providers[0].ID

	p, err := api.CreatePatient(ctx, samplePatient("appt@example.com"))
	if err != nil {
		t.Fatalf("CreatePatient: %v", err)
	}

	upcoming, err := api.BookAppointment(ctx, client.Appointment{
		PatientID:       p.ID,
		ProviderID:      providerID,
		AppointmentDate: "2030-04-01",
		AppointmentTime: "09:30",
		Type:            "consultation",
		Notes:           ptrStr("First visit"),
	})
	if err != nil {
		t.Fatalf("BookAppointment: %v", err)
	}
	if upcoming.Status != "scheduled" {
		t.Errorf("expected default status scheduled, got %q", upcoming.Status)
	}
	if upcoming.Provider == nil || upcoming.Patient == nil {
		t.Fatal("expected joined patient and provider")
	}
	if upcoming.FormattedDateTime != "Apr 01, 2030 at 09:30" {
		t.Errorf("unexpected formattedDateTime %q", upcoming.FormattedDateTime)
	}

	past, err := api.BookAppointment(ctx, client.Appointment{
		PatientID:       p.ID,
		ProviderID:      providerID,
		AppointmentDate: "2026-01-15",
		AppointmentTime: "14:00",
		Type:            "follow-up",
	})
	if err != nil {
		t.Fatalf("BookAppointment past: %v", err)
	}
	if _, err := api.UpdateAppointment(ctx, past.ID, map[string]interface{}{"status": "completed"}); err != nil {
		t.Fatalf("complete appointment: %v", err)
	}

	t.Run("IllegalTransition", func(t *testing.T) {
		_, err := api.UpdateAppointment(ctx, past.ID, map[string]interface{}{"status": "scheduled"})
		var apiErr *client.APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %v", err)
		}
	})

	t.Run("Scopes", func(t *testing.T) {
		up, err := api.ListAppointments(ctx, "upcoming", "")
		if err != nil {
			t.Fatalf("upcoming: %v", err)
		}
		if len(up) != 1 || up[0].ID != upcoming.ID {
			t.Errorf("expected only the upcoming appointment, got %+v", up)
		}
		done, err := api.ListAppointments(ctx, "completed", "")
		if err != nil {
			t.Fatalf("completed: %v", err)
		}
		if len(done) != 1 || done[0].ID != past.ID {
			t.Errorf("expected only the completed appointment, got %+v", done)
		}
	})

	t.Run("ProviderInUse", func(t *testing.T) {
		_, err := pool.Exec(ctx, "DELETE FROM providers WHERE id = $1", providerID)
		if !db.IsForeignKeyViolation(err) {
			t.Errorf("expected foreign key violation, got %v", err)
		}
	})

	t.Run("Dashboard", func(t *testing.T) {
		if _, err := api.SubmitIntakeForm(ctx, client.IntakeForm{PatientID: p.ID, ChiefComplaint: "Mild headache"}); err != nil {
			t.Fatalf("SubmitIntakeForm: %v", err)
		}
		d, err := api.Dashboard(ctx, p.ID)
		if err != nil {
			t.Fatalf("Dashboard: %v", err)
		}
		if d.Demo {
			t.Fatal("dashboard fell back to demo data")
		}
		if d.Counts.Patients != 1 || d.Counts.Upcoming != 1 || d.Counts.Completed != 1 || d.Counts.PendingForms != 1 {
			t.Errorf("unexpected counts %+v", d.Counts)
		}
	})
}
