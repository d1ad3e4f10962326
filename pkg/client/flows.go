package client

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// MissingFieldsError lists required fields left blank before any request
// was sent.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func missing(fields ...[2]string) error {
	var out []string
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			out = append(out, f[0])
		}
	}
	if len(out) == 0 {
		return nil
	}
	return &MissingFieldsError{Fields: out}
}

// Registration is the result of RegisterWithIntake. Fields are set for
// every step that succeeded.
type Registration struct {
	Patient *Patient    `json:"patient,omitempty"`
	Form    *IntakeForm `json:"intakeForm,omitempty"`
	// Processed is the form after analysis.
	Processed *IntakeForm `json:"processed,omitempty"`
}

// RegisterWithIntake creates the patient, submits the intake form for the
// new patient and runs analysis on it. It stops at the first failing step
// and returns what was created so far along with the error.
func (c *Client) RegisterWithIntake(ctx context.Context, p Patient, form IntakeForm) (*Registration, error) {
	if err := missing(
		[2]string{"firstName", p.FirstName},
		[2]string{"lastName", p.LastName},
		[2]string{"email", p.Email},
		[2]string{"phone", p.Phone},
		[2]string{"dateOfBirth", p.DateOfBirth},
		[2]string{"gender", p.Gender},
		[2]string{"address", p.Address},
		[2]string{"emergencyContact.name", p.EmergencyContact.Name},
		[2]string{"emergencyContact.phone", p.EmergencyContact.Phone},
		[2]string{"emergencyContact.relationship", p.EmergencyContact.Relationship},
		[2]string{"chiefComplaint", form.ChiefComplaint},
	); err != nil {
		return nil, err
	}

	reg := &Registration{}
	created, err := c.CreatePatient(ctx, p)
	if err != nil {
		return reg, fmt.Errorf("create patient: %w", err)
	}
	reg.Patient = created

	form.PatientID = created.ID
	submitted, err := c.SubmitIntakeForm(ctx, form)
	if err != nil {
		return reg, fmt.Errorf("submit intake form: %w", err)
	}
	reg.Form = submitted

	processed, err := c.ProcessIntakeForm(ctx, submitted.ID)
	if err != nil {
		return reg, fmt.Errorf("process intake form: %w", err)
	}
	reg.Processed = processed
	return reg, nil
}

// BookAppointment checks the required fields and creates the appointment.
// The server defaults the status to scheduled.
func (c *Client) BookAppointment(ctx context.Context, a Appointment) (*Appointment, error) {
	if err := missing(
		[2]string{"patientId", a.PatientID},
		[2]string{"providerId", a.ProviderID},
		[2]string{"appointmentDate", a.AppointmentDate},
		[2]string{"appointmentTime", a.AppointmentTime},
		[2]string{"type", a.Type},
	); err != nil {
		return nil, err
	}
	return c.CreateAppointment(ctx, a)
}

// DashboardCounts summarises a Dashboard.
type DashboardCounts struct {
	Patients     int `json:"patients"`
	Upcoming     int `json:"upcoming"`
	Completed    int `json:"completed"`
	PendingForms int `json:"pendingForms"`
}

// Dashboard is the union of the three dashboard reads. Patient is set for
// a single-patient dashboard, Patients otherwise. Demo marks sample data.
type Dashboard struct {
	Patient      *Patient        `json:"patient,omitempty"`
	Patients     []Patient       `json:"patients,omitempty"`
	Appointments []Appointment   `json:"appointments"`
	IntakeForms  []IntakeForm    `json:"intakeForms"`
	Counts       DashboardCounts `json:"counts"`
	Demo         bool            `json:"demo"`
	// Warning carries the read error that demo data replaced.
	Warning string `json:"warning,omitempty"`
}

// Dashboard issues its three reads concurrently. With a patientID it reads
// that patient, their appointments and their intake forms; without one it
// reads every patient, appointment and form. Any failed read fails the
// dashboard unless DemoMode is on, in which case sample data marked Demo
// is returned instead.
func (c *Client) Dashboard(ctx context.Context, patientID string) (*Dashboard, error) {
	d, err := c.loadDashboard(ctx, patientID)
	if err != nil {
		if !c.DemoMode {
			return nil, err
		}
		demo := sampleDashboard(c.now())
		demo.Warning = err.Error()
		return demo, nil
	}
	return d, nil
}

func (c *Client) loadDashboard(ctx context.Context, patientID string) (*Dashboard, error) {
	d := &Dashboard{}
	g, ctx := errgroup.WithContext(ctx)

	if patientID == "" {
		g.Go(func() error {
			items, err := c.ListPatients(ctx)
			d.Patients = items
			return err
		})
		g.Go(func() error {
			items, err := c.ListAppointments(ctx, "", "")
			d.Appointments = items
			return err
		})
		g.Go(func() error {
			items, err := c.ListIntakeForms(ctx)
			d.IntakeForms = items
			return err
		})
	} else {
		g.Go(func() error {
			p, err := c.GetPatient(ctx, patientID)
			d.Patient = p
			return err
		})
		g.Go(func() error {
			items, err := c.PatientAppointments(ctx, patientID)
			d.Appointments = items
			return err
		})
		g.Go(func() error {
			items, err := c.PatientIntakeForms(ctx, patientID)
			d.IntakeForms = items
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}
	if d.Patient != nil {
		d.Patient.IntakeForms = nil
		d.Patient.Appointments = nil
	}
	d.Counts = c.count(d)
	return d, nil
}

func (c *Client) count(d *Dashboard) DashboardCounts {
	today := c.now().UTC().Format("2006-01-02")
	counts := DashboardCounts{Patients: len(d.Patients)}
	if d.Patient != nil {
		counts.Patients = 1
	}
	for _, a := range d.Appointments {
		switch {
		case a.Status == "completed":
			counts.Completed++
		case (a.Status == "scheduled" || a.Status == "confirmed") && a.AppointmentDate >= today:
			counts.Upcoming++
		}
	}
	for _, f := range d.IntakeForms {
		if !f.Processed {
			counts.PendingForms++
		}
	}
	return counts
}
