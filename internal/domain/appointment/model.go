package appointment

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/intake/internal/platform/apperr"
	"github.com/carepoint/intake/internal/platform/validation"
)

// ErrNotFound is returned when no appointment has the requested id.
var ErrNotFound = apperr.NotFound("Appointment")

// Appointment types.
const (
	TypeConsultation = "consultation"
	TypeFollowUp     = "follow-up"
	TypeEmergency    = "emergency"
)

// Appointment statuses.
const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

var (
	Types    = []string{TypeConsultation, TypeFollowUp, TypeEmergency}
	Statuses = []string{StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted}
)

// transitions lists the statuses reachable from each status. Cancelled and
// completed are terminal.
var transitions = map[string][]string{
	StatusScheduled: {StatusConfirmed, StatusCancelled, StatusCompleted},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusScheduled},
}

// CanTransition reports whether an appointment in status from may move to
// status to. Keeping the current status is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// PatientSummary is the patient as embedded in an appointment.
type PatientSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
}

// ProviderSummary is the provider as embedded in an appointment.
type ProviderSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
}

// Appointment maps to the appointments table. Patient and Provider are
// filled by reads that join the related rows.
type Appointment struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	PatientID       uuid.UUID        `db:"patient_id" json:"patientId"`
	ProviderID      uuid.UUID        `db:"provider_id" json:"providerId"`
	AppointmentDate time.Time        `db:"appointment_date" json:"appointmentDate"`
	AppointmentTime string           `db:"appointment_time" json:"appointmentTime"`
	Type            string           `db:"type" json:"type"`
	Status          string           `db:"status" json:"status"`
	Notes           *string          `db:"notes" json:"notes"`
	CreatedAt       time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updatedAt"`
	Patient         *PatientSummary  `db:"-" json:"patient,omitempty"`
	Provider        *ProviderSummary `db:"-" json:"provider,omitempty"`
}

// FormattedDateTime renders e.g. "Mar 05, 2026 at 14:30".
func (a *Appointment) FormattedDateTime() string {
	return a.AppointmentDate.Format("Jan 02, 2006") + " at " + a.AppointmentTime
}

// IsUpcoming reports whether the appointment is on or after today and
// still scheduled or confirmed.
func (a *Appointment) IsUpcoming(today time.Time) bool {
	if a.Status != StatusScheduled && a.Status != StatusConfirmed {
		return false
	}
	return a.AppointmentDate.Format(validation.DateLayout) >= today.UTC().Format(validation.DateLayout)
}

func (a Appointment) MarshalJSON() ([]byte, error) {
	type alias Appointment
	return json.Marshal(struct {
		alias
		AppointmentDate   string `json:"appointmentDate"`
		FormattedDateTime string `json:"formattedDateTime"`
	}{alias(a), a.AppointmentDate.Format(validation.DateLayout), a.FormattedDateTime()})
}

// Scope selects a derived view of appointments.
type Scope string

const (
	ScopeAll       Scope = ""
	ScopeUpcoming  Scope = "upcoming"
	ScopeCompleted Scope = "completed"
)

// Filter narrows List. Today anchors the upcoming scope.
type Filter struct {
	Scope  Scope
	Status string
	Today  time.Time
}

// Input is the request body for create and update. A nil field was not
// supplied.
type Input struct {
	PatientID       *string `json:"patientId"`
	ProviderID      *string `json:"providerId"`
	AppointmentDate *string `json:"appointmentDate"`
	AppointmentTime *string `json:"appointmentTime"`
	Type            *string `json:"type"`
	Status          *string `json:"status"`
	Notes           *string `json:"notes"`
}

// statusGiven reports whether the input names a status. A blank status is
// treated as absent.
func (in *Input) statusGiven() bool {
	return in.Status != nil && strings.TrimSpace(*in.Status) != ""
}

// apply copies the supplied, already validated fields onto a. A blank
// notes value clears the notes.
func (in *Input) apply(a *Appointment) {
	if in.PatientID != nil {
		a.PatientID = uuid.MustParse(*in.PatientID)
	}
	if in.ProviderID != nil {
		a.ProviderID = uuid.MustParse(*in.ProviderID)
	}
	if in.AppointmentDate != nil {
		a.AppointmentDate, _ = time.Parse(validation.DateLayout, *in.AppointmentDate)
	}
	if in.AppointmentTime != nil {
		a.AppointmentTime = *in.AppointmentTime
	}
	if in.Type != nil {
		a.Type = *in.Type
	}
	if in.statusGiven() {
		a.Status = *in.Status
	}
	if in.Notes != nil {
		if *in.Notes == "" {
			a.Notes = nil
		} else {
			notes := *in.Notes
			a.Notes = &notes
		}
	}
}
