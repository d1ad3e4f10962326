package patient

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/intake/internal/domain/appointment"
	"github.com/carepoint/intake/internal/domain/intake"
	"github.com/carepoint/intake/internal/platform/apperr"
	"github.com/carepoint/intake/internal/platform/validation"
)

// ErrNotFound is returned when no patient has the requested id.
var ErrNotFound = apperr.NotFound("Patient")

// Genders accepted for Patient.Gender.
var Genders = []string{"male", "female", "other", "prefer-not-to-say"}

type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// Patient maps to the patients table; the emergency contact is stored in
// three emergency_contact_* columns. IntakeForms and Appointments are nil
// unless the read loaded them.
type Patient struct {
	ID               uuid.UUID                  `db:"id" json:"id"`
	FirstName        string                     `db:"first_name" json:"firstName"`
	LastName         string                     `db:"last_name" json:"lastName"`
	Email            string                     `db:"email" json:"email"`
	Phone            string                     `db:"phone" json:"phone"`
	DateOfBirth      time.Time                  `db:"date_of_birth" json:"dateOfBirth"`
	Gender           string                     `db:"gender" json:"gender"`
	Address          string                     `db:"address" json:"address"`
	EmergencyContact EmergencyContact           `db:"-" json:"emergencyContact"`
	CreatedAt        time.Time                  `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time                  `db:"updated_at" json:"updatedAt"`
	IntakeForms      []*intake.Form             `db:"-" json:"-"`
	Appointments     []*appointment.Appointment `db:"-" json:"-"`
}

func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

func (p Patient) MarshalJSON() ([]byte, error) {
	type alias Patient
	out := struct {
		alias
		DateOfBirth  string                      `json:"dateOfBirth"`
		FullName     string                      `json:"fullName"`
		IntakeForms  *[]*intake.Form             `json:"intakeForms,omitempty"`
		Appointments *[]*appointment.Appointment `json:"appointments,omitempty"`
	}{
		alias:       alias(p),
		DateOfBirth: p.DateOfBirth.Format(validation.DateLayout),
		FullName:    p.FullName(),
	}
	if p.IntakeForms != nil {
		out.IntakeForms = &p.IntakeForms
	}
	if p.Appointments != nil {
		out.Appointments = &p.Appointments
	}
	return json.Marshal(out)
}

type EmergencyContactInput struct {
	Name         *string `json:"name"`
	Phone        *string `json:"phone"`
	Relationship *string `json:"relationship"`
}

// Input is the request body for create and update. A nil field was not
// supplied.
type Input struct {
	FirstName        *string                `json:"firstName"`
	LastName         *string                `json:"lastName"`
	Email            *string                `json:"email"`
	Phone            *string                `json:"phone"`
	DateOfBirth      *string                `json:"dateOfBirth"`
	Gender           *string                `json:"gender"`
	Address          *string                `json:"address"`
	EmergencyContact *EmergencyContactInput `json:"emergencyContact"`
}

func (in *Input) contact() EmergencyContactInput {
	if in.EmergencyContact == nil {
		return EmergencyContactInput{}
	}
	return *in.EmergencyContact
}

// apply copies the supplied, already validated fields onto p.
func (in *Input) apply(p *Patient) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.FirstName, in.FirstName)
	set(&p.LastName, in.LastName)
	set(&p.Email, in.Email)
	set(&p.Phone, in.Phone)
	set(&p.Gender, in.Gender)
	set(&p.Address, in.Address)
	if in.DateOfBirth != nil {
		p.DateOfBirth, _ = time.Parse(validation.DateLayout, *in.DateOfBirth)
	}
	ec := in.contact()
	set(&p.EmergencyContact.Name, ec.Name)
	set(&p.EmergencyContact.Phone, ec.Phone)
	set(&p.EmergencyContact.Relationship, ec.Relationship)
}
