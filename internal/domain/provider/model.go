package provider

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/intake/internal/platform/apperr"
)

// ErrNotFound is returned when no provider has the requested id.
var ErrNotFound = apperr.NotFound("Provider")

// Provider maps to the providers table. Availability is an ordered list of
// "HH:MM" slot start times.
type Provider struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Specialty    string    `db:"specialty" json:"specialty"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
	Availability []string  `db:"availability" json:"availability"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// AvailableSlots returns a copy of the availability list, never nil.
func (p *Provider) AvailableSlots() []string {
	out := make([]string, len(p.Availability))
	copy(out, p.Availability)
	return out
}

func (p Provider) MarshalJSON() ([]byte, error) {
	type alias Provider
	slots := p.AvailableSlots()
	return json.Marshal(struct {
		alias
		Availability   []string `json:"availability"`
		AvailableSlots []string `json:"availableSlots"`
	}{alias(p), slots, slots})
}
