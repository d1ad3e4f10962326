package patient

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carepoint/intake/internal/domain/appointment"
	"github.com/carepoint/intake/internal/domain/intake"
)

func samplePatient() Patient {
	return Patient{
		ID:          uuid.MustParse("7d7f0a52-6f5e-4f7a-9d1e-0f6c1d2e3a4b"),
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       "jane@example.com",
		Phone:       "555-0100",
		DateOfBirth: time.Date(1990, 5, 15, 0, 0, 0, 0, time.UTC),
		Gender:      "female",
		EmergencyContact: EmergencyContact{
			Name: "John Doe", Phone: "555-0199", Relationship: "spouse",
		},
	}
}

func marshalMap(t *testing.T, v interface{}) map[string]interface{} {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

func TestPatient_MarshalJSON(t *testing.T) {
	m := marshalMap(t, samplePatient())

	assert.Equal(t, "1990-05-15", m["dateOfBirth"])
	assert.Equal(t, "Jane Doe", m["fullName"])
	assert.Equal(t, "jane@example.com", m["email"])
	assert.Equal(t, map[string]interface{}{
		"name": "John Doe", "phone": "555-0199", "relationship": "spouse",
	}, m["emergencyContact"])
	assert.NotContains(t, m, "intakeForms")
	assert.NotContains(t, m, "appointments")
}

func TestPatient_MarshalJSON_LoadedRelations(t *testing.T) {
	p := samplePatient()
	p.IntakeForms = []*intake.Form{}
	p.Appointments = []*appointment.Appointment{}

	m := marshalMap(t, p)
	assert.Equal(t, []interface{}{}, m["intakeForms"])
	assert.Equal(t, []interface{}{}, m["appointments"])
}

func TestPatient_MarshalJSON_Pointer(t *testing.T) {
	p := samplePatient()
	m := marshalMap(t, &p)
	assert.Equal(t, "Jane Doe", m["fullName"])
}

func TestInput_Apply_OnlySuppliedFields(t *testing.T) {
	p := samplePatient()
	phone := "555-0111"
	relationship := "sibling"
	dob := "1991-01-02"
	in := Input{
		Phone:            &phone,
		DateOfBirth:      &dob,
		EmergencyContact: &EmergencyContactInput{Relationship: &relationship},
	}
	in.apply(&p)

	assert.Equal(t, "555-0111", p.Phone)
	assert.Equal(t, "Jane", p.FirstName)
	assert.Equal(t, time.Date(1991, 1, 2, 0, 0, 0, 0, time.UTC), p.DateOfBirth)
	assert.Equal(t, EmergencyContact{Name: "John Doe", Phone: "555-0199", Relationship: "sibling"}, p.EmergencyContact)
}

func TestInput_Contact_NilIsEmpty(t *testing.T) {
	var in Input
	assert.Equal(t, EmergencyContactInput{}, in.contact())
}
