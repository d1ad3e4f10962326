package intake

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/intake/internal/platform/analysis"
	"github.com/carepoint/intake/internal/platform/apperr"
)

// ErrNotFound is returned when no intake form has the requested id.
var ErrNotFound = apperr.NotFound("Intake form")

// VitalSigns holds free-form measurements such as height, weight,
// bloodPressure, temperature and heartRate. Numbers and booleans in the
// request body are kept as their JSON text; null values are dropped.
type VitalSigns map[string]string

func (v *VitalSigns) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*v = nil
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(VitalSigns, len(raw))
	for k, r := range raw {
		var s string
		switch {
		case bytes.Equal(r, []byte("null")):
			continue
		case json.Unmarshal(r, &s) == nil:
			out[k] = s
		default:
			var n json.Number
			if err := json.Unmarshal(r, &n); err == nil {
				out[k] = n.String()
				continue
			}
			var flag bool
			if err := json.Unmarshal(r, &flag); err == nil {
				out[k] = strconv.FormatBool(flag)
				continue
			}
			return fmt.Errorf("vitalSigns.%s: expected a scalar value", k)
		}
	}
	*v = out
	return nil
}

// Form maps to the intake_forms table.
type Form struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	PatientID          uuid.UUID  `db:"patient_id" json:"patientId"`
	ChiefComplaint     string     `db:"chief_complaint" json:"chiefComplaint"`
	CurrentMedications string     `db:"current_medications" json:"currentMedications"`
	Allergies          string     `db:"allergies" json:"allergies"`
	MedicalHistory     string     `db:"medical_history" json:"medicalHistory"`
	SocialHistory      string     `db:"social_history" json:"socialHistory"`
	FamilyHistory      string     `db:"family_history" json:"familyHistory"`
	ReviewOfSystems    string     `db:"review_of_systems" json:"reviewOfSystems"`
	VitalSigns         VitalSigns `db:"vital_signs" json:"vitalSigns"`
	Processed          bool       `db:"processed" json:"processed"`
	AISummary          *string    `db:"ai_summary" json:"aiSummary"`
	RiskAssessment     *string    `db:"risk_assessment" json:"riskAssessment"`
	CreatedAt          time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updatedAt"`
}

func (f Form) MarshalJSON() ([]byte, error) {
	type alias Form
	vitals := f.VitalSigns
	if vitals == nil {
		vitals = VitalSigns{}
	}
	return json.Marshal(struct {
		alias
		VitalSigns map[string]string `json:"vitalSigns"`
	}{alias(f), vitals})
}

// AnalysisInput is the view of the form handed to an analyzer.
func (f *Form) AnalysisInput() analysis.Input {
	return analysis.Input{
		ChiefComplaint:     f.ChiefComplaint,
		CurrentMedications: f.CurrentMedications,
		Allergies:          f.Allergies,
		MedicalHistory:     f.MedicalHistory,
		SocialHistory:      f.SocialHistory,
		FamilyHistory:      f.FamilyHistory,
		ReviewOfSystems:    f.ReviewOfSystems,
		VitalSigns:         f.VitalSigns,
	}
}

// Input is the request body for create and update. A nil field was not
// supplied. processed, aiSummary and riskAssessment are only set by Process.
type Input struct {
	PatientID          *string    `json:"patientId"`
	ChiefComplaint     *string    `json:"chiefComplaint"`
	CurrentMedications *string    `json:"currentMedications"`
	Allergies          *string    `json:"allergies"`
	MedicalHistory     *string    `json:"medicalHistory"`
	SocialHistory      *string    `json:"socialHistory"`
	FamilyHistory      *string    `json:"familyHistory"`
	ReviewOfSystems    *string    `json:"reviewOfSystems"`
	VitalSigns         VitalSigns `json:"vitalSigns"`
}

// apply copies the supplied fields onto f. Vital signs supplied on update
// are merged key by key.
func (in *Input) apply(f *Form) {
	if in.PatientID != nil {
		f.PatientID = uuid.MustParse(*in.PatientID)
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&f.ChiefComplaint, in.ChiefComplaint)
	set(&f.CurrentMedications, in.CurrentMedications)
	set(&f.Allergies, in.Allergies)
	set(&f.MedicalHistory, in.MedicalHistory)
	set(&f.SocialHistory, in.SocialHistory)
	set(&f.FamilyHistory, in.FamilyHistory)
	set(&f.ReviewOfSystems, in.ReviewOfSystems)
	if in.VitalSigns != nil {
		if f.VitalSigns == nil {
			f.VitalSigns = VitalSigns{}
		}
		for k, v := range in.VitalSigns {
			f.VitalSigns[k] = v
		}
	}
}
