// Package analysis turns the free-text answers of an intake form into a
// short clinical summary and a risk assessment.
package analysis

import (
	"context"
	"strings"
)

// Risk levels.
const (
	RiskHigh   = "high"
	RiskMedium = "medium"
	RiskLow    = "low"
)

// Input is the part of an intake form an analyzer reads. Field names match
// the JSON the inference service expects.
type Input struct {
	ChiefComplaint     string            `json:"chiefComplaint"`
	CurrentMedications string            `json:"currentMedications"`
	Allergies          string            `json:"allergies"`
	MedicalHistory     string            `json:"medicalHistory"`
	SocialHistory      string            `json:"socialHistory"`
	FamilyHistory      string            `json:"familyHistory"`
	ReviewOfSystems    string            `json:"reviewOfSystems"`
	VitalSigns         map[string]string `json:"vitalSigns,omitempty"`
}

// Result is what gets written back to the form.
type Result struct {
	RiskLevel      string      `json:"riskLevel"`
	Summary        string      `json:"summary"`
	RiskAssessment string      `json:"riskAssessment"`
	Suggestions    []string    `json:"suggestions,omitempty"`
	Extracted      *Extraction `json:"extracted,omitempty"`
}

// Extraction lists the entities recognised in the chief complaint and history.
type Extraction struct {
	Symptoms    []Symptom  `json:"symptoms"`
	Medications []string   `json:"medications"`
	Durations   []Duration `json:"durations"`
}

type Symptom struct {
	Symptom  string `json:"symptom"`
	Category string `json:"category"`
}

type Duration struct {
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
}

// Analyzer produces a Result for one form. Implementations must not retain
// the input.
type Analyzer interface {
	Analyze(ctx context.Context, in Input) (*Result, error)
}

// FormatRisk renders the stored risk assessment, e.g.
// "High risk - Check for vision changes; Inquire about stress levels."
func FormatRisk(level string, suggestions []string) string {
	if level == "" {
		level = RiskMedium
	}
	s := strings.ToUpper(level[:1]) + level[1:] + " risk"
	if len(suggestions) == 0 {
		return s
	}
	return s + " - " + strings.Join(suggestions, "; ") + "."
}
