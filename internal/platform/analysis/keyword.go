package analysis

import (
	"context"
	"regexp"
	"strings"
)

var riskKeywords = []struct {
	level    string
	keywords []string
}{
	{RiskHigh, []string{"chest pain", "heart attack", "stroke", "severe pain", "emergency", "acute", "critical"}},
	{RiskMedium, []string{"diabetes", "hypertension", "high blood pressure", "depression", "anxiety", "chronic"}},
	{RiskLow, []string{"headache", "fatigue", "cold", "flu", "minor pain", "routine check"}},
}

// Categories are listed in report order.
var symptomCategories = []struct {
	category string
	symptoms []string
}{
	{"cardiovascular", []string{"chest pain", "heart palpitations", "shortness of breath", "dizziness"}},
	{"neurological", []string{"headache", "migraine", "dizziness", "confusion", "memory loss"}},
	{"respiratory", []string{"cough", "shortness of breath", "asthma", "breathing difficulty"}},
	{"gastrointestinal", []string{"nausea", "vomiting", "abdominal pain", "diarrhea", "constipation"}},
	{"musculoskeletal", []string{"joint pain", "back pain", "muscle ache", "arthritis"}},
}

var followUps = []struct {
	trigger   string
	questions []string
}{
	{"chest pain", []string{
		"Consider asking about radiation of pain",
		"Check for associated shortness of breath",
		"Inquire about family history of heart disease",
	}},
	{"headache", []string{
		"Ask about headache frequency and triggers",
		"Check for vision changes",
		"Inquire about stress levels",
	}},
	{"fatigue", []string{
		"Consider checking sleep patterns",
		"Ask about recent weight changes",
		"Inquire about stress and mental health",
	}},
}

var (
	medicationPattern = regexp.MustCompile(`\b\w+(?:mg|ml|tablets?|pills?|capsules?)\b`)
	durationPattern   = regexp.MustCompile(`\b(?:for\s+)?(\d+)\s+(day|week|month|year)s?\b`)
)

// KeywordAnalyzer scores forms against fixed keyword lists. It needs no
// network and is the default when no inference service is configured.
type KeywordAnalyzer struct{}

func NewKeywordAnalyzer() *KeywordAnalyzer { return &KeywordAnalyzer{} }

func (a *KeywordAnalyzer) Analyze(ctx context.Context, in Input) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	level := AssessRisk(strings.Join([]string{in.ChiefComplaint, in.MedicalHistory, in.CurrentMedications}, " "))
	suggestions := Suggestions(in.ChiefComplaint)
	return &Result{
		RiskLevel:      level,
		Summary:        Summarize(in),
		RiskAssessment: FormatRisk(level, suggestions),
		Suggestions:    suggestions,
		Extracted:      Extract(in.ChiefComplaint + " " + in.MedicalHistory),
	}, nil
}

// AssessRisk returns the highest level with a matching keyword, or medium
// when nothing matches.
func AssessRisk(text string) string {
	lower := strings.ToLower(text)
	for _, tier := range riskKeywords {
		for _, kw := range tier.keywords {
			if strings.Contains(lower, kw) {
				return tier.level
			}
		}
	}
	return RiskMedium
}

// Extract finds known symptoms, dosage-like medication tokens and durations.
func Extract(text string) *Extraction {
	lower := strings.ToLower(text)
	out := &Extraction{
		Symptoms:    []Symptom{},
		Medications: []string{},
		Durations:   []Duration{},
	}
	for _, cat := range symptomCategories {
		for _, s := range cat.symptoms {
			if strings.Contains(lower, s) {
				out.Symptoms = append(out.Symptoms, Symptom{Symptom: s, Category: cat.category})
			}
		}
	}
	out.Medications = append(out.Medications, medicationPattern.FindAllString(lower, -1)...)
	for _, m := range durationPattern.FindAllStringSubmatch(lower, -1) {
		out.Durations = append(out.Durations, Duration{Amount: m[1], Unit: m[2]})
	}
	return out
}

// Summarize builds "Patient presents with: X. Symptoms involve: a, b
// systems. Relevant medical history noted. Currently taking medications."
// from whichever parts apply.
func Summarize(in Input) string {
	var parts []string
	if in.ChiefComplaint != "" {
		parts = append(parts, "Patient presents with: "+in.ChiefComplaint)
	}

	extracted := Extract(in.ChiefComplaint + " " + in.MedicalHistory)
	if len(extracted.Symptoms) > 0 {
		var cats []string
		seen := map[string]bool{}
		for _, s := range extracted.Symptoms {
			if !seen[s.Category] {
				seen[s.Category] = true
				cats = append(cats, s.Category)
			}
		}
		parts = append(parts, "Symptoms involve: "+strings.Join(cats, ", ")+" systems")
	}

	if in.MedicalHistory != "" {
		parts = append(parts, "Relevant medical history noted")
	}
	if in.CurrentMedications != "" {
		parts = append(parts, "Currently taking medications")
	}
	return strings.Join(parts, ". ") + "."
}

// Suggestions returns follow-up questions for the first matching complaint.
func Suggestions(chiefComplaint string) []string {
	lower := strings.ToLower(chiefComplaint)
	for _, f := range followUps {
		if strings.Contains(lower, f.trigger) {
			return append([]string(nil), f.questions...)
		}
	}
	return nil
}
