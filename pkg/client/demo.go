package client

import "time"

// sampleDashboard is fixed demo content dated relative to now.
func sampleDashboard(now time.Time) *Dashboard {
	day := func(offset int) string { return now.UTC().AddDate(0, 0, offset).Format("2006-01-02") }
	summary := "Patient presents with: headache. Symptoms involve: neurological systems."
	risk := "Medium risk"

	d := &Dashboard{
		Patient: &Patient{
			ID:          "demo-patient",
			FirstName:   "Alex",
			LastName:    "Sample",
			FullName:    "Alex Sample",
			Email:       "alex.sample@example.com",
			Phone:       "555-0100",
			DateOfBirth: "1980-01-01",
			Gender:      "prefer-not-to-say",
			Address:     "100 Demo Street",
			EmergencyContact: EmergencyContact{
				Name: "Sam Sample", Phone: "555-0101", Relationship: "sibling",
			},
		},
		Appointments: []Appointment{
			{
				ID: "demo-appointment-1", PatientID: "demo-patient", ProviderID: "demo-provider",
				AppointmentDate: day(3), AppointmentTime: "10:00", Type: "consultation", Status: "scheduled",
				Provider: &ProviderSummary{ID: "demo-provider", Name: "Dr. Demo", Specialty: "Family Medicine"},
			},
			{
				ID: "demo-appointment-2", PatientID: "demo-patient", ProviderID: "demo-provider",
				AppointmentDate: day(-14), AppointmentTime: "14:30", Type: "follow-up", Status: "completed",
				Provider: &ProviderSummary{ID: "demo-provider", Name: "Dr. Demo", Specialty: "Family Medicine"},
			},
		},
		IntakeForms: []IntakeForm{
			{
				ID: "demo-form-1", PatientID: "demo-patient", ChiefComplaint: "Recurring headaches",
				Processed: true, AISummary: &summary, RiskAssessment: &risk,
			},
		},
		Demo: true,
	}
	d.Counts = DashboardCounts{Patients: 1, Upcoming: 1, Completed: 1}
	return d
}
