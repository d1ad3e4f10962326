package client

// Wire types mirror the server's camelCase JSON. Dates are "YYYY-MM-DD"
// and times "HH:MM"; timestamps are RFC 3339 strings.

type EmergencyContact struct {
	Name         string `json:"name" yaml:"name"`
	Phone        string `json:"phone" yaml:"phone"`
	Relationship string `json:"relationship" yaml:"relationship"`
}

type Patient struct {
	ID               string           `json:"id,omitempty" yaml:"-"`
	FirstName        string           `json:"firstName" yaml:"firstName"`
	LastName         string           `json:"lastName" yaml:"lastName"`
	FullName         string           `json:"fullName,omitempty" yaml:"-"`
	Email            string           `json:"email" yaml:"email"`
	Phone            string           `json:"phone" yaml:"phone"`
	DateOfBirth      string           `json:"dateOfBirth" yaml:"dateOfBirth"`
	Gender           string           `json:"gender" yaml:"gender"`
	Address          string           `json:"address" yaml:"address"`
	EmergencyContact EmergencyContact `json:"emergencyContact" yaml:"emergencyContact"`
	IntakeForms      []IntakeForm     `json:"intakeForms,omitempty" yaml:"-"`
	Appointments     []Appointment    `json:"appointments,omitempty" yaml:"-"`
	CreatedAt        string           `json:"createdAt,omitempty" yaml:"-"`
	UpdatedAt        string           `json:"updatedAt,omitempty" yaml:"-"`
}

type IntakeForm struct {
	ID                 string            `json:"id,omitempty" yaml:"-"`
	PatientID          string            `json:"patientId" yaml:"-"`
	ChiefComplaint     string            `json:"chiefComplaint" yaml:"chiefComplaint"`
	CurrentMedications string            `json:"currentMedications,omitempty" yaml:"currentMedications"`
	Allergies          string            `json:"allergies,omitempty" yaml:"allergies"`
	MedicalHistory     string            `json:"medicalHistory,omitempty" yaml:"medicalHistory"`
	SocialHistory      string            `json:"socialHistory,omitempty" yaml:"socialHistory"`
	FamilyHistory      string            `json:"familyHistory,omitempty" yaml:"familyHistory"`
	ReviewOfSystems    string            `json:"reviewOfSystems,omitempty" yaml:"reviewOfSystems"`
	VitalSigns         map[string]string `json:"vitalSigns,omitempty" yaml:"vitalSigns"`
	Processed          bool              `json:"processed" yaml:"-"`
	AISummary          *string           `json:"aiSummary,omitempty" yaml:"-"`
	RiskAssessment     *string           `json:"riskAssessment,omitempty" yaml:"-"`
	CreatedAt          string            `json:"createdAt,omitempty" yaml:"-"`
	UpdatedAt          string            `json:"updatedAt,omitempty" yaml:"-"`
}

type Provider struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Specialty      string   `json:"specialty"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Availability   []string `json:"availability"`
	AvailableSlots []string `json:"availableSlots"`
}

type Appointment struct {
	ID                string           `json:"id,omitempty" yaml:"-"`
	PatientID         string           `json:"patientId" yaml:"patientId"`
	ProviderID        string           `json:"providerId" yaml:"providerId"`
	AppointmentDate   string           `json:"appointmentDate" yaml:"appointmentDate"`
	AppointmentTime   string           `json:"appointmentTime" yaml:"appointmentTime"`
	Type              string           `json:"type" yaml:"type"`
	Status            string           `json:"status,omitempty" yaml:"status"`
	Notes             *string          `json:"notes,omitempty" yaml:"notes"`
	FormattedDateTime string           `json:"formattedDateTime,omitempty" yaml:"-"`
	Patient           *PatientSummary  `json:"patient,omitempty" yaml:"-"`
	Provider          *ProviderSummary `json:"provider,omitempty" yaml:"-"`
	CreatedAt         string           `json:"createdAt,omitempty" yaml:"-"`
	UpdatedAt         string           `json:"updatedAt,omitempty" yaml:"-"`
}

type PatientSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type ProviderSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}
