package model

import "time"

// Vaccination is a vaccine given to, or scheduled for, a pet.
type Vaccination struct {
	ID int64 `json:"id"`
	Tenancy
	PetID            int64      `json:"pet_id" validate:"required"`
	VeterinarianID   *int64     `json:"veterinarian_id,omitempty"`
	VaccineType      string     `json:"vaccine_type" validate:"required"`
	AdministeredDate *time.Time `json:"administered_date,omitempty"`
	NextDueDate      *time.Time `json:"next_due_date,omitempty"`
	BatchNumber      string     `json:"batch_number"`
	Notes            string     `json:"notes"`
	Status           string     `json:"status" validate:"omitempty,oneof=SCHEDULED ADMINISTERED OVERDUE"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Vaccination statuses.
const (
	VaccinationScheduled    = "SCHEDULED"
	VaccinationAdministered = "ADMINISTERED"
	VaccinationOverdue      = "OVERDUE"
)

// MedicalRecord is an entry in a pet's medical history.
type MedicalRecord struct {
	ID int64 `json:"id"`
	Tenancy
	PetID          int64     `json:"pet_id" validate:"required"`
	VeterinarianID *int64    `json:"veterinarian_id,omitempty"`
	RecordDate     time.Time `json:"record_date"`
	Type           string    `json:"type" validate:"oneof=VACCINATION CHECKUP SURGERY TREATMENT LAB_RESULT EMERGENCY FOLLOW_UP"`
	Title          string    `json:"title" validate:"required,max=200"`
	Description    string    `json:"description"`
	Notes          string    `json:"notes"`
	Status         string    `json:"status" validate:"omitempty,oneof=PENDING COMPLETED ARCHIVED"`
	CreatedAt      time.Time `json:"created_at"`
}

// Medical record types.
const (
	RecordVaccination = "VACCINATION"
	RecordCheckup     = "CHECKUP"
	RecordSurgery     = "SURGERY"
	RecordTreatment   = "TREATMENT"
	RecordLabResult   = "LAB_RESULT"
	RecordEmergency   = "EMERGENCY"
	RecordFollowUp    = "FOLLOW_UP"
)

// Medical record statuses.
const (
	RecordPending   = "PENDING"
	RecordCompleted = "COMPLETED"
	RecordArchived  = "ARCHIVED"
)

// Prescription is a medication prescribed for a pet.
type Prescription struct {
	ID int64 `json:"id"`
	Tenancy
	PetID            int64     `json:"pet_id" validate:"required"`
	VeterinarianID   *int64    `json:"veterinarian_id,omitempty"`
	MedicationName   string    `json:"medication_name" validate:"required"`
	Dosage           string    `json:"dosage" validate:"required"`
	Frequency        string    `json:"frequency"`
	Duration         string    `json:"duration"`
	Instructions     string    `json:"instructions"`
	PrescribedDate   time.Time `json:"prescribed_date"`
	Status           string    `json:"status" validate:"omitempty,oneof=ACTIVE COMPLETED CANCELLED"`
	RefillsRemaining int       `json:"refills_remaining" validate:"gte=0"`
	Notes            string    `json:"notes"`
	CreatedAt        time.Time `json:"created_at"`
}

// Prescription statuses.
const (
	PrescriptionActive    = "ACTIVE"
	PrescriptionCompleted = "COMPLETED"
	PrescriptionCancelled = "CANCELLED"
)

// LabTest is a diagnostic test requested for a pet.
type LabTest struct {
	ID int64 `json:"id"`
	Tenancy
	PetID          int64      `json:"pet_id" validate:"required"`
	VeterinarianID *int64     `json:"veterinarian_id,omitempty"`
	TestType       string     `json:"test_type" validate:"required"`
	RequestedDate  time.Time  `json:"requested_date"`
	CompletedDate  *time.Time `json:"completed_date,omitempty"`
	Results        string     `json:"results"`
	Status         string     `json:"status" validate:"omitempty,oneof=REQUESTED IN_PROGRESS COMPLETED CANCELLED"`
	Notes          string     `json:"notes"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Lab test statuses.
const (
	LabRequested  = "REQUESTED"
	LabInProgress = "IN_PROGRESS"
	LabCompleted  = "COMPLETED"
	LabCancelled  = "CANCELLED"
)
