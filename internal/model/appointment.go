package model

import "time"

// Appointment is a scheduled visit of a pet.
type Appointment struct {
	ID int64 `json:"id"`
	Tenancy
	PetID          int64     `json:"pet_id" validate:"required"`
	VeterinarianID *int64    `json:"veterinarian_id,omitempty"`
	ScheduledAt    time.Time `json:"scheduled_at" validate:"required"`
	Duration       int       `json:"duration" validate:"gte=0"`
	Type           string    `json:"type" validate:"oneof=CHECKUP VACCINATION SURGERY GROOMING EMERGENCY FOLLOW_UP"`
	Status         string    `json:"status" validate:"omitempty,oneof=SCHEDULED CHECKED_IN IN_PROGRESS COMPLETED CANCELLED"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Appointment types.
const (
	AppointmentCheckup     = "CHECKUP"
	AppointmentVaccination = "VACCINATION"
	AppointmentSurgery     = "SURGERY"
	AppointmentGrooming    = "GROOMING"
	AppointmentEmergency   = "EMERGENCY"
	AppointmentFollowUp    = "FOLLOW_UP"
)

// Appointment statuses.
const (
	AppointmentScheduled  = "SCHEDULED"
	AppointmentCheckedIn  = "CHECKED_IN"
	AppointmentInProgress = "IN_PROGRESS"
	AppointmentCompleted  = "COMPLETED"
	AppointmentCancelled  = "CANCELLED"
)

// Open reports whether the appointment is neither completed nor cancelled.
func (a *Appointment) Open() bool {
	return a.Status != AppointmentCompleted && a.Status != AppointmentCancelled
}
