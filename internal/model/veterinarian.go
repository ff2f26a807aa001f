package model

import "time"

// Veterinarian is a clinician who can be assigned to appointments and records.
type Veterinarian struct {
	ID int64 `json:"id"`
	Tenancy
	Name           string    `json:"name" validate:"required,max=100"`
	Specialization string    `json:"specialization"`
	Email          string    `json:"email" validate:"omitempty,email"`
	Phone          string    `json:"phone"`
	CreatedAt      time.Time `json:"created_at"`
}
