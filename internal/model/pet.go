package model

import "time"

// Pet is an animal patient. OwnerID references an Owner of the same clinic.
type Pet struct {
	ID int64 `json:"id"`
	Tenancy
	OwnerID     int64      `json:"owner_id" validate:"required"`
	Name        string     `json:"name" validate:"required,max=100"`
	Species     string     `json:"species" validate:"required"`
	Breed       string     `json:"breed"`
	Color       string     `json:"color"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Gender      string     `json:"gender"`
	Weight      float64    `json:"weight" validate:"gte=0"`
	MicrochipID string     `json:"microchip_id"`
	PhotoMIME   string     `json:"photo_mime,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
