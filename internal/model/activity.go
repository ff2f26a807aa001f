package model

import "time"

// Activity is an append-only audit entry for a domain mutation.
type Activity struct {
	ID int64 `json:"id"`
	Tenancy
	Action      string    `json:"action"`
	EntityType  string    `json:"entity_type"`
	EntityID    int64     `json:"entity_id"`
	EntityName  string    `json:"entity_name"`
	Description string    `json:"description"`
	UserID      *int64    `json:"user_id,omitempty"`
	UserName    string    `json:"user_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Activity actions.
const (
	ActionCreate      = "CREATE"
	ActionUpdate      = "UPDATE"
	ActionDelete      = "DELETE"
	ActionPayment     = "PAYMENT"
	ActionAdjustStock = "ADJUST_STOCK"
)

// Entity types recorded in the activity log.
const (
	EntityOwner         = "OWNER"
	EntityPet           = "PET"
	EntityVeterinarian  = "VETERINARIAN"
	EntityAppointment   = "APPOINTMENT"
	EntityInvoice       = "INVOICE"
	EntityInventory     = "INVENTORY"
	EntityVaccination   = "VACCINATION"
	EntityMedicalRecord = "MEDICAL_RECORD"
	EntityPrescription  = "PRESCRIPTION"
	EntityLabTest       = "LAB_TEST"
	EntityUser          = "USER"
)
