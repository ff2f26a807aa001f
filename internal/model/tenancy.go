package model

import "github.com/erazemk/klinika/internal/tenant"

// Tenancy is embedded in every record that belongs to a clinic.
type Tenancy struct {
	ClinicCode string `json:"clinic_code"`
}

// TenantID returns the owning clinic code.
func (t *Tenancy) TenantID() string { return t.ClinicCode }

// SetTenantID sets the owning clinic code.
func (t *Tenancy) SetTenantID(code string) { t.ClinicCode = code }

var (
	_ tenant.Scoped = (*User)(nil)
	_ tenant.Scoped = (*Owner)(nil)
	_ tenant.Scoped = (*Pet)(nil)
	_ tenant.Scoped = (*Veterinarian)(nil)
	_ tenant.Scoped = (*Appointment)(nil)
	_ tenant.Scoped = (*Invoice)(nil)
	_ tenant.Scoped = (*Payment)(nil)
	_ tenant.Scoped = (*InventoryItem)(nil)
	_ tenant.Scoped = (*Vaccination)(nil)
	_ tenant.Scoped = (*MedicalRecord)(nil)
	_ tenant.Scoped = (*Prescription)(nil)
	_ tenant.Scoped = (*LabTest)(nil)
	_ tenant.Scoped = (*Activity)(nil)
)
