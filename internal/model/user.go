package model

import (
	"errors"
	"time"
)

// User is a clinic staff account.
type User struct {
	ID int64 `json:"id"`
	Tenancy
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles.
const (
	RoleAdministrator = "ADMINISTRATOR"
	RoleVeterinarian  = "VETERINARIAN"
	RoleNurse         = "NURSE"
	RoleTechnician    = "TECHNICIAN"
	RoleReceptionist  = "RECEPTIONIST"
)

// ValidRole reports whether role is a known role.
func ValidRole(role string) bool {
	switch role {
	case RoleAdministrator, RoleVeterinarian, RoleNurse, RoleTechnician, RoleReceptionist:
		return true
	}
	return false
}

// Permission areas.
const (
	AreaAppointments = "appointments"
	AreaPets         = "pets"
	AreaOwners       = "owners"
	AreaRecords      = "records"
	AreaInventory    = "inventory"
	AreaBilling      = "billing"
	AreaReports      = "reports"
	AreaSettings     = "settings"
)

// Permissions lists the areas a user may access.
type Permissions struct {
	Appointments bool `json:"appointments"`
	Pets         bool `json:"pets"`
	Owners       bool `json:"owners"`
	Records      bool `json:"records"`
	Inventory    bool `json:"inventory"`
	Billing      bool `json:"billing"`
	Reports      bool `json:"reports"`
	Settings     bool `json:"settings"`
}

// DefaultPermissions returns the permissions a role has unless overridden.
// Unknown roles get nothing.
func DefaultPermissions(role string) Permissions {
	switch role {
	case RoleAdministrator:
		return Permissions{true, true, true, true, true, true, true, true}
	case RoleVeterinarian:
		return Permissions{true, true, true, true, true, true, true, false}
	case RoleNurse, RoleTechnician:
		return Permissions{Appointments: true, Pets: true, Owners: true, Records: true, Inventory: true}
	case RoleReceptionist:
		return Permissions{Appointments: true, Pets: true, Owners: true, Billing: true}
	}
	return Permissions{}
}

// Allows reports whether the given area is permitted.
func (p Permissions) Allows(area string) bool {
	switch area {
	case AreaAppointments:
		return p.Appointments
	case AreaPets:
		return p.Pets
	case AreaOwners:
		return p.Owners
	case AreaRecords:
		return p.Records
	case AreaInventory:
		return p.Inventory
	case AreaBilling:
		return p.Billing
	case AreaReports:
		return p.Reports
	case AreaSettings:
		return p.Settings
	}
	return false
}

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// ValidatePassword checks a new password against the password policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
