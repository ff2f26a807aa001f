package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPermissions(t *testing.T) {
	tests := []struct {
		role  string
		allow []string
		deny  []string
	}{
		{RoleAdministrator, []string{AreaSettings, AreaBilling, AreaReports}, nil},
		{RoleVeterinarian, []string{AreaRecords, AreaBilling, AreaReports}, []string{AreaSettings}},
		{RoleNurse, []string{AreaPets, AreaInventory}, []string{AreaBilling, AreaReports, AreaSettings}},
		{RoleTechnician, []string{AreaRecords}, []string{AreaBilling, AreaReports, AreaSettings}},
		{RoleReceptionist, []string{AreaAppointments, AreaBilling}, []string{AreaRecords, AreaInventory, AreaSettings}},
		// Unknown roles fail closed.
		{"unknown", nil, []string{AreaPets, AreaSettings}},
	}

	for _, tt := range tests {
		p := DefaultPermissions(tt.role)
		for _, area := range tt.allow {
			assert.True(t, p.Allows(area), "%s should allow %s", tt.role, area)
		}
		for _, area := range tt.deny {
			assert.False(t, p.Allows(area), "%s should deny %s", tt.role, area)
		}
	}

	assert.False(t, DefaultPermissions(RoleAdministrator).Allows("nonsense"))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleNurse))
	assert.False(t, ValidRole("admin"))
	assert.False(t, ValidRole(""))
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		assert.Equal(t, tt.wantErr, err != nil, "ValidatePassword(%q) error = %v", tt.password, err)
	}
}
