package model

import "time"

// Clinic is a tenant together with its settings.
type Clinic struct {
	ID                   int64     `json:"id"`
	ClinicCode           string    `json:"clinic_code"`
	ClinicName           string    `json:"clinic_name" validate:"required,max=200"`
	Address              string    `json:"address"`
	Phone                string    `json:"phone"`
	Email                string    `json:"email" validate:"omitempty,email"`
	Timezone             string    `json:"timezone"`
	AppointmentDuration  int       `json:"appointment_duration" validate:"gt=0"`
	WorkingHoursStart    string    `json:"working_hours_start"`
	WorkingHoursEnd      string    `json:"working_hours_end"`
	EmailNotifications   bool      `json:"email_notifications"`
	SMSNotifications     bool      `json:"sms_notifications"`
	AppointmentReminders bool      `json:"appointment_reminders"`
	AutoBackup           bool      `json:"auto_backup"`
	BackupFrequency      string    `json:"backup_frequency" validate:"oneof=HOURLY DAILY WEEKLY"`
	Theme                string    `json:"theme" validate:"oneof=LIGHT DARK SYSTEM"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Backup frequencies.
const (
	BackupHourly = "HOURLY"
	BackupDaily  = "DAILY"
	BackupWeekly = "WEEKLY"
)

// Themes.
const (
	ThemeLight  = "LIGHT"
	ThemeDark   = "DARK"
	ThemeSystem = "SYSTEM"
)

// NewClinic returns a clinic with default settings.
func NewClinic(code, name string) *Clinic {
	return &Clinic{
		ClinicCode:           code,
		ClinicName:           name,
		Timezone:             "UTC",
		AppointmentDuration:  30,
		WorkingHoursStart:    "08:00",
		WorkingHoursEnd:      "18:00",
		EmailNotifications:   true,
		AppointmentReminders: true,
		AutoBackup:           true,
		BackupFrequency:      BackupDaily,
		Theme:                ThemeLight,
	}
}
