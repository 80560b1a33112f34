package models

import (
	"time"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
)

// DoctorAvailability is a doctor's weekly schedule. Missing working hours
// mean the clinic default; a missing break means none.
type DoctorAvailability struct {
	DoctorID string `gorm:"primaryKey;type:varchar(36)" json:"doctor_id"`

	AvailableDays []string `gorm:"type:jsonb;serializer:json" json:"available_days"`

	WorkingHoursStart *caltime.TimeOfDay `gorm:"type:varchar(5)" json:"working_hours_start"`
	WorkingHoursEnd   *caltime.TimeOfDay `gorm:"type:varchar(5)" json:"working_hours_end"`
	BreakStart        *caltime.TimeOfDay `gorm:"type:varchar(5)" json:"break_start"`
	BreakEnd          *caltime.TimeOfDay `gorm:"type:varchar(5)" json:"break_end"`

	// no gorm default: a false toggle must be persisted as false
	IsAvailable bool `gorm:"not null" json:"is_available"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DoctorAvailability) TableName() string {
	return "doctor_availabilities"
}
