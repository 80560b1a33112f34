package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
)

type Holiday struct {
	ID string `gorm:"primaryKey;type:varchar(36)" json:"id"`

	Name        string       `gorm:"size:120;not null" json:"name"`
	StartDate   caltime.Date `gorm:"type:date;not null;index" json:"start_date"`
	EndDate     caltime.Date `gorm:"type:date;not null;index" json:"end_date"`
	Type        string       `gorm:"size:30" json:"type"`
	Description string       `gorm:"size:255" json:"description,omitempty"`

	BlocksAppointments bool `gorm:"not null" json:"blocks_appointments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *Holiday) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

// Covers reports whether d falls in the inclusive range of h.
func (h Holiday) Covers(d caltime.Date) bool {
	return d.Between(h.StartDate, h.EndDate)
}
