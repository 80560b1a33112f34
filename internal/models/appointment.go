package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
)

type Appointment struct {
	ID string `gorm:"primaryKey;type:varchar(36)" json:"id"`

	PatientID string  `gorm:"size:36;not null;index" json:"patient_id"`
	DoctorID  *string `gorm:"size:36;index" json:"doctor_id"`

	Date            caltime.Date      `gorm:"type:date;not null;index" json:"date"`
	Time            caltime.TimeOfDay `gorm:"type:varchar(5);not null" json:"time"`
	DurationMinutes int               `gorm:"not null;default:30" json:"duration_minutes"`

	Status   string `gorm:"size:20;not null;index" json:"status"`
	Priority string `gorm:"size:10;not null" json:"priority"`
	Reason   string `gorm:"size:500;not null" json:"reason"`

	CancellationReason string            `gorm:"size:500" json:"cancellation_reason,omitempty"`
	RescheduleReason   string            `gorm:"size:500" json:"reschedule_reason,omitempty"`
	CompletionReport   *CompletionReport `gorm:"type:jsonb;serializer:json" json:"completion_report,omitempty"`

	ConfirmedAt *time.Time `json:"confirmed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompletionReport is the clinical summary attached when a visit is completed.
type CompletionReport struct {
	Diagnosis             string        `json:"diagnosis"`
	TreatmentProvided     string        `json:"treatment_provided"`
	MedicationsPrescribed string        `json:"medications_prescribed,omitempty"`
	Recommendations       string        `json:"recommendations,omitempty"`
	FollowUpRequired      bool          `json:"follow_up_required"`
	FollowUpDate          *caltime.Date `json:"follow_up_date,omitempty"`
	Notes                 string        `json:"notes,omitempty"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// DoctorIDOrEmpty is "" while the appointment waits for a doctor.
func (a *Appointment) DoctorIDOrEmpty() string {
	if a.DoctorID == nil {
		return ""
	}
	return *a.DoctorID
}

// Clone copies the appointment, including the pointer fields.
func (a *Appointment) Clone() *Appointment {
	out := *a
	if a.DoctorID != nil {
		id := *a.DoctorID
		out.DoctorID = &id
	}
	if a.CompletionReport != nil {
		rep := *a.CompletionReport
		if rep.FollowUpDate != nil {
			d := *rep.FollowUpDate
			rep.FollowUpDate = &d
		}
		out.CompletionReport = &rep
	}
	out.ConfirmedAt = cloneTime(a.ConfirmedAt)
	out.CancelledAt = cloneTime(a.CancelledAt)
	out.CompletedAt = cloneTime(a.CompletedAt)
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
