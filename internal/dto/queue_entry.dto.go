package dto

import (
	"time"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
)

// QueueEntryDTO is one row of a prioritized appointment queue.
type QueueEntryDTO struct {
	Position  int               `json:"position"`
	ID        string            `json:"id"`
	PatientID string            `json:"patient_id"`
	DoctorID  *string           `json:"doctor_id"`
	Date      caltime.Date      `json:"date"`
	Time      caltime.TimeOfDay `json:"time"`
	Status    string            `json:"status"`
	Priority  string            `json:"priority"`
	Reason    string            `json:"reason"`
	CreatedAt time.Time         `json:"created_at"`
}
