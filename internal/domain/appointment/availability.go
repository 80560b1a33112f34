package appointment

import (
	"github.com/clinicportal/clinic-scheduler/internal/caltime"
	"github.com/clinicportal/clinic-scheduler/internal/models"
)

type AvailabilityInput struct {
	Doctor DoctorAssignment
	Date   caltime.Date
}

// Blocked reasons reported alongside an empty slot list.
const (
	BlockedHoliday          = "holiday"
	BlockedPastDate         = "past_date"
	BlockedDoctorOff        = "doctor_unavailable"
	BlockedNotWorkingDay    = "not_working_day"
	BlockedNoDoctorsOnShift = "no_doctors_available"
)

type TimeSlot struct {
	Time caltime.TimeOfDay `json:"time"`
	// FreeDoctors is filled for doctor-agnostic queries only.
	FreeDoctors []string `json:"free_doctors,omitempty"`
}

type AvailabilityResult struct {
	Date            caltime.Date    `json:"date"`
	DoctorID        *string         `json:"doctor_id"`
	Slots           []TimeSlot      `json:"slots"`
	BlockedReason   string          `json:"blocked_reason,omitempty"`
	BlockingHoliday *models.Holiday `json:"blocking_holiday,omitempty"`
}

func (r AvailabilityResult) Times() []caltime.TimeOfDay {
	out := make([]caltime.TimeOfDay, 0, len(r.Slots))
	for _, s := range r.Slots {
		out = append(out, s.Time)
	}
	return out
}

// FreeDoctorsAt returns the diagnostics for t, or nil when t is not offered.
func (r AvailabilityResult) FreeDoctorsAt(t caltime.TimeOfDay) []string {
	for _, s := range r.Slots {
		if s.Time == t {
			return s.FreeDoctors
		}
	}
	return nil
}
