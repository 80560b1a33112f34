package appointment

import (
	"strings"
	"time"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
	"github.com/clinicportal/clinic-scheduler/internal/models"
)

const (
	SlotMinutes            = 30
	DefaultDurationMinutes = 30
)

var (
	DefaultWorkingHoursStart = caltime.NewTimeOfDay(9, 0)
	DefaultWorkingHoursEnd   = caltime.NewTimeOfDay(17, 0)

	defaultDays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
)

// Schedule is the resolved form of a DoctorAvailability profile.
type Schedule struct {
	Days       map[time.Weekday]bool
	Start      caltime.TimeOfDay
	End        caltime.TimeOfDay
	BreakStart *caltime.TimeOfDay
	BreakEnd   *caltime.TimeOfDay
	Available  bool
}

// ScheduleFromProfile resolves a profile. A nil profile is the clinic
// default: Monday to Friday, 09:00-17:00, no break. A profile without
// working hours keeps its days and toggle but uses 09:00-17:00 with no
// break.
func ScheduleFromProfile(p *models.DoctorAvailability) Schedule {
	s := Schedule{
		Days:      map[time.Weekday]bool{},
		Start:     DefaultWorkingHoursStart,
		End:       DefaultWorkingHoursEnd,
		Available: true,
	}

	if p == nil {
		for _, d := range defaultDays {
			s.Days[d] = true
		}
		return s
	}

	for _, name := range p.AvailableDays {
		if wd, ok := ParseWeekday(name); ok {
			s.Days[wd] = true
		}
	}
	s.Available = p.IsAvailable

	if p.WorkingHoursStart != nil && p.WorkingHoursEnd != nil {
		s.Start = *p.WorkingHoursStart
		s.End = *p.WorkingHoursEnd
		if p.BreakStart != nil && p.BreakEnd != nil {
			s.BreakStart = p.BreakStart
			s.BreakEnd = p.BreakEnd
		}
	}
	return s
}

func (s Schedule) WorksOn(date caltime.Date) bool {
	return s.Available && s.Days[date.Weekday()]
}

func (s Schedule) hasBreak() bool {
	return s.BreakStart != nil && s.BreakEnd != nil
}

// overlapsBreak is true when [t, t+slot) touches [breakStart, breakEnd).
func (s Schedule) overlapsBreak(t caltime.TimeOfDay) bool {
	if !s.hasBreak() {
		return false
	}
	end := t.AddMinutes(SlotMinutes)
	return t < *s.BreakEnd && end > *s.BreakStart
}

// CandidateSlots steps from Start, rounded up to a slot boundary, to End in
// SlotMinutes, skipping the break. Empty when the doctor does not work on
// date.
func (s Schedule) CandidateSlots(date caltime.Date) []caltime.TimeOfDay {
	if !s.WorksOn(date) {
		return nil
	}

	var slots []caltime.TimeOfDay
	for cur := s.Start.RoundUp(SlotMinutes); cur.AddMinutes(SlotMinutes) <= s.End; cur = cur.AddMinutes(SlotMinutes) {
		if s.overlapsBreak(cur) {
			continue
		}
		slots = append(slots, cur)
	}
	return slots
}

// Offers reports whether t is one of the candidate slots on date.
func (s Schedule) Offers(date caltime.Date, t caltime.TimeOfDay) bool {
	if !s.WorksOn(date) || !t.Aligned(SlotMinutes) {
		return false
	}
	if t < s.Start || t.AddMinutes(SlotMinutes) > s.End {
		return false
	}
	return !s.overlapsBreak(t)
}

// ===============================
// Profile validation
// ===============================

func ValidateProfile(p *models.DoctorAvailability) error {
	if strings.TrimSpace(p.DoctorID) == "" {
		return NewValidationError("doctor_id", "required")
	}
	for _, name := range p.AvailableDays {
		if _, ok := ParseWeekday(name); !ok {
			return NewValidationError("available_days", "invalid_weekday")
		}
	}

	start, end := p.WorkingHoursStart, p.WorkingHoursEnd
	if (start == nil) != (end == nil) {
		return NewValidationError("working_hours", "incomplete")
	}
	if start != nil {
		if !start.Valid() || !end.Valid() || *start >= *end {
			return NewValidationError("working_hours", "start_must_precede_end")
		}
		if !start.Aligned(SlotMinutes) || !end.Aligned(SlotMinutes) {
			return NewValidationError("working_hours", "not_slot_aligned")
		}
	}

	bs, be := p.BreakStart, p.BreakEnd
	if (bs == nil) != (be == nil) {
		return NewValidationError("break", "incomplete")
	}
	if bs != nil {
		if !bs.Aligned(SlotMinutes) || !be.Aligned(SlotMinutes) {
			return NewValidationError("break", "not_slot_aligned")
		}
		ws, we := DefaultWorkingHoursStart, DefaultWorkingHoursEnd
		if start != nil {
			ws, we = *start, *end
		}
		if *bs >= *be || *bs < ws || *be > we {
			return NewValidationError("break", "outside_working_hours")
		}
	}
	return nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday accepts full English names and three-letter abbreviations,
// case-insensitively.
func ParseWeekday(name string) (time.Weekday, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if wd, ok := weekdayNames[n]; ok {
		return wd, true
	}
	if len(n) == 3 {
		for full, wd := range weekdayNames {
			if strings.HasPrefix(full, n) {
				return wd, true
			}
		}
	}
	return 0, false
}
