package appointment

import (
	"context"
	"sort"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/timezone"
)

// GetAvailability lists bookable slots. Results are advisory; the guard
// decides at commit time. A blocked or fully booked day is an empty list,
// never an error.
type GetAvailability struct {
	deps Deps
}

func NewGetAvailability(deps Deps) *GetAvailability {
	return &GetAvailability{deps: deps.withDefaults()}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) (domain.AvailabilityResult, error) {

	res := domain.AvailabilityResult{
		Date:     in.Date,
		DoctorID: in.Doctor.Ptr(),
		Slots:    []domain.TimeSlot{},
	}
	if in.Date.IsZero() {
		return res, domain.NewValidationError("date", "required")
	}

	// 1. Holiday
	h, err := uc.deps.Holidays.BlockingHoliday(ctx, in.Date)
	if err != nil {
		return res, err
	}
	if h != nil {
		res.BlockedReason = domain.BlockedHoliday
		res.BlockingHoliday = h
		return res, nil
	}

	// 2. Past date
	now := uc.deps.Clock.Now().In(uc.deps.Clock.Location())
	today := timezone.Today(uc.deps.Clock)
	if in.Date.Before(today) {
		res.BlockedReason = domain.BlockedPastDate
		return res, nil
	}

	// 3. Candidates net of bookings
	if doctorID, ok := in.Doctor.DoctorID(); ok {
		err = uc.forDoctor(ctx, doctorID, &res)
	} else {
		err = uc.forAnyDoctor(ctx, &res)
	}
	if err != nil {
		return res, err
	}

	// 4. Elapsed slots of today
	if in.Date == today {
		cutoff := caltime.ClockOf(now)
		kept := res.Slots[:0]
		for _, s := range res.Slots {
			if s.Time >= cutoff {
				kept = append(kept, s)
			}
		}
		res.Slots = kept
	}
	return res, nil
}

func (uc *GetAvailability) forDoctor(ctx context.Context, doctorID string, res *domain.AvailabilityResult) error {
	profile, err := uc.deps.Repo.GetAvailabilityProfile(ctx, doctorID)
	if err != nil {
		return err
	}
	sched := domain.ScheduleFromProfile(profile)
	if !sched.WorksOn(res.Date) {
		res.BlockedReason = offReason(sched)
		return nil
	}

	booked, err := uc.deps.Repo.ListActiveForDoctorOnDate(ctx, doctorID, res.Date)
	if err != nil {
		return err
	}
	taken := make(map[caltime.TimeOfDay]bool, len(booked))
	for _, ap := range booked {
		taken[ap.Time] = true
	}

	for _, t := range sched.CandidateSlots(res.Date) {
		if !taken[t] {
			res.Slots = append(res.Slots, domain.TimeSlot{Time: t})
		}
	}
	return nil
}

// forAnyDoctor keeps a slot while more doctors are free at it than there
// are unassigned requests already waiting for it.
func (uc *GetAvailability) forAnyDoctor(ctx context.Context, res *domain.AvailabilityResult) error {
	free, pending, onShift, err := freeDoctors(ctx, uc.deps.Repo, res.Date, "")
	if err != nil {
		return err
	}
	if !onShift {
		res.BlockedReason = domain.BlockedNoDoctorsOnShift
		return nil
	}

	times := make([]caltime.TimeOfDay, 0, len(free))
	for t := range free {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	for _, t := range times {
		if len(free[t]) <= pending[t] {
			continue
		}
		res.Slots = append(res.Slots, domain.TimeSlot{Time: t, FreeDoctors: free[t]})
	}
	return nil
}

// freeDoctors maps each slot to the sorted ids of doctors working it with
// no booking, and counts unassigned requests per slot, skipping excludeID.
// onShift is false when no profiled doctor works on date.
func freeDoctors(
	ctx context.Context,
	repo domain.Repository,
	date caltime.Date,
	excludeID string,
) (free map[caltime.TimeOfDay][]string, pending map[caltime.TimeOfDay]int, onShift bool, err error) {

	profiles, err := repo.ListAvailabilityProfiles(ctx)
	if err != nil {
		return nil, nil, false, err
	}

	schedules := make(map[string]domain.Schedule, len(profiles))
	for i := range profiles {
		sched := domain.ScheduleFromProfile(&profiles[i])
		if sched.WorksOn(date) {
			schedules[profiles[i].DoctorID] = sched
		}
	}
	if len(schedules) == 0 {
		return nil, nil, false, nil
	}

	active, err := repo.ListActiveForDate(ctx, date)
	if err != nil {
		return nil, nil, false, err
	}
	booked := map[string]map[caltime.TimeOfDay]bool{}
	pending = map[caltime.TimeOfDay]int{}
	for _, ap := range active {
		if excludeID != "" && ap.ID == excludeID {
			continue
		}
		id := ap.DoctorIDOrEmpty()
		if id == "" {
			pending[ap.Time]++
			continue
		}
		if booked[id] == nil {
			booked[id] = map[caltime.TimeOfDay]bool{}
		}
		booked[id][ap.Time] = true
	}

	free = map[caltime.TimeOfDay][]string{}
	for id, sched := range schedules {
		for _, t := range sched.CandidateSlots(date) {
			if !booked[id][t] {
				free[t] = append(free[t], id)
			}
		}
	}
	for t := range free {
		sort.Strings(free[t])
	}
	return free, pending, true, nil
}

// freeDoctorsAt lists doctors free at one slot, ignoring waiting requests.
func (uc *GetAvailability) freeDoctorsAt(ctx context.Context, date caltime.Date, at caltime.TimeOfDay) ([]string, error) {
	free, _, _, err := freeDoctors(ctx, uc.deps.Repo, date, "")
	if err != nil {
		return nil, err
	}
	return free[at], nil
}

func offReason(s domain.Schedule) string {
	if !s.Available {
		return domain.BlockedDoctorOff
	}
	return domain.BlockedNotWorkingDay
}
