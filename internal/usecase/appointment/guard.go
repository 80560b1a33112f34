package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/timezone"
)

// Reservation is one (doctor, patient, date, time) claim. ExcludeID is the
// appointment being moved or assigned, which must not conflict with itself.
type Reservation struct {
	Doctor    domain.DoctorAssignment
	PatientID string
	Date      caltime.Date
	Time      caltime.TimeOfDay
	ExcludeID string
}

func (r Reservation) lockKeys() []string {
	keys := []string{fmt.Sprintf("patient:%s:%s", r.PatientID, r.Date)}
	if id, ok := r.Doctor.DoctorID(); ok {
		keys = append(keys, fmt.Sprintf("slot:%s:%s:%s", id, r.Date, r.Time))
	} else {
		keys = append(keys, fmt.Sprintf("slot:any:%s:%s", r.Date, r.Time))
	}
	return keys
}

// SlotGuard is the check-then-write unit for create, assign and
// reschedule.
type SlotGuard struct {
	deps Deps
}

func NewSlotGuard(deps Deps) *SlotGuard {
	return &SlotGuard{deps: deps.withDefaults()}
}

// Reserve runs the guard checks and, when they pass, write, all under the
// per-key locks and in one store transaction. write sees the transaction
// repository.
func (g *SlotGuard) Reserve(
	ctx context.Context,
	r Reservation,
	write func(tx domain.Repository) error,
) error {

	// 1. Static checks: input shape, holiday, past date, working hours
	if err := g.Precheck(ctx, r); err != nil {
		return err
	}

	// 2. Per-key serialization
	start := time.Now()
	unlock, err := g.deps.Locker.Lock(ctx, r.lockKeys()...)
	g.deps.Metrics.ObserveLockWait(time.Since(start).Seconds())
	if err != nil {
		return domain.StoreUnavailableError{Op: "acquire slot lock", Err: err}
	}
	defer unlock()

	// 3. Occupancy checks and write, atomically
	return g.deps.Repo.Transaction(ctx, func(tx domain.Repository) error {
		if err := checkFree(ctx, tx, r); err != nil {
			return err
		}
		return write(tx)
	})
}

// Precheck covers everything that does not depend on current bookings.
func (g *SlotGuard) Precheck(ctx context.Context, r Reservation) error {
	if r.Date.IsZero() {
		return domain.NewValidationError("date", "required")
	}
	if !r.Time.Valid() || !r.Time.Aligned(domain.SlotMinutes) {
		return domain.NewValidationError("time", "not_slot_aligned")
	}

	if err := g.checkHoliday(ctx, r.Date); err != nil {
		return err
	}

	today := timezone.Today(g.deps.Clock)
	if r.Date.Before(today) {
		return domain.PastDateError{Date: r.Date, Today: today}
	}

	doctorID, ok := r.Doctor.DoctorID()
	if !ok {
		return g.checkAnyDoctorWorks(ctx, r)
	}
	profile, err := g.deps.Repo.GetAvailabilityProfile(ctx, doctorID)
	if err != nil {
		return err
	}
	if !domain.ScheduleFromProfile(profile).Offers(r.Date, r.Time) {
		return domain.NewValidationError("time", "outside_working_hours")
	}
	return nil
}

// checkAnyDoctorWorks rejects unassigned requests for a slot no profiled
// doctor works.
func (g *SlotGuard) checkAnyDoctorWorks(ctx context.Context, r Reservation) error {
	profiles, err := g.deps.Repo.ListAvailabilityProfiles(ctx)
	if err != nil {
		return err
	}
	for i := range profiles {
		if domain.ScheduleFromProfile(&profiles[i]).Offers(r.Date, r.Time) {
			return nil
		}
	}
	return domain.NewValidationError("time", "outside_working_hours")
}

func (g *SlotGuard) checkHoliday(ctx context.Context, date caltime.Date) error {
	h, err := g.deps.Holidays.BlockingHoliday(ctx, date)
	if err != nil || h == nil {
		return err
	}

	alts, err := g.deps.Holidays.SuggestAlternatives(ctx, date, g.deps.Alternatives)
	if err != nil {
		return err
	}
	return domain.HolidayBlockedError{
		Date:         date,
		HolidayID:    h.ID,
		HolidayName:  h.Name,
		Alternatives: alts,
	}
}

func checkFree(ctx context.Context, tx domain.Repository, r Reservation) error {
	if doctorID, ok := r.Doctor.DoctorID(); ok {
		taken, err := tx.FindActiveAtSlot(ctx, doctorID, r.Date, r.Time, r.ExcludeID)
		if err != nil {
			return err
		}
		if taken != nil {
			return domain.SlotConflictError{Reason: domain.ConflictSlotTaken}
		}
	} else {
		// an unassigned request needs a free doctor not already claimed by
		// another waiting request
		free, pending, _, err := freeDoctors(ctx, tx, r.Date, r.ExcludeID)
		if err != nil {
			return err
		}
		if len(free[r.Time]) <= pending[r.Time] {
			return domain.SlotConflictError{Reason: domain.ConflictSlotTaken}
		}
	}

	booked, err := tx.FindActiveForPatientOnDate(ctx, r.PatientID, r.Date, r.ExcludeID)
	if err != nil {
		return err
	}
	if booked != nil {
		return domain.SlotConflictError{Reason: domain.ConflictPatientDoubleBooked}
	}
	return nil
}
