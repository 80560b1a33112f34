package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/infra/lock"
	"github.com/clinicportal/clinic-scheduler/internal/models"
)

// ======================================================
// SLOT EXCLUSIVITY
// ======================================================

func TestCreate_ConcurrentRequestsForOneSlot(t *testing.T) {
	f := newFixture(t)

	const n = 10
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		errs []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.create(staff, fmt.Sprintf("p%d", i), "d1", monday, "10:00")

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
				return
			}
			errs = append(errs, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	require.Len(t, errs, n-1)
	for _, err := range errs {
		assert.True(t, domain.IsConflict(err, domain.ConflictSlotTaken), "got %v", err)
	}

	active, err := f.repo.ListActiveForDoctorOnDate(f.ctx, "d1", monday)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestCreate_ConcurrentRequestsForOnePatient(t *testing.T) {
	f := newFixture(t)
	f.weekdayDoctor("d2")

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, doc := range []string{"d1", "d2"} {
		wg.Add(1)
		go func(i int, doc string) {
			defer wg.Done()
			_, results[i] = f.create(staff, "p1", doc, monday, "10:00")
		}(i, doc)
	}
	wg.Wait()

	failures := 0
	for _, err := range results {
		if err != nil {
			failures++
			assert.True(t, domain.IsConflict(err, domain.ConflictPatientDoubleBooked), "got %v", err)
		}
	}
	assert.Equal(t, 1, failures)
}

func TestCreate_PatientExclusivityAcrossDoctors(t *testing.T) {
	f := newFixture(t)
	f.weekdayDoctor("d2")

	f.mustCreate("p1", "d1", monday, "10:00")

	_, err := f.create(staff, "p1", "d2", monday, "15:00")
	assert.True(t, domain.IsConflict(err, domain.ConflictPatientDoubleBooked), "got %v", err)

	// unassigned requests count too
	_, err = f.create(staff, "p1", "", monday, "15:00")
	assert.True(t, domain.IsConflict(err, domain.ConflictPatientDoubleBooked), "got %v", err)

	// another day is fine
	_, err = f.create(staff, "p1", "d2", tuesday, "15:00")
	require.NoError(t, err)
}

func TestCreate_UnassignedNeedsADoctorOnShift(t *testing.T) {
	f := newFixture(t)

	for _, tt := range []struct {
		name string
		date caltime.Date
		at   string
	}{
		{"weekend", saturday, "10:00"},
		{"night", monday, "03:00"},
		{"after hours", monday, "17:00"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.create(staff, "p1", "", tt.date, tt.at)

			var verr domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "time", verr.Field)
			assert.Equal(t, "outside_working_hours", verr.Reason)
		})
	}

	for _, d := range []caltime.Date{saturday, monday} {
		active, err := f.repo.ListActiveForDate(f.ctx, d)
		require.NoError(t, err)
		assert.Empty(t, active)
	}
}

func TestCreate_UnassignedCapacityFollowsFreeDoctors(t *testing.T) {
	f := newFixture(t)
	f.weekdayDoctor("d2")
	f.mustCreate("p0", "d1", monday, "10:00")

	// d2 is the only free doctor: one waiting request fits
	_, err := f.create(staff, "p1", "", monday, "10:00")
	require.NoError(t, err)

	_, err = f.create(staff, "p2", "", monday, "10:00")
	assert.True(t, domain.IsConflict(err, domain.ConflictSlotTaken), "got %v", err)

	// the slot is gone from any-doctor availability as well
	res, err := NewGetAvailability(f.deps).Execute(f.ctx, domain.AvailabilityInput{Date: monday})
	require.NoError(t, err)
	assert.NotContains(t, times(res), "10:00")
}

func TestCreate_ConcurrentUnassignedRequestsForOneSlot(t *testing.T) {
	f := newFixture(t)
	f.weekdayDoctor("d2")

	const n = 6
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		errs []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.create(staff, fmt.Sprintf("p%d", i), "", monday, "10:00")

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
				return
			}
			errs = append(errs, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 2, ok)
	require.Len(t, errs, n-2)
	for _, err := range errs {
		assert.True(t, domain.IsConflict(err, domain.ConflictSlotTaken), "got %v", err)
	}
}

// ======================================================
// PRECHECKS
// ======================================================

func TestCreate_RejectsPastDates(t *testing.T) {
	f := newFixture(t)

	for _, clock := range []string{"09:00", "16:30", "00:00"} {
		_, err := f.create(staff, "p1", "d1", yesterday, clock)
		var past domain.PastDateError
		require.ErrorAs(t, err, &past, clock)
		assert.Equal(t, today, past.Today)
	}

	// today is still bookable
	_, err := f.create(staff, "p1", "d1", today, "15:00")
	require.NoError(t, err)
}

func TestReschedule_RejectsPastDates(t *testing.T) {
	f := newFixture(t)

	ap := f.mustCreate("p1", "d1", monday, "10:00")

	_, err := NewRescheduleAppointment(f.deps).Execute(f.ctx, RescheduleAppointmentInput{
		Actor:         staff,
		AppointmentID: ap.ID,
		NewDate:       yesterday,
		NewTime:       tod("10:00"),
		Reason:        "earlier",
	})
	assert.Equal(t, "past_date", domain.CodeOf(err))
	assert.Equal(t, monday, f.stored(ap.ID).Date)
}

func TestReschedule_RejectsHolidays(t *testing.T) {
	f := newFixture(t)

	ap := f.mustCreate("p1", "d1", monday, "10:00")
	f.holiday("Founders Day", tuesday, tuesday)

	_, err := NewRescheduleAppointment(f.deps).Execute(f.ctx, RescheduleAppointmentInput{
		Actor:         staff,
		AppointmentID: ap.ID,
		NewDate:       tuesday,
		NewTime:       tod("10:00"),
		Reason:        "travel",
	})
	var blocked domain.HolidayBlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "Founders Day", blocked.HolidayName)
	assert.Equal(t, tuesday, blocked.Date)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name  string
		in    CreateAppointmentInput
		field string
		code  string
	}{
		{
			name:  "missing patient",
			in:    CreateAppointmentInput{Actor: staff, Doctor: domain.Assigned("d1"), Date: monday, Time: tod("10:00"), Reason: "x"},
			field: "patient_id",
			code:  "required",
		},
		{
			name:  "blank reason",
			in:    CreateAppointmentInput{Actor: staff, PatientID: "p1", Doctor: domain.Assigned("d1"), Date: monday, Time: tod("10:00"), Reason: "  "},
			field: "reason",
			code:  "required",
		},
		{
			name:  "unknown priority",
			in:    CreateAppointmentInput{Actor: staff, PatientID: "p1", Doctor: domain.Assigned("d1"), Date: monday, Time: tod("10:00"), Reason: "x", Priority: "asap"},
			field: "priority",
			code:  "invalid_priority",
		},
		{
			name:  "missing date",
			in:    CreateAppointmentInput{Actor: staff, PatientID: "p1", Doctor: domain.Assigned("d1"), Time: tod("10:00"), Reason: "x"},
			field: "date",
			code:  "required",
		},
		{
			name:  "off the slot grid",
			in:    CreateAppointmentInput{Actor: staff, PatientID: "p1", Doctor: domain.Assigned("d1"), Date: monday, Time: tod("10:15"), Reason: "x"},
			field: "time",
			code:  "not_slot_aligned",
		},
		{
			name:  "after hours",
			in:    CreateAppointmentInput{Actor: staff, PatientID: "p1", Doctor: domain.Assigned("d1"), Date: monday, Time: tod("17:00"), Reason: "x"},
			field: "time",
			code:  "outside_working_hours",
		},
		{
			name:  "weekend",
			in:    CreateAppointmentInput{Actor: staff, PatientID: "p1", Doctor: domain.Assigned("d1"), Date: saturday, Time: tod("10:00"), Reason: "x"},
			field: "time",
			code:  "outside_working_hours",
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCreateAppointment(f.deps).Execute(f.ctx, tt.in)

			var verr domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.code, verr.Reason)
		})
	}

	active, err := f.repo.ListActiveForDate(f.ctx, monday)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestCreate_RespectsBreaks(t *testing.T) {
	f := newFixture(t)

	profile, err := f.repo.GetAvailabilityProfile(f.ctx, "d1")
	require.NoError(t, err)
	bs, be := tod("12:00"), tod("13:00")
	profile.BreakStart, profile.BreakEnd = &bs, &be
	require.NoError(t, f.repo.SaveAvailabilityProfile(f.ctx, profile))

	_, err = f.create(staff, "p1", "d1", monday, "12:30")
	assert.Equal(t, "outside_working_hours", domain.CodeOf(err))

	res := f.availability("d1", monday)
	assert.Len(t, res.Slots, 14)
	assert.NotContains(t, times(res), "12:00")
	assert.NotContains(t, times(res), "12:30")
}

func TestCreate_EveryListedSlotIsBookable(t *testing.T) {
	f := newFixture(t)

	// stored directly, as a row saved before hours were checked for alignment
	start, end := tod("09:15"), tod("11:15")
	require.NoError(t, f.repo.SaveAvailabilityProfile(f.ctx, &models.DoctorAvailability{
		DoctorID:          "d9",
		AvailableDays:     []string{"monday"},
		WorkingHoursStart: &start,
		WorkingHoursEnd:   &end,
		IsAvailable:       true,
	}))

	res := f.availability("d9", monday)
	require.Equal(t, []string{"09:30", "10:00", "10:30"}, times(res))

	for i, slot := range times(res) {
		_, err := f.create(staff, fmt.Sprintf("p%d", i), "d9", monday, slot)
		require.NoError(t, err, slot)
	}
	assert.Empty(t, f.availability("d9", monday).Slots)
}

func TestCreate_DoctorWithoutProfileUsesClinicDefaults(t *testing.T) {
	f := newFixture(t)

	_, err := f.create(staff, "p1", "d9", monday, "09:00")
	require.NoError(t, err)

	_, err = f.create(staff, "p2", "d9", saturday, "09:00")
	assert.Equal(t, "outside_working_hours", domain.CodeOf(err))
}

// ======================================================
// AUTHORIZATION
// ======================================================

func TestAuthorization(t *testing.T) {
	f := newFixture(t)

	// patients book only for themselves
	_, err := f.create(patient("p1"), "p2", "d1", monday, "10:00")
	assert.Equal(t, "forbidden", domain.CodeOf(err))
	_, err = f.create(doctor("d1"), "p2", "d1", monday, "10:00")
	assert.Equal(t, "forbidden", domain.CodeOf(err))

	ap := f.mustCreate("p1", "d1", monday, "10:00")

	// confirm is for the bound doctor or staff
	_, err = NewConfirmAppointment(f.deps).Execute(f.ctx, patient("p1"), ap.ID)
	assert.Equal(t, "forbidden", domain.CodeOf(err))
	_, err = NewConfirmAppointment(f.deps).Execute(f.ctx, doctor("d2"), ap.ID)
	assert.Equal(t, "forbidden", domain.CodeOf(err))
	_, err = NewConfirmAppointment(f.deps).Execute(f.ctx, doctor("d1"), ap.ID)
	require.NoError(t, err)

	// someone else's patient
	_, err = NewCancelAppointment(f.deps).Execute(f.ctx, CancelAppointmentInput{
		Actor: patient("p2"), AppointmentID: ap.ID, Reason: "x",
	})
	assert.Equal(t, "forbidden", domain.CodeOf(err))

	// patients never complete
	f.clock.Set(at(monday, "10:30"))
	_, err = NewCompleteAppointment(f.deps).Execute(f.ctx, CompleteAppointmentInput{
		Actor: patient("p1"), AppointmentID: ap.ID, Report: validCompletion(),
	})
	assert.Equal(t, "forbidden", domain.CodeOf(err))

	assert.Equal(t, string(domain.StatusConfirmed), f.stored(ap.ID).Status)
}

// ======================================================
// STORE FAILURES
// ======================================================

type failingLocker struct{ err error }

func (l failingLocker) Lock(context.Context, ...string) (lock.Unlock, error) {
	return nil, l.err
}

func TestCreate_StoreFailuresAreReportedAndLeaveNoTrace(t *testing.T) {
	f := newFixture(t)

	boom := errors.New("connection reset")
	f.repo.Fail(domain.StoreUnavailableError{Op: "query", Err: boom})
	_, err := f.create(staff, "p1", "d1", monday, "10:00")
	assert.Equal(t, "store_unavailable", domain.CodeOf(err))
	assert.ErrorIs(t, err, boom)
	f.repo.Fail(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewCreateAppointment(f.deps).Execute(ctx, CreateAppointmentInput{
		Actor:     staff,
		PatientID: "p1",
		Doctor:    domain.Assigned("d1"),
		Date:      monday,
		Time:      tod("10:00"),
		Reason:    "x",
	})
	assert.Equal(t, "store_unavailable", domain.CodeOf(err))
	assert.ErrorIs(t, err, context.Canceled)

	active, err := f.repo.ListActiveForDate(f.ctx, monday)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestCreate_LockFailure(t *testing.T) {
	f := newFixture(t)
	f.deps.Locker = failingLocker{err: errors.New("redis down")}

	_, err := f.create(staff, "p1", "d1", monday, "10:00")
	var su domain.StoreUnavailableError
	require.ErrorAs(t, err, &su)
	assert.Equal(t, "acquire slot lock", su.Op)
}

// ======================================================
// METRICS
// ======================================================

func TestMetrics_CountOutcomes(t *testing.T) {
	f := newFixture(t)

	f.mustCreate("p1", "d1", monday, "10:00")
	_, err := f.create(staff, "p2", "d1", monday, "10:00")
	require.Error(t, err)
	_, err = f.create(staff, "p1", "d1", monday, "11:00")
	require.Error(t, err)

	expected := `
# HELP clinic_scheduling_conflicts_total Reservations rejected by the slot conflict guard
# TYPE clinic_scheduling_conflicts_total counter
clinic_scheduling_conflicts_total{reason="patient_double_booked"} 1
clinic_scheduling_conflicts_total{reason="slot_taken"} 1
`
	require.NoError(t, testutil.GatherAndCompare(f.reg, strings.NewReader(expected), "clinic_scheduling_conflicts_total"))

	expected = `
# HELP clinic_scheduling_transitions_total Appointment operations by action and result code
# TYPE clinic_scheduling_transitions_total counter
clinic_scheduling_transitions_total{action="create",result="ok"} 1
clinic_scheduling_transitions_total{action="create",result="patient_double_booked"} 1
clinic_scheduling_transitions_total{action="create",result="slot_taken"} 1
`
	require.NoError(t, testutil.GatherAndCompare(f.reg, strings.NewReader(expected), "clinic_scheduling_transitions_total"))
}

func TestMetrics_TimeGateDenials(t *testing.T) {
	f := newFixture(t)

	ap := f.mustConfirm(f.mustCreate("p1", "d1", monday, "10:00"))
	_, err := NewCompleteAppointment(f.deps).Execute(f.ctx, CompleteAppointmentInput{
		Actor: doctor("d1"), AppointmentID: ap.ID, Report: validCompletion(),
	})
	require.Error(t, err)

	expected := `
# HELP clinic_scheduling_time_gate_denials_total Clinical actions attempted before the appointment start
# TYPE clinic_scheduling_time_gate_denials_total counter
clinic_scheduling_time_gate_denials_total{action="complete"} 1
`
	require.NoError(t, testutil.GatherAndCompare(f.reg, strings.NewReader(expected), "clinic_scheduling_time_gate_denials_total"))
}
