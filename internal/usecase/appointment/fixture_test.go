package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/domain/holiday"
	"github.com/clinicportal/clinic-scheduler/internal/identity"
	"github.com/clinicportal/clinic-scheduler/internal/infra/lock"
	"github.com/clinicportal/clinic-scheduler/internal/infra/repository/memrepo"
	"github.com/clinicportal/clinic-scheduler/internal/metrics"
	"github.com/clinicportal/clinic-scheduler/internal/models"
	"github.com/clinicportal/clinic-scheduler/internal/notify"
	"github.com/clinicportal/clinic-scheduler/internal/timezone"
)

// The clinic clock starts on Wednesday 2026-10-14 at 09:00 UTC.
var (
	today     = caltime.NewDate(2026, time.October, 14)
	yesterday = today.AddDays(-1)
	monday    = caltime.NewDate(2026, time.October, 19)
	tuesday   = caltime.NewDate(2026, time.October, 20)
	saturday  = caltime.NewDate(2026, time.October, 17)
)

func tod(s string) caltime.TimeOfDay { return caltime.MustParseTimeOfDay(s) }

func at(d caltime.Date, clock string) time.Time {
	return d.At(tod(clock), time.UTC)
}

var staff = identity.Identity{UserID: "u-staff", Role: identity.RoleClinicalStaff}

func patient(id string) identity.Identity {
	return identity.Identity{UserID: "u-" + id, Role: identity.RolePatient, PatientID: id}
}

func doctor(id string) identity.Identity {
	return identity.Identity{UserID: "u-" + id, Role: identity.RoleDoctor, DoctorID: id}
}

// recorder captures notifications synchronously.
type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Notify(ev notify.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func (r *recorder) last() notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	repo  *memrepo.Store
	clock *timezone.FixedClock
	notes *recorder
	reg   *prometheus.Registry
	deps  Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := memrepo.New()
	reg := prometheus.NewRegistry()
	clock := timezone.NewFixedClock(at(today, "09:00"))
	notes := &recorder{}

	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		repo:  repo,
		clock: clock,
		notes: notes,
		reg:   reg,
		deps: Deps{
			Repo:     repo,
			Holidays: holiday.NewRegistry(repo),
			Locker:   lock.NewLocalLocker(5 * time.Second),
			Clock:    clock,
			Notifier: notes,
			Metrics:  metrics.NewSchedulingMetrics(reg),
			Log:      zerolog.Nop(),
		},
	}
	f.weekdayDoctor("d1")
	return f
}

// weekdayDoctor stores a Monday to Friday 09:00-17:00 profile.
func (f *fixture) weekdayDoctor(id string) {
	start, end := tod("09:00"), tod("17:00")
	require.NoError(f.t, f.repo.SaveAvailabilityProfile(f.ctx, &models.DoctorAvailability{
		DoctorID:          id,
		AvailableDays:     []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
		WorkingHoursStart: &start,
		WorkingHoursEnd:   &end,
		IsAvailable:       true,
	}))
}

func (f *fixture) holiday(name string, from, to caltime.Date) {
	require.NoError(f.t, f.repo.CreateHoliday(f.ctx, &models.Holiday{
		Name:               name,
		StartDate:          from,
		EndDate:            to,
		BlocksAppointments: true,
	}))
}

func (f *fixture) availability(doctorID string, d caltime.Date) domain.AvailabilityResult {
	f.t.Helper()
	res, err := NewGetAvailability(f.deps).Execute(f.ctx, domain.AvailabilityInput{
		Doctor: domain.Assigned(doctorID),
		Date:   d,
	})
	require.NoError(f.t, err)
	return res
}

func (f *fixture) create(actor identity.Identity, patientID, doctorID string, d caltime.Date, clock string) (*models.Appointment, error) {
	return NewCreateAppointment(f.deps).Execute(f.ctx, CreateAppointmentInput{
		Actor:     actor,
		PatientID: patientID,
		Doctor:    domain.Assigned(doctorID),
		Date:      d,
		Time:      tod(clock),
		Reason:    "follow-up visit",
	})
}

func (f *fixture) mustCreate(patientID, doctorID string, d caltime.Date, clock string) *models.Appointment {
	f.t.Helper()
	ap, err := f.create(staff, patientID, doctorID, d, clock)
	require.NoError(f.t, err)
	return ap
}

func (f *fixture) mustConfirm(ap *models.Appointment) *models.Appointment {
	f.t.Helper()
	out, err := NewConfirmAppointment(f.deps).Execute(f.ctx, staff, ap.ID)
	require.NoError(f.t, err)
	return out
}

func (f *fixture) stored(id string) *models.Appointment {
	f.t.Helper()
	ap, err := f.repo.GetAppointment(f.ctx, id)
	require.NoError(f.t, err)
	return ap
}
