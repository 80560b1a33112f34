package memrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/models"
)

var monday = caltime.NewDate(2026, time.October, 19)

func newAppointment(patient, doctor string, at caltime.TimeOfDay) *models.Appointment {
	ap := &models.Appointment{
		PatientID: patient,
		Date:      monday,
		Time:      at,
		Status:    string(domain.StatusScheduled),
		Priority:  string(domain.PriorityNormal),
		Reason:    "checkup",
	}
	if doctor != "" {
		ap.DoctorID = &doctor
	} else {
		ap.Status = string(domain.StatusPending)
	}
	return ap
}

func TestUniqueActiveSlot(t *testing.T) {
	ctx := context.Background()
	s := New()
	ten := caltime.NewTimeOfDay(10, 0)

	first := newAppointment("p1", "d1", ten)
	require.NoError(t, s.CreateAppointment(ctx, first))
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, 30, first.DurationMinutes)

	err := s.CreateAppointment(ctx, newAppointment("p2", "d1", ten))
	assert.True(t, domain.IsConflict(err, domain.ConflictSlotTaken))

	// unassigned requests never collide on the slot index
	require.NoError(t, s.CreateAppointment(ctx, newAppointment("p3", "", ten)))
	require.NoError(t, s.CreateAppointment(ctx, newAppointment("p4", "", ten)))

	// a cancelled appointment frees the slot
	first.Status = string(domain.StatusCancelled)
	require.NoError(t, s.UpdateAppointment(ctx, first))
	require.NoError(t, s.CreateAppointment(ctx, newAppointment("p2", "d1", ten)))
}

func TestUniqueActivePatientDay(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateAppointment(ctx, newAppointment("p1", "d1", caltime.NewTimeOfDay(9, 0))))
	err := s.CreateAppointment(ctx, newAppointment("p1", "d2", caltime.NewTimeOfDay(15, 0)))
	assert.True(t, domain.IsConflict(err, domain.ConflictPatientDoubleBooked))
}

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("boom")

	err := s.Transaction(ctx, func(tx domain.Repository) error {
		require.NoError(t, tx.CreateAppointment(ctx, newAppointment("p1", "d1", caltime.NewTimeOfDay(9, 0))))
		return tx.Transaction(ctx, func(domain.Repository) error { return boom })
	})
	require.ErrorIs(t, err, boom)

	aps, err := s.ListActiveForDate(ctx, monday)
	require.NoError(t, err)
	assert.Empty(t, aps)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	ap := newAppointment("p1", "d1", caltime.NewTimeOfDay(9, 0))
	require.NoError(t, s.CreateAppointment(ctx, ap))

	got, err := s.GetAppointment(ctx, ap.ID)
	require.NoError(t, err)
	got.Status = string(domain.StatusCancelled)
	*got.DoctorID = "someone-else"

	again, err := s.GetAppointment(ctx, ap.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusScheduled), again.Status)
	assert.Equal(t, "d1", again.DoctorIDOrEmpty())
}

func TestFailAndCancelledContext(t *testing.T) {
	s := New()
	unavailable := domain.StoreUnavailableError{Op: "test", Err: errors.New("down")}
	s.Fail(unavailable)

	_, err := s.GetAppointment(context.Background(), "x")
	assert.Equal(t, error(unavailable), err)

	s.Fail(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.ListActiveForDate(ctx, monday)
	var su domain.StoreUnavailableError
	assert.ErrorAs(t, err, &su)
}

func TestHolidaysOverlap(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateHoliday(ctx, &models.Holiday{
		Name: "Spring Break", StartDate: monday, EndDate: monday.AddDays(4), BlocksAppointments: true,
	}))
	require.NoError(t, s.CreateHoliday(ctx, &models.Holiday{
		Name: "Open Day", StartDate: monday, EndDate: monday, BlocksAppointments: false,
	}))

	hs, err := s.ListBlockingBetween(ctx, monday.AddDays(2), monday.AddDays(2))
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.Equal(t, "Spring Break", hs[0].Name)

	all, err := s.ListHolidays(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.DeleteHoliday(ctx, hs[0].ID))
	var nf domain.NotFoundError
	assert.ErrorAs(t, s.DeleteHoliday(ctx, hs[0].ID), &nf)
}
