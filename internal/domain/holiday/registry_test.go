package holiday

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

var (
	monday = caltime.NewDate(2026, time.October, 19)
	friday = caltime.NewDate(2026, time.October, 23)
)

// stubStore filters a fixed holiday list.
type stubStore struct {
	holidays []models.Holiday
	err      error
}

func (s *stubStore) ListHolidays(context.Context) ([]models.Holiday, error) {
	return s.holidays, s.err
}

func (s *stubStore) ListBlockingBetween(_ context.Context, from, to caltime.Date) ([]models.Holiday, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Holiday
	for _, h := range s.holidays {
		if h.BlocksAppointments && !h.StartDate.After(to) && !h.EndDate.Before(from) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *stubStore) CreateHoliday(context.Context, *models.Holiday) error { return nil }
func (s *stubStore) DeleteHoliday(context.Context, string) error          { return nil }

func blocking(name string, from, to caltime.Date) models.Holiday {
	return models.Holiday{ID: name, Name: name, StartDate: from, EndDate: to, BlocksAppointments: true}
}

func TestBlockingHolidayRespectsRangeAndFlag(t *testing.T) {
	ctx := context.Background()
	info := blocking("Open House", monday, monday)
	info.BlocksAppointments = false

	r := NewRegistry(&stubStore{holidays: []models.Holiday{
		info,
		blocking("Spring Break", monday.AddDays(1), monday.AddDays(3)),
	}})

	blocked, err := r.IsBlocked(ctx, monday)
	require.NoError(t, err)
	assert.False(t, blocked, "informational entries never block")

	for _, d := range []caltime.Date{monday.AddDays(1), monday.AddDays(2), monday.AddDays(3)} {
		h, err := r.BlockingHoliday(ctx, d)
		require.NoError(t, err)
		require.NotNil(t, h, d.String())
		assert.Equal(t, "Spring Break", h.Name)
	}

	h, err := r.BlockingHoliday(ctx, monday.AddDays(4))
	require.NoError(t, err)
	assert.Nil(t, h)
}

func TestSuggestAlternativesSkipsWeekendsAndHolidays(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(&stubStore{holidays: []models.Holiday{
		blocking("Founders Day", friday, friday),
		blocking("Retreat", friday.AddDays(3), friday.AddDays(4)),
	}})

	// Thursday: Friday blocked, weekend skipped, Mon+Tue blocked
	alts, err := r.SuggestAlternatives(ctx, friday.AddDays(-1), 3)
	require.NoError(t, err)
	assert.Equal(t, []caltime.Date{
		friday.AddDays(5),
		friday.AddDays(6),
		friday.AddDays(7),
	}, alts)
}

func TestSuggestAlternativesPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("store down")
	_, err := NewRegistry(&stubStore{err: boom}).SuggestAlternatives(context.Background(), monday, 3)
	assert.ErrorIs(t, err, boom)
}

func TestNextOpenDatesIsBoundedAndRestartable(t *testing.T) {
	all := NextOpenDates(monday, 5, nil)
	require.Len(t, all, 5)
	assert.Equal(t, monday.AddDays(1), all[0])
	assert.Equal(t, monday.AddDays(7), all[4], "the weekend is skipped")

	// resuming from the last suggestion continues the same sequence
	more := NextOpenDates(all[1], 3, nil)
	assert.Equal(t, all[2:], more)

	assert.Len(t, NextOpenDates(monday, 0, nil), DefaultAlternatives)
	assert.Len(t, NextOpenDates(monday, 50, nil), MaxAlternatives)

	// a year-long block leaves nothing inside the horizon
	closed := []models.Holiday{blocking("Closed", monday, monday.AddDays(400))}
	assert.Empty(t, NextOpenDates(monday, 3, closed))
}

func TestValidate(t *testing.T) {
	h := &models.Holiday{Name: "  Spring Break ", StartDate: monday}
	require.NoError(t, Validate(h))
	assert.Equal(t, "Spring Break", h.Name)
	assert.Equal(t, monday, h.EndDate, "single-day holidays end on their start")

	assert.Equal(t, domain.NewValidationError("name", "required"),
		Validate(&models.Holiday{Name: " ", StartDate: monday}))
	assert.Equal(t, domain.NewValidationError("start_date", "required"),
		Validate(&models.Holiday{Name: "x"}))
	assert.Equal(t, domain.NewValidationError("end_date", "before_start_date"),
		Validate(&models.Holiday{Name: "x", StartDate: monday, EndDate: monday.AddDays(-1)}))
}
