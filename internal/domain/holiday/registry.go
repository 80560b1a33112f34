package holiday

import (
	"context"
	"strings"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/models"
)

const (
	DefaultAlternatives = 3
	MaxAlternatives     = 10

	// horizon caps the forward scan, in days.
	horizon = 366
)

// Store is the holiday persistence the registry reads from.
type Store interface {
	ListHolidays(ctx context.Context) ([]models.Holiday, error)

	// ListBlockingBetween returns blocking holidays overlapping [from, to].
	ListBlockingBetween(ctx context.Context, from, to caltime.Date) ([]models.Holiday, error)

	CreateHoliday(ctx context.Context, h *models.Holiday) error
	DeleteHoliday(ctx context.Context, id string) error
}

type Registry struct {
	store Store
}

func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

func (r *Registry) List(ctx context.Context) ([]models.Holiday, error) {
	return r.store.ListHolidays(ctx)
}

func (r *Registry) IsBlocked(ctx context.Context, date caltime.Date) (bool, error) {
	h, err := r.BlockingHoliday(ctx, date)
	return h != nil, err
}

// BlockingHoliday returns the first blocking holiday covering date, or nil.
func (r *Registry) BlockingHoliday(ctx context.Context, date caltime.Date) (*models.Holiday, error) {
	hs, err := r.BlockingHolidays(ctx, date)
	if err != nil || len(hs) == 0 {
		return nil, err
	}
	return &hs[0], nil
}

func (r *Registry) BlockingHolidays(ctx context.Context, date caltime.Date) ([]models.Holiday, error) {
	hs, err := r.store.ListBlockingBetween(ctx, date, date)
	if err != nil {
		return nil, err
	}
	return blockingOn(hs, date), nil
}

// SuggestAlternatives scans forward from the day after date and returns up
// to count weekdays that no blocking holiday covers. count <= 0 means
// DefaultAlternatives.
func (r *Registry) SuggestAlternatives(ctx context.Context, date caltime.Date, count int) ([]caltime.Date, error) {
	hs, err := r.store.ListBlockingBetween(ctx, date.AddDays(1), date.AddDays(horizon))
	if err != nil {
		return nil, err
	}
	return NextOpenDates(date, count, hs), nil
}

// NextOpenDates is the pure scan behind SuggestAlternatives.
func NextOpenDates(date caltime.Date, count int, holidays []models.Holiday) []caltime.Date {
	count = clampCount(count)

	out := make([]caltime.Date, 0, count)
	for i := 1; i <= horizon && len(out) < count; i++ {
		d := date.AddDays(i)
		if d.IsWeekend() || len(blockingOn(holidays, d)) > 0 {
			continue
		}
		out = append(out, d)
	}
	return out
}

func clampCount(count int) int {
	switch {
	case count <= 0:
		return DefaultAlternatives
	case count > MaxAlternatives:
		return MaxAlternatives
	default:
		return count
	}
}

func blockingOn(hs []models.Holiday, d caltime.Date) []models.Holiday {
	var out []models.Holiday
	for _, h := range hs {
		if h.BlocksAppointments && h.Covers(d) {
			out = append(out, h)
		}
	}
	return out
}

// ===============================
// Validation
// ===============================

func Validate(h *models.Holiday) error {
	h.Name = strings.TrimSpace(h.Name)
	if h.Name == "" {
		return domain.NewValidationError("name", "required")
	}
	if h.StartDate.IsZero() {
		return domain.NewValidationError("start_date", "required")
	}
	if h.EndDate.IsZero() {
		h.EndDate = h.StartDate
	}
	if h.EndDate.Before(h.StartDate) {
		return domain.NewValidationError("end_date", "before_start_date")
	}
	return nil
}
