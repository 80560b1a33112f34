package calendar

import (
	"context"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
	"github.com/clinicportal/clinic-scheduler/internal/domain/holiday"
	"github.com/clinicportal/clinic-scheduler/internal/models"
)

type HolidayService struct {
	store        holiday.Store
	registry     *holiday.Registry
	alternatives int
}

func NewHolidayService(store holiday.Store, alternatives int) *HolidayService {
	return &HolidayService{
		store:        store,
		registry:     holiday.NewRegistry(store),
		alternatives: alternatives,
	}
}

func (s *HolidayService) Registry() *holiday.Registry { return s.registry }

func (s *HolidayService) List(ctx context.Context) ([]models.Holiday, error) {
	return s.registry.List(ctx)
}

func (s *HolidayService) Create(ctx context.Context, h *models.Holiday) error {
	if err := holiday.Validate(h); err != nil {
		return err
	}
	return s.store.CreateHoliday(ctx, h)
}

func (s *HolidayService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteHoliday(ctx, id)
}

type DateAvailability struct {
	Date             caltime.Date     `json:"date"`
	IsAvailable      bool             `json:"is_available"`
	BlockingHolidays []models.Holiday `json:"blocking_holidays"`
	AlternativeDates []caltime.Date   `json:"alternative_dates"`
}

// CheckAvailability answers whether date is free of blocking holidays and,
// when it is not, which open weekdays follow it.
func (s *HolidayService) CheckAvailability(ctx context.Context, date caltime.Date) (DateAvailability, error) {
	out := DateAvailability{
		Date:             date,
		BlockingHolidays: []models.Holiday{},
		AlternativeDates: []caltime.Date{},
	}

	hs, err := s.registry.BlockingHolidays(ctx, date)
	if err != nil {
		return out, err
	}
	out.IsAvailable = len(hs) == 0
	if out.IsAvailable {
		return out, nil
	}
	out.BlockingHolidays = hs

	alts, err := s.registry.SuggestAlternatives(ctx, date, s.alternatives)
	if err != nil {
		return out, err
	}
	out.AlternativeDates = alts
	return out, nil
}
