package calendar

import (
	"context"
	"strings"

	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/models"
)

var defaultDays = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}

// ProfileService reads and replaces doctor availability profiles.
type ProfileService struct {
	repo domain.Repository
}

func NewProfileService(repo domain.Repository) *ProfileService {
	return &ProfileService{repo: repo}
}

// Get returns the stored profile, or the clinic default for a doctor that
// has none.
func (s *ProfileService) Get(ctx context.Context, doctorID string) (*models.DoctorAvailability, error) {
	p, err := s.repo.GetAvailabilityProfile(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	start, end := domain.DefaultWorkingHoursStart, domain.DefaultWorkingHoursEnd
	return &models.DoctorAvailability{
		DoctorID:          doctorID,
		AvailableDays:     append([]string(nil), defaultDays...),
		WorkingHoursStart: &start,
		WorkingHoursEnd:   &end,
		IsAvailable:       true,
	}, nil
}

func (s *ProfileService) Put(ctx context.Context, p *models.DoctorAvailability) error {
	if err := domain.ValidateProfile(p); err != nil {
		return err
	}
	for i, d := range p.AvailableDays {
		wd, _ := domain.ParseWeekday(d)
		p.AvailableDays[i] = strings.ToLower(wd.String())
	}
	return s.repo.SaveAvailabilityProfile(ctx, p)
}
