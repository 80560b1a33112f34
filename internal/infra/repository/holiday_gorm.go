package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/domain/holiday"
	"github.com/clinicportal/clinic-scheduler/internal/models"
)

type HolidayGormRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewHolidayGormRepository(db *gorm.DB, timeout time.Duration) *HolidayGormRepository {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HolidayGormRepository{db: db, timeout: timeout}
}

func (r *HolidayGormRepository) ListHolidays(ctx context.Context) ([]models.Holiday, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var hs []models.Holiday
	if err := r.db.WithContext(ctx).Order("start_date ASC, name ASC").Find(&hs).Error; err != nil {
		return nil, mapError("list holidays", err)
	}
	return hs, nil
}

func (r *HolidayGormRepository) ListBlockingBetween(
	ctx context.Context,
	from caltime.Date,
	to caltime.Date,
) ([]models.Holiday, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var hs []models.Holiday
	err := r.db.WithContext(ctx).
		Where(
			"blocks_appointments = ? AND start_date <= ? AND end_date >= ?",
			true, to, from,
		).
		Order("start_date ASC, name ASC").
		Find(&hs).Error
	if err != nil {
		return nil, mapError("list blocking holidays", err)
	}
	return hs, nil
}

func (r *HolidayGormRepository) CreateHoliday(ctx context.Context, h *models.Holiday) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return mapError("create holiday", r.db.WithContext(ctx).Create(h).Error)
}

func (r *HolidayGormRepository) DeleteHoliday(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).Delete(&models.Holiday{}, "id = ?", id)
	if res.Error != nil {
		return mapError("delete holiday", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundError{Entity: "holiday", ID: id}
	}
	return nil
}

var _ holiday.Store = (*HolidayGormRepository)(nil)
