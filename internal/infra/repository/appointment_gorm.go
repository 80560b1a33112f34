package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/models"
)

const DefaultTimeout = 3 * time.Second

type AppointmentGormRepository struct {
	db      *gorm.DB
	timeout time.Duration
	inTx    bool
}

func NewAppointmentGormRepository(db *gorm.DB, timeout time.Duration) *AppointmentGormRepository {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &AppointmentGormRepository{db: db, timeout: timeout}
}

// withTimeout bounds every store call. Calls inside a transaction share the
// transaction's deadline.
func (r *AppointmentGormRepository) withTimeout(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if r.inTx {
		return r.db.WithContext(ctx), func() {}
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	return r.db.WithContext(ctx), cancel
}

// --------------------------------------------------
// Transaction
// --------------------------------------------------

func (r *AppointmentGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {

	if r.inTx {
		return fn(r)
	}

	db, cancel := r.withTimeout(ctx)
	defer cancel()

	err := db.Transaction(func(tx *gorm.DB) error {
		return fn(&AppointmentGormRepository{db: tx, timeout: r.timeout, inTx: true})
	})
	return mapError("transaction", err)
}

// --------------------------------------------------
// Appointment (create / state change)
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	db, cancel := r.withTimeout(ctx)
	defer cancel()

	return mapError("create appointment", db.Create(ap).Error)
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	db, cancel := r.withTimeout(ctx)
	defer cancel()

	return mapError("update appointment", db.Save(ap).Error)
}

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id string,
) (*models.Appointment, error) {
	db, cancel := r.withTimeout(ctx)
	defer cancel()

	var ap models.Appointment
	if err := db.First(&ap, "id = ?", id).Error; err != nil {
		return nil, notFoundOr("get appointment", "appointment", id, err)
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) LockAppointment(
	ctx context.Context,
	id string,
) (*models.Appointment, error) {
	db, cancel := r.withTimeout(ctx)
	defer cancel()

	var ap models.Appointment
	if err := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ap, "id = ?", id).Error; err != nil {
		return nil, notFoundOr("lock appointment", "appointment", id, err)
	}
	return &ap, nil
}

// --------------------------------------------------
// Appointment (conflict)
// --------------------------------------------------

func (r *AppointmentGormRepository) FindActiveAtSlot(
	ctx context.Context,
	doctorID string,
	date caltime.Date,
	at caltime.TimeOfDay,
	excludeID string,
) (*models.Appointment, error) {
	db, cancel := r.withTimeout(ctx)
	defer cancel()

	q := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(
			`doctor_id = ? AND "date" = ? AND "time" = ? AND status IN ?`,
			doctorID, date, at, domain.ActiveStatusStrings(),
		)
	return firstOrNil("find active at slot", excluding(q, excludeID))
}

func (r *AppointmentGormRepository) FindActiveForPatientOnDate(
	ctx context.Context,
	patientID string,
	date caltime.Date,
	excludeID string,
) (*models.Appointment, error) {
	db, cancel := r.withTimeout(ctx)
	defer cancel()

	q := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(
			`patient_id = ? AND "date" = ? AND status IN ?`,
			patientID, date, domain.ActiveStatusStrings(),
		)
	return firstOrNil("find active for patient", excluding(q, excludeID))
}

// --------------------------------------------------
// Appointment (listing)
// --------------------------------------------------

func (r *AppointmentGormRepository) ListActiveForDate(
	ctx context.Context,
	date caltime.Date,
) ([]models.Appointment, error) {
	db, cancel := r.withTimeout(ctx)
	defer cancel()

	var aps []models.Appointment
	err := db.
		Where(`"date" = ? AND status IN ?`, date, domain.ActiveStatusStrings()).
		Order(`"time" ASC, created_at ASC`).
		Find(&aps).Error
	if err != nil {
		return nil, mapError("list active for date", err)
	}
	return aps, nil
}

func (r *AppointmentGormRepository) ListActiveForDoctorOnDate(
	ctx context.Context,
	doctorID string,
	date caltime.Date,
) ([]models.Appointment, error) {
	db, cancel := r.withTimeout(ctx)
	defer cancel()

	var aps []models.Appointment
	err := db.
		Where(
			`doctor_id = ? AND "date" = ? AND status IN ?`,
			doctorID, date, domain.ActiveStatusStrings(),
		).
		Order(`"time" ASC, created_at ASC`).
		Find(&aps).Error
	if err != nil {
		return nil, mapError("list active for doctor", err)
	}
	return aps, nil
}

// --------------------------------------------------
// Doctor availability
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAvailabilityProfile(
	ctx context.Context,
	doctorID string,
) (*models.DoctorAvailability, error) {
	db, cancel := r.withTimeout(ctx)
	defer cancel()

	var ps []models.DoctorAvailability
	if err := db.Where("doctor_id = ?", doctorID).Limit(1).Find(&ps).Error; err != nil {
		return nil, mapError("get availability profile", err)
	}
	if len(ps) == 0 {
		return nil, nil
	}
	return &ps[0], nil
}

func (r *AppointmentGormRepository) ListAvailabilityProfiles(
	ctx context.Context,
) ([]models.DoctorAvailability, error) {
	db, cancel := r.withTimeout(ctx)
	defer cancel()

	var ps []models.DoctorAvailability
	if err := db.Order("doctor_id ASC").Find(&ps).Error; err != nil {
		return nil, mapError("list availability profiles", err)
	}
	return ps, nil
}

func (r *AppointmentGormRepository) SaveAvailabilityProfile(
	ctx context.Context,
	p *models.DoctorAvailability,
) error {
	db, cancel := r.withTimeout(ctx)
	defer cancel()

	err := db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "doctor_id"}},
			UpdateAll: true,
		}).
		Create(p).Error
	return mapError("save availability profile", err)
}

// --------------------------------------------------
// helpers
// --------------------------------------------------

func excluding(q *gorm.DB, id string) *gorm.DB {
	if id == "" {
		return q
	}
	return q.Where("id <> ?", id)
}

func firstOrNil(op string, q *gorm.DB) (*models.Appointment, error) {
	var aps []models.Appointment
	if err := q.Limit(1).Find(&aps).Error; err != nil {
		return nil, mapError(op, err)
	}
	if len(aps) == 0 {
		return nil, nil
	}
	return &aps[0], nil
}

func notFoundOr(op, entity, id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFoundError{Entity: entity, ID: id}
	}
	return mapError(op, err)
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
