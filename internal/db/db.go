package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/clinicportal/clinic-scheduler/internal/config"
	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/infra/repository"
	"github.com/clinicportal/clinic-scheduler/internal/models"
)

func NewDB(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.IsDev() {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		PrepareStmt: true,
		Logger: logger.New(&log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	return db, nil
}

// Migrate creates the tables and the partial unique indexes that back the
// slot conflict guard.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Appointment{},
		&models.DoctorAvailability{},
		&models.Holiday{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, stmt := range IndexStatements() {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// IndexStatements returns the DDL for the active-appointment uniqueness
// indexes.
func IndexStatements() []string {
	quoted := make([]string, 0, len(domain.ActiveStatuses))
	for _, s := range domain.ActiveStatuses {
		quoted = append(quoted, "'"+string(s)+"'")
	}
	active := "status IN (" + strings.Join(quoted, ", ") + ")"

	return []string{
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s
	ON appointments (doctor_id, "date", "time")
	WHERE %s AND doctor_id IS NOT NULL`, repository.IndexActiveSlot, active),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s
	ON appointments (patient_id, "date")
	WHERE %s`, repository.IndexActivePatientDay, active),
	}
}
