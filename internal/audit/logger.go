package audit

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/clinicportal/clinic-scheduler/internal/models"
	"github.com/clinicportal/clinic-scheduler/internal/notify"
)

// Logger persists every scheduling event as an AuditLog row.
type Logger struct {
	db *gorm.DB
}

var _ notify.Sink = (*Logger)(nil)

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Deliver(ctx context.Context, ev notify.Event) error {
	return l.db.WithContext(ctx).Create(Row(ev)).Error
}

// Row maps an event to its audit record.
func Row(ev notify.Event) *models.AuditLog {
	meta := map[string]any{
		"status":     ev.Status,
		"patient_id": ev.PatientID,
	}
	if ev.DoctorID != "" {
		meta["doctor_id"] = ev.DoctorID
	}
	if ev.NotifyStaff {
		meta["notify_staff"] = true
	}
	for k, v := range ev.Metadata {
		meta[k] = v
	}

	var metaJSON string
	if b, err := json.Marshal(meta); err == nil {
		metaJSON = string(b)
	}

	return &models.AuditLog{
		ActorID:  ev.ActorID,
		Action:   ev.Type,
		Entity:   "appointment",
		EntityID: ev.AppointmentID,
		Metadata: metaJSON,
	}
}

// ======================================================
// Query
// ======================================================

type Filter struct {
	Action   string
	EntityID string
	From     time.Time
	To       time.Time
	Page     int
	Limit    int
}

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Normalize applies the default page and limit.
func (f *Filter) Normalize() {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > maxLimit {
		f.Limit = defaultLimit
	}
}

// List returns one page of audit rows, newest first, and the total match
// count.
func (l *Logger) List(ctx context.Context, f Filter) ([]models.AuditLog, int64, error) {
	f.Normalize()

	q := l.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.EntityID != "" {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if !f.From.IsZero() {
		q = q.Where("created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("created_at < ?", f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	if err := q.
		Order("created_at DESC").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
