package appointment

import (
	"context"
	"strings"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/identity"
	"github.com/clinicportal/clinic-scheduler/internal/models"
	"github.com/clinicportal/clinic-scheduler/internal/notify"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	Actor identity.Identity

	PatientID string
	Doctor    domain.DoctorAssignment

	Date     caltime.Date
	Time     caltime.TimeOfDay
	Reason   string
	Priority string
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	deps  Deps
	guard *SlotGuard
}

func NewCreateAppointment(deps Deps) *CreateAppointment {
	deps = deps.withDefaults()
	return &CreateAppointment{deps: deps, guard: NewSlotGuard(deps)}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (ap *models.Appointment, err error) {

	defer func() { uc.deps.observe(domain.ActionCreate, err) }()

	// 1. Input
	in.PatientID = strings.TrimSpace(in.PatientID)
	if in.PatientID == "" {
		return nil, domain.NewValidationError("patient_id", "required")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, domain.NewValidationError("reason", "required")
	}
	priority, err := domain.ParsePriority(in.Priority)
	if err != nil {
		return nil, err
	}

	// 2. Caller
	if err := authorizeCreate(in.Actor, in.PatientID); err != nil {
		return nil, err
	}

	// 3. Guard + persist
	ap = &models.Appointment{
		PatientID:       in.PatientID,
		DoctorID:        in.Doctor.Ptr(),
		Date:            in.Date,
		Time:            in.Time,
		DurationMinutes: domain.DefaultDurationMinutes,
		Status:          string(domain.InitialStatus(in.Doctor)),
		Priority:        string(priority),
		Reason:          reason,
	}

	err = uc.guard.Reserve(ctx, Reservation{
		Doctor:    in.Doctor,
		PatientID: in.PatientID,
		Date:      in.Date,
		Time:      in.Time,
	}, func(tx domain.Repository) error {
		return tx.CreateAppointment(ctx, ap)
	})
	if err != nil {
		return nil, err
	}

	// 4. Notify
	uc.deps.Notifier.Notify(event(notify.AppointmentCreated, ap, in.Actor))
	return ap, nil
}

func event(typ string, ap *models.Appointment, actor identity.Identity) notify.Event {
	return notify.Event{
		Type:          typ,
		AppointmentID: ap.ID,
		PatientID:     ap.PatientID,
		DoctorID:      ap.DoctorIDOrEmpty(),
		ActorID:       actor.UserID,
		Status:        ap.Status,
		At:            ap.UpdatedAt,
		Metadata: map[string]any{
			"date": ap.Date.String(),
			"time": ap.Time.String(),
		},
	}
}
