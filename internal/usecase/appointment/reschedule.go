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

type RescheduleAppointmentInput struct {
	Actor         identity.Identity
	AppointmentID string
	NewDate       caltime.Date
	NewTime       caltime.TimeOfDay
	Reason        string
}

// RescheduleAppointment moves an appointment in one transaction, so the old
// slot is released exactly when the new one is taken.
type RescheduleAppointment struct {
	deps  Deps
	guard *SlotGuard
}

func NewRescheduleAppointment(deps Deps) *RescheduleAppointment {
	deps = deps.withDefaults()
	return &RescheduleAppointment{deps: deps, guard: NewSlotGuard(deps)}
}

func (uc *RescheduleAppointment) Execute(
	ctx context.Context,
	in RescheduleAppointmentInput,
) (out *models.Appointment, err error) {

	defer func() { uc.deps.observe(domain.ActionReschedule, err) }()

	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, domain.NewValidationError("reason", "required")
	}

	ap, err := uc.deps.Repo.GetAppointment(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}
	if err := authorize(in.Actor, ap, domain.ActionReschedule); err != nil {
		return nil, err
	}
	if err := domain.CanReschedule(domain.Status(ap.Status)); err != nil {
		return nil, err
	}
	from := ap.Date.String() + " " + ap.Time.String()

	err = uc.guard.Reserve(ctx, Reservation{
		Doctor:    domain.AssignmentOf(ap),
		PatientID: ap.PatientID,
		Date:      in.NewDate,
		Time:      in.NewTime,
		ExcludeID: ap.ID,
	}, func(tx domain.Repository) error {
		cur, err := tx.LockAppointment(ctx, ap.ID)
		if err != nil {
			return err
		}
		if domain.AssignmentOf(cur) != domain.AssignmentOf(ap) {
			// doctor changed since the guard ran
			return domain.InvalidStateTransitionError{From: domain.Status(cur.Status), Action: domain.ActionReschedule}
		}
		if err := domain.Reschedule(cur, in.NewDate, in.NewTime, reason); err != nil {
			return err
		}
		if err := tx.UpdateAppointment(ctx, cur); err != nil {
			return err
		}
		out = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	ev := event(notify.AppointmentRescheduled, out, in.Actor)
	ev.Metadata["from"] = from
	ev.Metadata["reason"] = reason
	uc.deps.Notifier.Notify(ev)
	return out, nil
}
