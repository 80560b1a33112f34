package appointment

import (
	"context"
	"strings"

	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/identity"
	"github.com/clinicportal/clinic-scheduler/internal/models"
	"github.com/clinicportal/clinic-scheduler/internal/notify"
)

type CancelAppointmentInput struct {
	Actor         identity.Identity
	AppointmentID string
	Reason        string
	NotifyStaff   bool
}

type CancelAppointment struct {
	deps Deps
}

func NewCancelAppointment(deps Deps) *CancelAppointment {
	return &CancelAppointment{deps: deps.withDefaults()}
}

// Execute releases the slot at once. Cancelling twice is an
// InvalidStateTransitionError.
func (uc *CancelAppointment) Execute(
	ctx context.Context,
	in CancelAppointmentInput,
) (ap *models.Appointment, err error) {

	defer func() { uc.deps.observe(domain.ActionCancel, err) }()

	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, domain.NewValidationError("reason", "required")
	}

	ap, err = mutate(ctx, uc.deps.Repo, in.AppointmentID, func(cur *models.Appointment) error {
		if err := authorize(in.Actor, cur, domain.ActionCancel); err != nil {
			return err
		}
		return domain.Cancel(cur, reason, uc.deps.Clock.Now())
	})
	if err != nil {
		return nil, err
	}

	ev := event(notify.AppointmentCancelled, ap, in.Actor)
	ev.NotifyStaff = in.NotifyStaff
	ev.Metadata["reason"] = reason
	uc.deps.Notifier.Notify(ev)
	return ap, nil
}
