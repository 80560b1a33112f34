package appointment

import (
	"context"

	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/identity"
	"github.com/clinicportal/clinic-scheduler/internal/models"
	"github.com/clinicportal/clinic-scheduler/internal/notify"
)

type CompleteAppointmentInput struct {
	Actor         identity.Identity
	AppointmentID string
	Report        models.CompletionReport
}

type CompleteAppointment struct {
	deps Deps
}

func NewCompleteAppointment(deps Deps) *CompleteAppointment {
	return &CompleteAppointment{deps: deps.withDefaults()}
}

func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	in CompleteAppointmentInput,
) (ap *models.Appointment, err error) {

	defer func() { uc.deps.observe(domain.ActionComplete, err) }()

	ap, err = mutate(ctx, uc.deps.Repo, in.AppointmentID, func(cur *models.Appointment) error {
		if err := authorize(in.Actor, cur, domain.ActionComplete); err != nil {
			return err
		}
		return domain.Complete(cur, in.Report, uc.deps.Clock.Now(), uc.deps.Clock.Location())
	})
	if err != nil {
		return nil, err
	}

	uc.deps.Notifier.Notify(event(notify.AppointmentCompleted, ap, in.Actor))
	return ap, nil
}
