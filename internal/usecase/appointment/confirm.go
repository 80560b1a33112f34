package appointment

import (
	"context"

	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/identity"
	"github.com/clinicportal/clinic-scheduler/internal/models"
	"github.com/clinicportal/clinic-scheduler/internal/notify"
)

type ConfirmAppointment struct {
	deps Deps
}

func NewConfirmAppointment(deps Deps) *ConfirmAppointment {
	return &ConfirmAppointment{deps: deps.withDefaults()}
}

func (uc *ConfirmAppointment) Execute(
	ctx context.Context,
	actor identity.Identity,
	appointmentID string,
) (ap *models.Appointment, err error) {

	defer func() { uc.deps.observe(domain.ActionConfirm, err) }()

	ap, err = mutate(ctx, uc.deps.Repo, appointmentID, func(cur *models.Appointment) error {
		if err := authorize(actor, cur, domain.ActionConfirm); err != nil {
			return err
		}
		return domain.Confirm(cur, uc.deps.Clock.Now())
	})
	if err != nil {
		return nil, err
	}

	uc.deps.Notifier.Notify(event(notify.AppointmentConfirmed, ap, actor))
	return ap, nil
}

// mutate locks the row, applies fn and saves it in one transaction.
func mutate(
	ctx context.Context,
	repo domain.Repository,
	id string,
	fn func(ap *models.Appointment) error,
) (*models.Appointment, error) {

	var out *models.Appointment
	err := repo.Transaction(ctx, func(tx domain.Repository) error {
		ap, err := tx.LockAppointment(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(ap); err != nil {
			return err
		}
		if err := tx.UpdateAppointment(ctx, ap); err != nil {
			return err
		}
		out = ap
		return nil
	})
	return out, err
}
