package appointment

import (
	"context"

	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/identity"
	"github.com/clinicportal/clinic-scheduler/internal/models"
)

type GetAppointment struct {
	repo domain.Repository
}

func NewGetAppointment(deps Deps) *GetAppointment {
	return &GetAppointment{repo: deps.Repo}
}

func (uc *GetAppointment) Execute(
	ctx context.Context,
	actor identity.Identity,
	appointmentID string,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, ap, actionView); err != nil {
		return nil, err
	}
	return ap, nil
}
