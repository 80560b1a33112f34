package appointment

import (
	"context"

	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/identity"
	"github.com/clinicportal/clinic-scheduler/internal/timezone"
)

// CheckClinicalGate lets record and prescription services ask whether an
// encounter-bound action is open yet. It never mutates.
type CheckClinicalGate struct {
	repo  domain.Repository
	clock timezone.Clock
}

func NewCheckClinicalGate(deps Deps) *CheckClinicalGate {
	return &CheckClinicalGate{repo: deps.Repo, clock: deps.Clock}
}

func (uc *CheckClinicalGate) Execute(
	ctx context.Context,
	actor identity.Identity,
	appointmentID string,
	action string,
) (domain.GateDecision, error) {

	a, err := domain.ParseClinicalAction(action)
	if err != nil {
		return domain.GateDecision{}, err
	}

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return domain.GateDecision{}, err
	}
	if err := authorize(actor, ap, actionView); err != nil {
		return domain.GateDecision{}, err
	}

	return domain.CanActNow(ap, a, uc.clock.Now(), uc.clock.Location()), nil
}
