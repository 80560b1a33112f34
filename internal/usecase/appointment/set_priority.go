package appointment

import (
	"context"

	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/identity"
	"github.com/clinicportal/clinic-scheduler/internal/models"
	"github.com/clinicportal/clinic-scheduler/internal/notify"
)

type SetPriority struct {
	deps Deps
}

func NewSetPriority(deps Deps) *SetPriority {
	return &SetPriority{deps: deps.withDefaults()}
}

func (uc *SetPriority) Execute(
	ctx context.Context,
	actor identity.Identity,
	appointmentID string,
	priority string,
) (ap *models.Appointment, err error) {

	defer func() { uc.deps.observe(domain.ActionSetPriority, err) }()

	if err := authorizeStaff(actor, domain.ActionSetPriority); err != nil {
		return nil, err
	}
	p, err := domain.ParsePriority(priority)
	if err != nil {
		return nil, err
	}

	var previous string
	ap, err = mutate(ctx, uc.deps.Repo, appointmentID, func(cur *models.Appointment) error {
		previous = cur.Priority
		return domain.SetPriority(cur, p)
	})
	if err != nil {
		return nil, err
	}

	ev := event(notify.PriorityChanged, ap, actor)
	ev.Metadata["previous_priority"] = previous
	ev.Metadata["priority"] = ap.Priority
	uc.deps.Notifier.Notify(ev)
	return ap, nil
}
