package appointment

import (
	"errors"

	"github.com/rs/zerolog"

	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/domain/holiday"
	"github.com/clinicportal/clinic-scheduler/internal/infra/lock"
	"github.com/clinicportal/clinic-scheduler/internal/metrics"
	"github.com/clinicportal/clinic-scheduler/internal/notify"
	"github.com/clinicportal/clinic-scheduler/internal/timezone"
)

// Deps bundles the collaborators shared by every use case in this package.
type Deps struct {
	Repo     domain.Repository
	Holidays *holiday.Registry
	Locker   lock.Locker
	Clock    timezone.Clock
	Notifier notify.Notifier
	Metrics  *metrics.SchedulingMetrics
	Strategy AssignmentStrategy
	Log      zerolog.Logger

	// Alternatives is how many open dates a holiday rejection suggests.
	Alternatives int
}

func (d Deps) withDefaults() Deps {
	if d.Notifier == nil {
		d.Notifier = notify.Nop{}
	}
	if d.Strategy == nil {
		d.Strategy = FirstAvailable{}
	}
	if d.Alternatives <= 0 {
		d.Alternatives = holiday.DefaultAlternatives
	}
	return d
}

// observe records the outcome of one operation.
func (d Deps) observe(action domain.Action, err error) {
	if err == nil {
		d.Metrics.ObserveTransition(string(action), "ok")
		return
	}

	code := domain.CodeOf(err)
	if code == "" {
		code = "error"
	}
	d.Metrics.ObserveTransition(string(action), code)

	var conflict domain.SlotConflictError
	if errors.As(err, &conflict) {
		d.Metrics.ObserveConflict(string(conflict.Reason))
	}
	var gate domain.TimeGateDeniedError
	if errors.As(err, &gate) {
		d.Metrics.ObserveTimeGateDenied(string(gate.Action))
	}

	if code == "error" || code == "store_unavailable" {
		d.Log.Error().Err(err).Str("action", string(action)).Msg("scheduling operation failed")
	} else {
		d.Log.Debug().Err(err).Str("action", string(action)).Msg("scheduling request rejected")
	}
}
