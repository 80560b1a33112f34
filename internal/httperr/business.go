package httperr

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
)

// BusinessError is a plain coded rejection raised by the transport itself.
type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

// RetryAfterSeconds is advertised on 503 responses.
const RetryAfterSeconds = "1"

// Respond renders any error returned by the scheduling core.
func Respond(c *gin.Context, err error) {
	var (
		validation domain.ValidationError
		past       domain.PastDateError
		holiday    domain.HolidayBlockedError
		conflict   domain.SlotConflictError
		state      domain.InvalidStateTransitionError
		gate       domain.TimeGateDeniedError
		forbidden  domain.ForbiddenError
		notFound   domain.NotFoundError
		store      domain.StoreUnavailableError
		business   BusinessError
	)

	switch {
	case errors.As(err, &validation):
		WriteDetails(c, http.StatusBadRequest, "validation_error", validation.Error(), map[string]any{
			"field":  validation.Field,
			"reason": validation.Reason,
		})

	case errors.As(err, &past):
		WriteDetails(c, http.StatusBadRequest, past.Code(), past.Error(), map[string]any{
			"date":  past.Date,
			"today": past.Today,
		})

	case errors.As(err, &holiday):
		WriteDetails(c, http.StatusUnprocessableEntity, holiday.Code(), holiday.Error(), map[string]any{
			"holiday_id":        holiday.HolidayID,
			"holiday_name":      holiday.HolidayName,
			"alternative_dates": holiday.Alternatives,
		})

	case errors.As(err, &conflict):
		WriteDetails(c, http.StatusConflict, "slot_conflict", conflict.Error(), map[string]any{
			"reason": conflict.Reason,
		})

	case errors.As(err, &state):
		WriteDetails(c, http.StatusConflict, state.Code(), state.Error(), map[string]any{
			"status": state.From,
			"action": state.Action,
		})

	case errors.As(err, &gate):
		WriteDetails(c, http.StatusForbidden, gate.Code(), gate.Error(), map[string]any{
			"action":              gate.Action,
			"scheduled_at":        gate.ScheduledAt.Format(time.RFC3339),
			"earliest_allowed_at": gate.EarliestAllowed.Format(time.RFC3339),
		})

	case errors.As(err, &forbidden):
		Forbidden(c, forbidden.Code(), forbidden.Error())

	case errors.As(err, &notFound):
		NotFound(c, notFound.Code(), notFound.Error())

	case errors.As(err, &store):
		c.Header("Retry-After", RetryAfterSeconds)
		Write(c, http.StatusServiceUnavailable, store.Code(), "Scheduling store is temporarily unavailable.")

	case errors.As(err, &business):
		BadRequest(c, business.Code, business.Code)

	default:
		Internal(c, "internal_error", "Unexpected error.")
	}
}
