package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/httperr"
	"github.com/clinicportal/clinic-scheduler/internal/identity"
	"github.com/clinicportal/clinic-scheduler/internal/middleware"
)

// --------------------------------------------------
// Caller
// --------------------------------------------------

func actorFrom(c *gin.Context) (identity.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		httperr.Unauthorized(c, "unauthorized", "missing identity")
		return identity.Identity{}, false
	}
	return id, true
}

// --------------------------------------------------
// Calendar values (clinic-local, no timezone)
// --------------------------------------------------

func parseDate(field, raw string) (caltime.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return caltime.Date{}, domain.NewValidationError(field, "required")
	}
	d, err := caltime.ParseDate(raw)
	if err != nil {
		return caltime.Date{}, domain.NewValidationError(field, "invalid_date")
	}
	return d, nil
}

func parseTime(field, raw string) (caltime.TimeOfDay, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, domain.NewValidationError(field, "required")
	}
	t, err := caltime.ParseTimeOfDay(raw)
	if err != nil {
		return 0, domain.NewValidationError(field, "invalid_time")
	}
	return t, nil
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		httperr.Respond(c, httperr.ErrBusiness("invalid_request"))
		return false
	}
	return true
}

// bindJSONOptional accepts an empty body and leaves dst untouched.
func bindJSONOptional(c *gin.Context, dst any) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(c, dst)
}
