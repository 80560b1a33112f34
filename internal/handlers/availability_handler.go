package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/httperr"
	"github.com/clinicportal/clinic-scheduler/internal/httpresp"
	ucAppointment "github.com/clinicportal/clinic-scheduler/internal/usecase/appointment"
)

type AvailabilityHandler struct {
	uc *ucAppointment.GetAvailability
}

func NewAvailabilityHandler(uc *ucAppointment.GetAvailability) *AvailabilityHandler {
	return &AvailabilityHandler{uc: uc}
}

// AvailabilityResponse keeps the slot list flat; free_doctors is present
// only for doctor-agnostic queries.
type AvailabilityResponse struct {
	domain.AvailabilityResult
	Times []string `json:"times"`
}

// Get answers GET /availability?date=YYYY-MM-DD[&doctor_id=...].
func (h *AvailabilityHandler) Get(c *gin.Context) {
	if _, ok := actorFrom(c); !ok {
		return
	}

	date, err := parseDate("date", c.Query("date"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	res, err := h.uc.Execute(c.Request.Context(), domain.AvailabilityInput{
		Doctor: domain.Assigned(c.Query("doctor_id")),
		Date:   date,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	times := make([]string, 0, len(res.Slots))
	for _, t := range res.Times() {
		times = append(times, t.String())
	}

	httpresp.OK(c, AvailabilityResponse{AvailabilityResult: res, Times: times})
}
