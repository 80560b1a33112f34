package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
	"github.com/clinicportal/clinic-scheduler/internal/httperr"
	"github.com/clinicportal/clinic-scheduler/internal/httpresp"
	"github.com/clinicportal/clinic-scheduler/internal/models"
	"github.com/clinicportal/clinic-scheduler/internal/usecase/calendar"
)

// ======================================================
// HANDLER
// ======================================================

type HolidayHandler struct {
	svc *calendar.HolidayService
}

func NewHolidayHandler(svc *calendar.HolidayService) *HolidayHandler {
	return &HolidayHandler{svc: svc}
}

type CreateHolidayRequest struct {
	Name        string `json:"name"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Type        string `json:"type"`
	Description string `json:"description"`
	// nil blocks; only an explicit false records an informational entry
	BlocksAppointments *bool `json:"blocks_appointments"`
}

// ======================================================
// LIST
// ======================================================

func (h *HolidayHandler) List(c *gin.Context) {
	hs, err := h.svc.List(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, hs)
}

// ======================================================
// CREATE
// ======================================================

func (h *HolidayHandler) Create(c *gin.Context) {
	var req CreateHolidayRequest
	if !bindJSON(c, &req) {
		return
	}

	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	var end caltime.Date
	if req.EndDate != "" {
		if end, err = parseDate("end_date", req.EndDate); err != nil {
			httperr.Respond(c, err)
			return
		}
	}

	blocks := true
	if req.BlocksAppointments != nil {
		blocks = *req.BlocksAppointments
	}

	hol := &models.Holiday{
		Name:               req.Name,
		StartDate:          start,
		EndDate:            end,
		Type:               req.Type,
		Description:        req.Description,
		BlocksAppointments: blocks,
	}
	if err := h.svc.Create(c.Request.Context(), hol); err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, hol)
}

// ======================================================
// DELETE
// ======================================================

func (h *HolidayHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.NoContent(c)
}

// ======================================================
// CHECK AVAILABILITY
// ======================================================

func (h *HolidayHandler) CheckAvailability(c *gin.Context) {
	date, err := parseDate("date", c.Query("date"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	out, err := h.svc.CheckAvailability(c.Request.Context(), date)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, out)
}
