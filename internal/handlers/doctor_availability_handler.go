package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
	"github.com/clinicportal/clinic-scheduler/internal/httperr"
	"github.com/clinicportal/clinic-scheduler/internal/httpresp"
	"github.com/clinicportal/clinic-scheduler/internal/models"
	"github.com/clinicportal/clinic-scheduler/internal/usecase/calendar"
)

type DoctorAvailabilityHandler struct {
	svc *calendar.ProfileService
}

func NewDoctorAvailabilityHandler(svc *calendar.ProfileService) *DoctorAvailabilityHandler {
	return &DoctorAvailabilityHandler{svc: svc}
}

type DoctorAvailabilityRequest struct {
	AvailableDays     []string           `json:"available_days"`
	WorkingHoursStart *caltime.TimeOfDay `json:"working_hours_start"`
	WorkingHoursEnd   *caltime.TimeOfDay `json:"working_hours_end"`
	BreakStart        *caltime.TimeOfDay `json:"break_start"`
	BreakEnd          *caltime.TimeOfDay `json:"break_end"`
	IsAvailable       *bool              `json:"is_available"`
}

func (h *DoctorAvailabilityHandler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, p)
}

// Update replaces the whole profile.
func (h *DoctorAvailabilityHandler) Update(c *gin.Context) {
	var req DoctorAvailabilityRequest
	if !bindJSON(c, &req) {
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	p := &models.DoctorAvailability{
		DoctorID:          c.Param("id"),
		AvailableDays:     req.AvailableDays,
		WorkingHoursStart: req.WorkingHoursStart,
		WorkingHoursEnd:   req.WorkingHoursEnd,
		BreakStart:        req.BreakStart,
		BreakEnd:          req.BreakEnd,
		IsAvailable:       available,
	}
	if p.AvailableDays == nil {
		p.AvailableDays = []string{}
	}
	if err := h.svc.Put(c.Request.Context(), p); err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, p)
}
