package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/httperr"
	"github.com/clinicportal/clinic-scheduler/internal/httpresp"
	"github.com/clinicportal/clinic-scheduler/internal/models"
	ucAppointment "github.com/clinicportal/clinic-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentUseCases struct {
	Create      *ucAppointment.CreateAppointment
	Assign      *ucAppointment.AssignAppointment
	Confirm     *ucAppointment.ConfirmAppointment
	Reschedule  *ucAppointment.RescheduleAppointment
	Cancel      *ucAppointment.CancelAppointment
	Complete    *ucAppointment.CompleteAppointment
	SetPriority *ucAppointment.SetPriority
	Get         *ucAppointment.GetAppointment
	Gate        *ucAppointment.CheckClinicalGate
	Queue       *ucAppointment.ListQueue
}

// NewAppointmentUseCases builds every appointment use case over one set of
// dependencies.
func NewAppointmentUseCases(deps ucAppointment.Deps) AppointmentUseCases {
	return AppointmentUseCases{
		Create:      ucAppointment.NewCreateAppointment(deps),
		Assign:      ucAppointment.NewAssignAppointment(deps),
		Confirm:     ucAppointment.NewConfirmAppointment(deps),
		Reschedule:  ucAppointment.NewRescheduleAppointment(deps),
		Cancel:      ucAppointment.NewCancelAppointment(deps),
		Complete:    ucAppointment.NewCompleteAppointment(deps),
		SetPriority: ucAppointment.NewSetPriority(deps),
		Get:         ucAppointment.NewGetAppointment(deps),
		Gate:        ucAppointment.NewCheckClinicalGate(deps),
		Queue:       ucAppointment.NewListQueue(deps),
	}
}

type AppointmentHandler struct {
	uc AppointmentUseCases
}

func NewAppointmentHandler(uc AppointmentUseCases) *AppointmentHandler {
	return &AppointmentHandler{uc: uc}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	PatientID string  `json:"patient_id"`
	DoctorID  *string `json:"doctor_id"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	Reason    string  `json:"reason"`
	Priority  string  `json:"priority"`
}

type AssignAppointmentRequest struct {
	DoctorID string `json:"doctor_id"`
}

type RescheduleAppointmentRequest struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Reason string `json:"reason"`
}

type CancelAppointmentRequest struct {
	Reason      string `json:"reason"`
	NotifyStaff bool   `json:"notify_staff"`
}

type SetPriorityRequest struct {
	Priority string `json:"priority"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req CreateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	date, err := parseDate("date", req.Date)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	at, err := parseTime("time", req.Time)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	// patients book for themselves unless staff names someone else
	patientID := strings.TrimSpace(req.PatientID)
	if patientID == "" && actor.ActsAsPatient() {
		patientID = actor.PatientID
		if patientID == "" {
			patientID = actor.UserID
		}
	}

	ap, err := h.uc.Create.Execute(c.Request.Context(), ucAppointment.CreateAppointmentInput{
		Actor:     actor,
		PatientID: patientID,
		Doctor:    domain.AssignmentFrom(req.DoctorID),
		Date:      date,
		Time:      at,
		Reason:    req.Reason,
		Priority:  req.Priority,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, ap)
}

// ======================================================
// GET
// ======================================================

func (h *AppointmentHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	ap, err := h.uc.Get.Execute(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// ASSIGN
// ======================================================

func (h *AppointmentHandler) Assign(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req AssignAppointmentRequest
	if !bindJSONOptional(c, &req) {
		return
	}

	ap, err := h.uc.Assign.Execute(c.Request.Context(), ucAppointment.AssignAppointmentInput{
		Actor:         actor,
		AppointmentID: c.Param("id"),
		DoctorID:      req.DoctorID,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// CONFIRM
// ======================================================

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	ap, err := h.uc.Confirm.Execute(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// RESCHEDULE
// ======================================================

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req RescheduleAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	date, err := parseDate("date", req.Date)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	at, err := parseTime("time", req.Time)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	ap, err := h.uc.Reschedule.Execute(c.Request.Context(), ucAppointment.RescheduleAppointmentInput{
		Actor:         actor,
		AppointmentID: c.Param("id"),
		NewDate:       date,
		NewTime:       at,
		Reason:        req.Reason,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// CANCEL
// ======================================================

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req CancelAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.uc.Cancel.Execute(c.Request.Context(), ucAppointment.CancelAppointmentInput{
		Actor:         actor,
		AppointmentID: c.Param("id"),
		Reason:        req.Reason,
		NotifyStaff:   req.NotifyStaff,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// COMPLETE
// ======================================================

func (h *AppointmentHandler) Complete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var report models.CompletionReport
	if !bindJSON(c, &report) {
		return
	}

	ap, err := h.uc.Complete.Execute(c.Request.Context(), ucAppointment.CompleteAppointmentInput{
		Actor:         actor,
		AppointmentID: c.Param("id"),
		Report:        report,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// PRIORITY
// ======================================================

func (h *AppointmentHandler) SetPriority(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req SetPriorityRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Priority) == "" {
		httperr.Respond(c, domain.NewValidationError("priority", "required"))
		return
	}

	ap, err := h.uc.SetPriority.Execute(c.Request.Context(), actor, c.Param("id"), req.Priority)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// CLINICAL GATE
// ======================================================

func (h *AppointmentHandler) ClinicalGate(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	decision, err := h.uc.Gate.Execute(
		c.Request.Context(),
		actor,
		c.Param("id"),
		c.Query("action"),
	)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, decision)
}

// ======================================================
// QUEUE
// ======================================================

func (h *AppointmentHandler) Queue(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	date, err := parseDate("date", c.Query("date"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	entries, err := h.uc.Queue.Execute(c.Request.Context(), ucAppointment.ListQueueInput{
		Actor:    actor,
		DoctorID: strings.TrimSpace(c.Query("doctor_id")),
		Date:     date,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, entries)
}
