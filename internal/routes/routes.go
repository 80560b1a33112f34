package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/clinicportal/clinic-scheduler/internal/audit"
	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/domain/holiday"
	"github.com/clinicportal/clinic-scheduler/internal/handlers"
	"github.com/clinicportal/clinic-scheduler/internal/identity"
	"github.com/clinicportal/clinic-scheduler/internal/infra/lock"
	"github.com/clinicportal/clinic-scheduler/internal/metrics"
	"github.com/clinicportal/clinic-scheduler/internal/middleware"
	"github.com/clinicportal/clinic-scheduler/internal/notify"
	"github.com/clinicportal/clinic-scheduler/internal/timezone"
	ucAppointment "github.com/clinicportal/clinic-scheduler/internal/usecase/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/usecase/calendar"
)

// Dependencies is everything the HTTP surface needs, built once by main.
type Dependencies struct {
	Repo     domain.Repository
	Holidays holiday.Store
	Locker   lock.Locker
	Clock    timezone.Clock
	Notifier notify.Notifier
	Strategy ucAppointment.AssignmentStrategy
	Log      zerolog.Logger

	Metrics  *metrics.SchedulingMetrics
	Gatherer prometheus.Gatherer

	// Audit is optional; without it the audit log route is not mounted.
	Audit *audit.Logger

	JWTSecret    string
	CORSOrigins  []string
	Alternatives int
}

func RegisterRoutes(r *gin.Engine, d Dependencies) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(
		middleware.RequestID(),
		middleware.Logger(d.Log),
		middleware.Recovery(d.Log),
		middleware.CORSMiddleware(d.CORSOrigins),
	)

	// ======================================================
	// SERVICES
	// ======================================================
	holidaySvc := calendar.NewHolidayService(d.Holidays, d.Alternatives)
	profileSvc := calendar.NewProfileService(d.Repo)

	ucDeps := ucAppointment.Deps{
		Repo:         d.Repo,
		Holidays:     holidaySvc.Registry(),
		Locker:       d.Locker,
		Clock:        d.Clock,
		Notifier:     d.Notifier,
		Metrics:      d.Metrics,
		Strategy:     d.Strategy,
		Log:          d.Log,
		Alternatives: d.Alternatives,
	}

	// ======================================================
	// HANDLERS
	// ======================================================
	meHandler := handlers.NewMeHandler()
	appointmentHandler := handlers.NewAppointmentHandler(handlers.NewAppointmentUseCases(ucDeps))
	availabilityHandler := handlers.NewAvailabilityHandler(ucAppointment.NewGetAvailability(ucDeps))
	holidayHandler := handlers.NewHolidayHandler(holidaySvc)
	doctorAvailabilityHandler := handlers.NewDoctorAvailabilityHandler(profileSvc)

	// ======================================================
	// OPS
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// ======================================================
	// API (JSON)
	// ======================================================
	staff := middleware.RequireRoles(identity.RoleClinicalStaff, identity.RoleAdmin)
	admin := middleware.RequireRoles(identity.RoleAdmin)

	secured := r.Group("/api")
	secured.Use(middleware.AuthMiddleware(d.JWTSecret))
	{
		secured.GET("/me", meHandler.GetMe)

		secured.GET("/availability", availabilityHandler.Get)

		// ------------------------------
		// APPOINTMENTS
		// ------------------------------
		secured.POST("/appointments", appointmentHandler.Create)
		secured.GET("/appointments/queue", appointmentHandler.Queue)
		secured.GET("/appointments/:id", appointmentHandler.Get)
		secured.POST("/appointments/:id/assign", staff, appointmentHandler.Assign)
		secured.POST("/appointments/:id/confirm", appointmentHandler.Confirm)
		secured.PUT("/appointments/:id/reschedule", appointmentHandler.Reschedule)
		secured.PUT("/appointments/:id/cancel", appointmentHandler.Cancel)
		secured.PUT("/appointments/:id/complete", appointmentHandler.Complete)
		secured.PUT("/appointments/:id/priority", staff, appointmentHandler.SetPriority)
		secured.GET("/appointments/:id/clinical-gate", appointmentHandler.ClinicalGate)

		// ------------------------------
		// CALENDAR
		// ------------------------------
		secured.GET("/holidays", holidayHandler.List)
		secured.GET("/holidays/check", holidayHandler.CheckAvailability)
		secured.POST("/holidays", admin, holidayHandler.Create)
		secured.DELETE("/holidays/:id", admin, holidayHandler.Delete)

		secured.GET("/doctors/:id/availability", doctorAvailabilityHandler.Get)
		secured.PUT("/doctors/:id/availability", admin, doctorAvailabilityHandler.Update)

		if d.Audit != nil {
			secured.GET("/audit-logs", staff, handlers.NewAuditLogsHandler(d.Audit).List)
		}
	}
}
