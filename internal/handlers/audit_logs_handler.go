package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clinicportal/clinic-scheduler/internal/audit"
	"github.com/clinicportal/clinic-scheduler/internal/httperr"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	logs *audit.Logger
}

func NewAuditLogsHandler(logs *audit.Logger) *AuditLogsHandler {
	return &AuditLogsHandler{logs: logs}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	f := audit.Filter{
		Action:   c.Query("action"),
		EntityID: c.Query("appointment_id"),
		Page:     page,
		Limit:    limit,
	}

	// --------------------------------------------------
	// Date window (inclusive days, UTC)
	// --------------------------------------------------

	if fromStr := c.Query("from"); fromStr != "" {
		if from, err := time.Parse("2006-01-02", fromStr); err == nil {
			f.From = from
		}
	}
	if toStr := c.Query("to"); toStr != "" {
		if to, err := time.Parse("2006-01-02", toStr); err == nil {
			f.To = to.Add(24 * time.Hour)
		}
	}

	f.Normalize()
	logs, total, err := h.logs.List(c.Request.Context(), f)
	if err != nil {
		httperr.Internal(c, "audit_list_failed", "failed to list audit logs")
		return
	}

	c.JSON(200, gin.H{
		"page":  f.Page,
		"limit": f.Limit,
		"total": total,
		"logs":  logs,
	})
}
