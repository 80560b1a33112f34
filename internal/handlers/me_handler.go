package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/clinicportal/clinic-scheduler/internal/httpresp"
)

type MeHandler struct{}

func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

type MeResponse struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	PatientID string `json:"patient_id,omitempty"`
	DoctorID  string `json:"doctor_id,omitempty"`
	IsStaff   bool   `json:"is_staff"`
}

// GetMe echoes the identity resolved from the bearer token.
func (h *MeHandler) GetMe(c *gin.Context) {
	id, ok := actorFrom(c)
	if !ok {
		return
	}

	httpresp.OK(c, MeResponse{
		UserID:    id.UserID,
		Role:      string(id.Role),
		PatientID: id.PatientID,
		DoctorID:  id.DoctorID,
		IsStaff:   id.IsStaff(),
	})
}
