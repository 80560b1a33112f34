package appointment

import (
	"strings"

	"github.com/clinicportal/clinic-scheduler/internal/models"
)

// DoctorAssignment is either Assigned(doctorID) or Unassigned ("any
// available doctor").
type DoctorAssignment struct {
	doctorID string
}

func Assigned(doctorID string) DoctorAssignment {
	return DoctorAssignment{doctorID: strings.TrimSpace(doctorID)}
}

func Unassigned() DoctorAssignment {
	return DoctorAssignment{}
}

// AssignmentFrom maps an optional doctor id; nil and blank are Unassigned.
func AssignmentFrom(doctorID *string) DoctorAssignment {
	if doctorID == nil {
		return Unassigned()
	}
	return Assigned(*doctorID)
}

func AssignmentOf(ap *models.Appointment) DoctorAssignment {
	return AssignmentFrom(ap.DoctorID)
}

func (a DoctorAssignment) IsAssigned() bool { return a.doctorID != "" }

func (a DoctorAssignment) DoctorID() (string, bool) {
	return a.doctorID, a.doctorID != ""
}

// Ptr is the nullable column form.
func (a DoctorAssignment) Ptr() *string {
	if !a.IsAssigned() {
		return nil
	}
	id := a.doctorID
	return &id
}
