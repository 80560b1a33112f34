package appointment

import (
	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/identity"
	"github.com/clinicportal/clinic-scheduler/internal/models"
)

// actionView covers read-only access (get, clinical gate check).
const actionView domain.Action = "view"

// authorize applies the role rules to an existing appointment. Staff may do
// anything; doctors act on appointments bound to them; patients on their
// own.
func authorize(actor identity.Identity, ap *models.Appointment, action domain.Action) error {
	if actor.IsStaff() {
		return nil
	}

	switch {
	case actor.IsDoctor():
		if actor.DoctorID == "" || ap.DoctorIDOrEmpty() != actor.DoctorID {
			break
		}
		switch action {
		case actionView, domain.ActionConfirm, domain.ActionComplete,
			domain.ActionReschedule, domain.ActionCancel:
			return nil
		}

	case actor.ActsAsPatient():
		if patientIDOf(actor) == "" || ap.PatientID != patientIDOf(actor) {
			break
		}
		switch action {
		case actionView, domain.ActionReschedule, domain.ActionCancel:
			return nil
		}
	}

	return domain.ForbiddenError{Action: action}
}

// authorizeCreate lets patients book only for themselves.
func authorizeCreate(actor identity.Identity, patientID string) error {
	if actor.IsStaff() {
		return nil
	}
	if actor.ActsAsPatient() && patientIDOf(actor) != "" && patientIDOf(actor) == patientID {
		return nil
	}
	return domain.ForbiddenError{Action: domain.ActionCreate}
}

func authorizeStaff(actor identity.Identity, action domain.Action) error {
	if actor.IsStaff() {
		return nil
	}
	return domain.ForbiddenError{Action: action}
}

func patientIDOf(actor identity.Identity) string {
	if actor.PatientID != "" {
		return actor.PatientID
	}
	return actor.UserID
}
