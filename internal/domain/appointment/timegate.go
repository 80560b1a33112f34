package appointment

import (
	"time"

	"github.com/clinicportal/clinic-scheduler/internal/models"
)

// ClinicalAction is an encounter-bound mutation guarded by the time gate.
type ClinicalAction string

const (
	ClinicalComplete         ClinicalAction = "complete"
	ClinicalPrescribe        ClinicalAction = "prescribe"
	ClinicalAddMedicalRecord ClinicalAction = "add_medical_record"
)

func ParseClinicalAction(s string) (ClinicalAction, error) {
	switch a := ClinicalAction(s); a {
	case ClinicalComplete, ClinicalPrescribe, ClinicalAddMedicalRecord:
		return a, nil
	case "":
		return ClinicalComplete, nil
	default:
		return "", NewValidationError("action", "invalid_clinical_action")
	}
}

type GateDecision struct {
	Action          ClinicalAction `json:"action"`
	Allowed         bool           `json:"allowed"`
	ScheduledAt     time.Time      `json:"scheduled_at"`
	EarliestAllowed time.Time      `json:"earliest_allowed_at"`
}

// Err is nil when allowed, a TimeGateDeniedError otherwise.
func (d GateDecision) Err() error {
	if d.Allowed {
		return nil
	}
	return TimeGateDeniedError{
		Action:          d.Action,
		ScheduledAt:     d.ScheduledAt,
		EarliestAllowed: d.EarliestAllowed,
	}
}

// CanActNow opens the gate at the appointment's scheduled start in loc and
// never closes it again.
func CanActNow(ap *models.Appointment, action ClinicalAction, now time.Time, loc *time.Location) GateDecision {
	scheduled := ap.Date.At(ap.Time, loc)
	return GateDecision{
		Action:          action,
		Allowed:         !now.Before(scheduled),
		ScheduledAt:     scheduled,
		EarliestAllowed: scheduled,
	}
}
