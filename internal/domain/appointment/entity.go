package appointment

import (
	"strings"
	"time"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
	"github.com/clinicportal/clinic-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================
//
// Each action checks transition legality first, then its own inputs, and
// only then mutates ap. On error ap is untouched.

func Assign(ap *models.Appointment, doctorID string) error {
	if err := CanAssign(Status(ap.Status)); err != nil {
		return err
	}
	a := Assigned(doctorID)
	if !a.IsAssigned() {
		return NewValidationError("doctor_id", "required")
	}

	ap.DoctorID = a.Ptr()
	ap.Status = string(StatusScheduled)
	return nil
}

func Confirm(ap *models.Appointment, now time.Time) error {
	if err := CanConfirm(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusConfirmed)
	ap.ConfirmedAt = &now
	return nil
}

// Reschedule moves the appointment and drops any prior confirmation.
func Reschedule(ap *models.Appointment, date caltime.Date, at caltime.TimeOfDay, reason string) error {
	if err := CanReschedule(Status(ap.Status)); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return NewValidationError("reason", "required")
	}

	ap.Date = date
	ap.Time = at
	ap.RescheduleReason = reason
	ap.Status = string(StatusScheduled)
	ap.ConfirmedAt = nil
	return nil
}

func Cancel(ap *models.Appointment, reason string, now time.Time) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return NewValidationError("reason", "required")
	}

	ap.Status = string(StatusCancelled)
	ap.CancellationReason = reason
	ap.CancelledAt = &now
	return nil
}

// Complete requires a confirmed appointment, an open time gate at now (in
// loc) and a valid report.
func Complete(ap *models.Appointment, report models.CompletionReport, now time.Time, loc *time.Location) error {
	if err := CanComplete(Status(ap.Status)); err != nil {
		return err
	}
	if err := CanActNow(ap, ClinicalComplete, now, loc).Err(); err != nil {
		return err
	}
	if err := ValidateCompletionReport(&report, caltime.DateOf(now.In(loc))); err != nil {
		return err
	}

	ap.Status = string(StatusCompleted)
	ap.CompletionReport = &report
	ap.CompletedAt = &now
	return nil
}

func SetPriority(ap *models.Appointment, p Priority) error {
	if err := CanApply(Status(ap.Status), ActionSetPriority); err != nil {
		return err
	}
	ap.Priority = string(p)
	return nil
}

// ValidateCompletionReport trims the free-text fields in place.
func ValidateCompletionReport(r *models.CompletionReport, today caltime.Date) error {
	r.Diagnosis = strings.TrimSpace(r.Diagnosis)
	r.TreatmentProvided = strings.TrimSpace(r.TreatmentProvided)

	if r.Diagnosis == "" {
		return NewValidationError("diagnosis", "required")
	}
	if r.TreatmentProvided == "" {
		return NewValidationError("treatment_provided", "required")
	}
	if r.FollowUpRequired {
		if r.FollowUpDate == nil || r.FollowUpDate.IsZero() {
			return NewValidationError("follow_up_date", "required")
		}
		if r.FollowUpDate.Before(today) {
			return NewValidationError("follow_up_date", "past_date")
		}
	}
	return nil
}
