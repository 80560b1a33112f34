package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicportal/clinic-scheduler/internal/models"
)

func scheduled() *models.Appointment {
	d := "d1"
	return &models.Appointment{
		ID:        "a1",
		PatientID: "p1",
		DoctorID:  &d,
		Date:      monday,
		Time:      tod("10:00"),
		Status:    string(StatusScheduled),
		Priority:  string(PriorityNormal),
		Reason:    "checkup",
	}
}

func validReport() models.CompletionReport {
	return models.CompletionReport{
		Diagnosis:         " seasonal flu ",
		TreatmentProvided: "rest and fluids",
	}
}

func TestAssignBindsDoctor(t *testing.T) {
	ap := scheduled()
	ap.DoctorID = nil
	ap.Status = string(StatusPending)

	require.Equal(t, NewValidationError("doctor_id", "required"), Assign(ap, " "))
	assert.Nil(t, ap.DoctorID)

	require.NoError(t, Assign(ap, "d9"))
	assert.Equal(t, "d9", *ap.DoctorID)
	assert.Equal(t, string(StatusScheduled), ap.Status)

	assert.Equal(t, "invalid_state", CodeOf(Assign(ap, "d8")))
	assert.Equal(t, "d9", *ap.DoctorID)
}

func TestConfirmThenRescheduleDropsConfirmation(t *testing.T) {
	now := time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC)
	ap := scheduled()

	require.NoError(t, Confirm(ap, now))
	assert.Equal(t, string(StatusConfirmed), ap.Status)
	require.NotNil(t, ap.ConfirmedAt)
	assert.Equal(t, "invalid_state", CodeOf(Confirm(ap, now)))

	require.Equal(t, NewValidationError("reason", "required"), Reschedule(ap, tuesday, tod("14:00"), "  "))
	assert.Equal(t, monday, ap.Date, "failed reschedule leaves the appointment untouched")

	require.NoError(t, Reschedule(ap, tuesday, tod("14:00"), "conflict"))
	assert.Equal(t, tuesday, ap.Date)
	assert.Equal(t, tod("14:00"), ap.Time)
	assert.Equal(t, "conflict", ap.RescheduleReason)
	assert.Equal(t, string(StatusScheduled), ap.Status)
	assert.Nil(t, ap.ConfirmedAt)
}

func TestCancelIsNotIdempotent(t *testing.T) {
	now := time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC)
	ap := scheduled()

	assert.Equal(t, NewValidationError("reason", "required"), Cancel(ap, "", now))
	require.NoError(t, Cancel(ap, "feeling better", now))
	assert.Equal(t, string(StatusCancelled), ap.Status)
	assert.Equal(t, "feeling better", ap.CancellationReason)

	err := Cancel(ap, "again", now)
	assert.Equal(t, InvalidStateTransitionError{From: StatusCancelled, Action: ActionCancel}, err)
	assert.Equal(t, "feeling better", ap.CancellationReason)
}

func TestCompleteRequiresConfirmedAndOpenGate(t *testing.T) {
	loc := time.UTC
	at := func(h, m int) time.Time { return time.Date(2026, time.October, 19, h, m, 0, 0, loc) }

	ap := scheduled()
	assert.Equal(t, "invalid_state", CodeOf(Complete(ap, validReport(), at(10, 5), loc)),
		"scheduled appointments cannot skip confirmation")

	require.NoError(t, Confirm(ap, at(8, 0)))

	err := Complete(ap, validReport(), at(9, 45), loc)
	var denied TimeGateDeniedError
	require.ErrorAs(t, err, &denied)
	assert.True(t, denied.EarliestAllowed.Equal(at(10, 0)))
	assert.Equal(t, string(StatusConfirmed), ap.Status)

	require.NoError(t, Complete(ap, validReport(), at(10, 5), loc))
	assert.Equal(t, string(StatusCompleted), ap.Status)
	require.NotNil(t, ap.CompletionReport)
	assert.Equal(t, "seasonal flu", ap.CompletionReport.Diagnosis)
	require.NotNil(t, ap.CompletedAt)

	for _, err := range []error{
		Confirm(ap, at(11, 0)),
		Cancel(ap, "late", at(11, 0)),
		Reschedule(ap, tuesday, tod("09:00"), "again"),
		SetPriority(ap, PriorityUrgent),
		Complete(ap, validReport(), at(11, 0), loc),
	} {
		assert.Equal(t, "invalid_state", CodeOf(err))
	}
}

func TestValidateCompletionReport(t *testing.T) {
	today := monday
	past := today.AddDays(-1)
	future := today.AddDays(14)

	cases := []struct {
		name   string
		report models.CompletionReport
		want   error
	}{
		{"missing diagnosis", models.CompletionReport{TreatmentProvided: "x"}, NewValidationError("diagnosis", "required")},
		{"blank treatment", models.CompletionReport{Diagnosis: "x", TreatmentProvided: "  "}, NewValidationError("treatment_provided", "required")},
		{"follow-up without date", models.CompletionReport{Diagnosis: "x", TreatmentProvided: "y", FollowUpRequired: true}, NewValidationError("follow_up_date", "required")},
		{"follow-up in the past", models.CompletionReport{Diagnosis: "x", TreatmentProvided: "y", FollowUpRequired: true, FollowUpDate: &past}, NewValidationError("follow_up_date", "past_date")},
		{"follow-up today", models.CompletionReport{Diagnosis: "x", TreatmentProvided: "y", FollowUpRequired: true, FollowUpDate: &today}, nil},
		{"follow-up later", models.CompletionReport{Diagnosis: "x", TreatmentProvided: "y", FollowUpRequired: true, FollowUpDate: &future}, nil},
		{"no follow-up needs no date", models.CompletionReport{Diagnosis: "x", TreatmentProvided: "y", FollowUpDate: &past}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := tc.report
			err := ValidateCompletionReport(&r, today)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tc.want, err)
		})
	}
}

func TestSetPriority(t *testing.T) {
	ap := scheduled()
	require.NoError(t, SetPriority(ap, PriorityUrgent))
	assert.Equal(t, "urgent", ap.Priority)

	ap.Status = string(StatusPending)
	require.NoError(t, SetPriority(ap, PriorityHigh))
	assert.Equal(t, "high", ap.Priority)
}

