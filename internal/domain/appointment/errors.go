package appointment

import (
	"errors"
	"fmt"
	"time"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
)

// ===============================
// Error kinds
// ===============================
//
// Every expected scheduling outcome is returned as one of these values;
// callers branch with errors.As. Each one exposes a stable Code().

type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) ValidationError {
	return ValidationError{Field: field, Reason: reason}
}

func (e ValidationError) Code() string { return e.Reason }
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

type PastDateError struct {
	Date  caltime.Date
	Today caltime.Date
}

func (PastDateError) Code() string { return "past_date" }
func (e PastDateError) Error() string {
	return fmt.Sprintf("date %s is before today (%s)", e.Date, e.Today)
}

type HolidayBlockedError struct {
	Date         caltime.Date
	HolidayID    string
	HolidayName  string
	Alternatives []caltime.Date
}

func (HolidayBlockedError) Code() string { return "holiday" }
func (e HolidayBlockedError) Error() string {
	return fmt.Sprintf("date %s is blocked by holiday %q", e.Date, e.HolidayName)
}

type ConflictReason string

const (
	ConflictSlotTaken           ConflictReason = "slot_taken"
	ConflictPatientDoubleBooked ConflictReason = "patient_double_booked"
)

type SlotConflictError struct {
	Reason ConflictReason
}

func (e SlotConflictError) Code() string  { return string(e.Reason) }
func (e SlotConflictError) Error() string { return "slot conflict: " + string(e.Reason) }

type InvalidStateTransitionError struct {
	From   Status
	Action Action
}

func (InvalidStateTransitionError) Code() string { return "invalid_state" }
func (e InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s an appointment in status %s", e.Action, e.From)
}

type TimeGateDeniedError struct {
	Action          ClinicalAction
	ScheduledAt     time.Time
	EarliestAllowed time.Time
}

func (TimeGateDeniedError) Code() string { return "time_gate_denied" }
func (e TimeGateDeniedError) Error() string {
	return fmt.Sprintf("%s not allowed before %s", e.Action, e.EarliestAllowed.Format(time.RFC3339))
}

// StoreUnavailableError marks a transient infrastructure failure. The
// guard-then-write unit is atomic, so the caller may retry.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (StoreUnavailableError) Code() string { return "store_unavailable" }
func (e StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}
func (e StoreUnavailableError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Entity string
	ID     string
}

func (NotFoundError) Code() string { return "not_found" }
func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ForbiddenError means the caller may not perform Action on this
// appointment.
type ForbiddenError struct {
	Action Action
}

func (ForbiddenError) Code() string { return "forbidden" }
func (e ForbiddenError) Error() string {
	return fmt.Sprintf("not allowed to %s this appointment", e.Action)
}

// Coded is implemented by every error kind above.
type Coded interface {
	error
	Code() string
}

// CodeOf returns the code of the first Coded error in err's chain, or "".
func CodeOf(err error) string {
	var c Coded
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

func IsConflict(err error, reason ConflictReason) bool {
	var ce SlotConflictError
	return errors.As(err, &ce) && ce.Reason == reason
}
