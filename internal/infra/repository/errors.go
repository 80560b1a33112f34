package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
)

// Partial unique indexes backing the slot conflict guard. Their names are
// how a 23505 is mapped back to a conflict reason.
const (
	IndexActiveSlot       = "ux_appointments_active_slot"
	IndexActivePatientDay = "ux_appointments_active_patient_day"

	pgUniqueViolation = "23505"
)

// mapError turns driver and gorm failures into domain error kinds. Domain
// errors pass through untouched.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var coded domain.Coded
	if errors.As(err, &coded) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if pgErr.ConstraintName == IndexActivePatientDay {
			return domain.SlotConflictError{Reason: domain.ConflictPatientDoubleBooked}
		}
		return domain.SlotConflictError{Reason: domain.ConflictSlotTaken}
	}

	if isUnavailable(err) {
		return domain.StoreUnavailableError{Op: op, Err: err}
	}

	return fmt.Errorf("%s: %w", op, err)
}

func isUnavailable(err error) bool {
	var connErr *pgconn.ConnectError
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, driver.ErrBadConn),
		errors.As(err, &connErr),
		pgconn.Timeout(err):
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		// serialization_failure, deadlock_detected, lock_not_available,
		// query_canceled, admin_shutdown, cannot_connect_now
		case "40001", "40P01", "55P03", "57014", "57P01", "57P03":
			return true
		}
	}
	return false
}
