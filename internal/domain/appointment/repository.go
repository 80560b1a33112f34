package appointment

import (
	"context"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
	"github.com/clinicportal/clinic-scheduler/internal/models"
)

// Repository is the durable store for appointments and doctor profiles.
// Implementations must enforce uniqueness of active (doctor, date, time)
// and active (patient, date) and report violations as SlotConflictError.
type Repository interface {
	// -------- Transaction --------
	Transaction(
		ctx context.Context,
		fn func(tx Repository) error,
	) error

	// -------- Appointment (create / state change) --------
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	GetAppointment(
		ctx context.Context,
		id string,
	) (*models.Appointment, error)

	// LockAppointment reads the row for update inside a transaction.
	LockAppointment(
		ctx context.Context,
		id string,
	) (*models.Appointment, error)

	// -------- Appointment (conflict) --------
	// Both return nil, nil when nothing active matches.
	FindActiveAtSlot(
		ctx context.Context,
		doctorID string,
		date caltime.Date,
		at caltime.TimeOfDay,
		excludeID string,
	) (*models.Appointment, error)

	FindActiveForPatientOnDate(
		ctx context.Context,
		patientID string,
		date caltime.Date,
		excludeID string,
	) (*models.Appointment, error)

	// -------- Appointment (listing) --------
	ListActiveForDate(
		ctx context.Context,
		date caltime.Date,
	) ([]models.Appointment, error)

	ListActiveForDoctorOnDate(
		ctx context.Context,
		doctorID string,
		date caltime.Date,
	) ([]models.Appointment, error)

	// -------- Doctor availability --------
	// GetAvailabilityProfile returns nil, nil when the doctor has no profile.
	GetAvailabilityProfile(
		ctx context.Context,
		doctorID string,
	) (*models.DoctorAvailability, error)

	ListAvailabilityProfiles(
		ctx context.Context,
	) ([]models.DoctorAvailability, error)

	SaveAvailabilityProfile(
		ctx context.Context,
		p *models.DoctorAvailability,
	) error
}
