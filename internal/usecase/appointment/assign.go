package appointment

import (
	"context"

	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/identity"
	"github.com/clinicportal/clinic-scheduler/internal/models"
	"github.com/clinicportal/clinic-scheduler/internal/notify"
)

type AssignAppointmentInput struct {
	Actor         identity.Identity
	AppointmentID string
	// DoctorID empty lets the assignment strategy choose.
	DoctorID string
}

// AssignAppointment binds a doctor to a pending request and re-runs the
// full guard, patient exclusivity included.
type AssignAppointment struct {
	deps         Deps
	guard        *SlotGuard
	availability *GetAvailability
}

func NewAssignAppointment(deps Deps) *AssignAppointment {
	deps = deps.withDefaults()
	return &AssignAppointment{
		deps:         deps,
		guard:        NewSlotGuard(deps),
		availability: NewGetAvailability(deps),
	}
}

func (uc *AssignAppointment) Execute(
	ctx context.Context,
	in AssignAppointmentInput,
) (out *models.Appointment, err error) {

	defer func() { uc.deps.observe(domain.ActionAssign, err) }()

	if err := authorizeStaff(in.Actor, domain.ActionAssign); err != nil {
		return nil, err
	}

	ap, err := uc.deps.Repo.GetAppointment(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}
	if err := domain.CanAssign(domain.Status(ap.Status)); err != nil {
		return nil, err
	}

	doctor := domain.Assigned(in.DoctorID)
	if !doctor.IsAssigned() {
		if doctor, err = uc.pick(ctx, ap); err != nil {
			return nil, err
		}
	}
	doctorID, _ := doctor.DoctorID()

	err = uc.guard.Reserve(ctx, Reservation{
		Doctor:    doctor,
		PatientID: ap.PatientID,
		Date:      ap.Date,
		Time:      ap.Time,
		ExcludeID: ap.ID,
	}, func(tx domain.Repository) error {
		cur, err := tx.LockAppointment(ctx, ap.ID)
		if err != nil {
			return err
		}
		if err := domain.Assign(cur, doctorID); err != nil {
			return err
		}
		if err := tx.UpdateAppointment(ctx, cur); err != nil {
			return err
		}
		out = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.deps.Notifier.Notify(event(notify.AppointmentAssigned, out, in.Actor))
	return out, nil
}

func (uc *AssignAppointment) pick(ctx context.Context, ap *models.Appointment) (domain.DoctorAssignment, error) {
	free, err := uc.availability.freeDoctorsAt(ctx, ap.Date, ap.Time)
	if err != nil {
		return domain.Unassigned(), err
	}
	if len(free) == 0 {
		return domain.Unassigned(), domain.SlotConflictError{Reason: domain.ConflictSlotTaken}
	}

	id, err := uc.deps.Strategy.Pick(ctx, uc.deps.Repo, ap.Date, free)
	if err != nil {
		return domain.Unassigned(), err
	}
	return domain.Assigned(id), nil
}
