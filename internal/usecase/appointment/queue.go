package appointment

import (
	"context"
	"strings"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/dto"
	"github.com/clinicportal/clinic-scheduler/internal/identity"
	"github.com/clinicportal/clinic-scheduler/internal/models"
)

type ListQueueInput struct {
	Actor identity.Identity
	// DoctorID empty lists the whole clinic; doctors always get their own.
	DoctorID string
	Date     caltime.Date
}

// ListQueue returns the active appointments of a day in queue order.
type ListQueue struct {
	repo domain.Repository
}

func NewListQueue(deps Deps) *ListQueue {
	return &ListQueue{repo: deps.Repo}
}

func (uc *ListQueue) Execute(
	ctx context.Context,
	in ListQueueInput,
) ([]dto.QueueEntryDTO, error) {

	if in.Date.IsZero() {
		return nil, domain.NewValidationError("date", "required")
	}

	doctorID := strings.TrimSpace(in.DoctorID)
	switch {
	case in.Actor.IsStaff():
	case in.Actor.IsDoctor() && in.Actor.DoctorID != "":
		if doctorID != "" && doctorID != in.Actor.DoctorID {
			return nil, domain.ForbiddenError{Action: actionView}
		}
		doctorID = in.Actor.DoctorID
	default:
		return nil, domain.ForbiddenError{Action: actionView}
	}

	var (
		aps []models.Appointment
		err error
	)
	if doctorID != "" {
		aps, err = uc.repo.ListActiveForDoctorOnDate(ctx, doctorID, in.Date)
	} else {
		aps, err = uc.repo.ListActiveForDate(ctx, in.Date)
	}
	if err != nil {
		return nil, err
	}

	domain.SortQueue(aps)

	out := make([]dto.QueueEntryDTO, 0, len(aps))
	for i, ap := range aps {
		out = append(out, dto.QueueEntryDTO{
			Position:  i + 1,
			ID:        ap.ID,
			PatientID: ap.PatientID,
			DoctorID:  ap.DoctorID,
			Date:      ap.Date,
			Time:      ap.Time,
			Status:    ap.Status,
			Priority:  ap.Priority,
			Reason:    ap.Reason,
			CreatedAt: ap.CreatedAt,
		})
	}
	return out, nil
}
