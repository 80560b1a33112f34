// Package memrepo is an in-memory store for tests and local runs. It
// enforces the same active-slot and active-patient-day uniqueness as the
// postgres partial indexes.
package memrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
	"github.com/clinicportal/clinic-scheduler/internal/domain/holiday"
	"github.com/clinicportal/clinic-scheduler/internal/models"
)

type state struct {
	appointments map[string]*models.Appointment
	profiles     map[string]*models.DoctorAvailability
	holidays     map[string]*models.Holiday
}

func (s state) clone() state {
	out := state{
		appointments: make(map[string]*models.Appointment, len(s.appointments)),
		profiles:     make(map[string]*models.DoctorAvailability, len(s.profiles)),
		holidays:     make(map[string]*models.Holiday, len(s.holidays)),
	}
	for k, v := range s.appointments {
		out.appointments[k] = v.Clone()
	}
	for k, v := range s.profiles {
		out.profiles[k] = cloneProfile(v)
	}
	for k, v := range s.holidays {
		h := *v
		out.holidays[k] = &h
	}
	return out
}

type Store struct {
	txMu sync.Mutex

	mu   sync.Mutex
	data state
	fail error
}

var (
	_ domain.Repository = (*Store)(nil)
	_ holiday.Store     = (*Store)(nil)
)

func New() *Store {
	return &Store{data: state{}.clone()}
}

// Fail makes every following call return err until Fail(nil).
func (s *Store) Fail(err error) {
	s.mu.Lock()
	s.fail = err
	s.mu.Unlock()
}

func (s *Store) begin(ctx context.Context) error {
	s.mu.Lock()
	if err := ctx.Err(); err != nil {
		s.mu.Unlock()
		return domain.StoreUnavailableError{Op: "memrepo", Err: err}
	}
	if s.fail != nil {
		err := s.fail
		s.mu.Unlock()
		return err
	}
	return nil
}

// --------------------------------------------------
// Transaction
// --------------------------------------------------

// Transaction runs fn serialized against other transactions and restores
// the previous state when fn fails.
func (s *Store) Transaction(ctx context.Context, fn func(tx domain.Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := s.begin(ctx); err != nil {
		return err
	}
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(txStore{s}); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// txStore runs nested transactions inline.
type txStore struct{ *Store }

func (t txStore) Transaction(_ context.Context, fn func(tx domain.Repository) error) error {
	return fn(t)
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (s *Store) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if ap.ID == "" {
		ap.ID = uuid.NewString()
	}
	if ap.DurationMinutes == 0 {
		ap.DurationMinutes = domain.DefaultDurationMinutes
	}
	if err := s.checkUnique(ap); err != nil {
		return err
	}

	now := time.Now()
	ap.CreatedAt, ap.UpdatedAt = now, now
	s.data.appointments[ap.ID] = ap.Clone()
	return nil
}

func (s *Store) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	cur, ok := s.data.appointments[ap.ID]
	if !ok {
		return domain.NotFoundError{Entity: "appointment", ID: ap.ID}
	}
	if err := s.checkUnique(ap); err != nil {
		return err
	}

	ap.CreatedAt = cur.CreatedAt
	ap.UpdatedAt = time.Now()
	s.data.appointments[ap.ID] = ap.Clone()
	return nil
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	ap, ok := s.data.appointments[id]
	if !ok {
		return nil, domain.NotFoundError{Entity: "appointment", ID: id}
	}
	return ap.Clone(), nil
}

// LockAppointment is GetAppointment; transactions are already serialized.
func (s *Store) LockAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	return s.GetAppointment(ctx, id)
}

func (s *Store) FindActiveAtSlot(
	ctx context.Context,
	doctorID string,
	date caltime.Date,
	at caltime.TimeOfDay,
	excludeID string,
) (*models.Appointment, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	for _, ap := range s.sorted() {
		if ap.ID != excludeID && isActive(ap) &&
			ap.DoctorIDOrEmpty() == doctorID && ap.Date == date && ap.Time == at {
			return ap.Clone(), nil
		}
	}
	return nil, nil
}

func (s *Store) FindActiveForPatientOnDate(
	ctx context.Context,
	patientID string,
	date caltime.Date,
	excludeID string,
) (*models.Appointment, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	for _, ap := range s.sorted() {
		if ap.ID != excludeID && isActive(ap) && ap.PatientID == patientID && ap.Date == date {
			return ap.Clone(), nil
		}
	}
	return nil, nil
}

func (s *Store) ListActiveForDate(ctx context.Context, date caltime.Date) ([]models.Appointment, error) {
	return s.listActive(ctx, func(ap *models.Appointment) bool { return ap.Date == date })
}

func (s *Store) ListActiveForDoctorOnDate(
	ctx context.Context,
	doctorID string,
	date caltime.Date,
) ([]models.Appointment, error) {
	return s.listActive(ctx, func(ap *models.Appointment) bool {
		return ap.Date == date && ap.DoctorIDOrEmpty() == doctorID
	})
}

func (s *Store) listActive(ctx context.Context, match func(*models.Appointment) bool) ([]models.Appointment, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := []models.Appointment{}
	for _, ap := range s.sorted() {
		if isActive(ap) && match(ap) {
			out = append(out, *ap.Clone())
		}
	}
	return out, nil
}

// checkUnique mirrors the partial unique indexes. Caller holds s.mu.
func (s *Store) checkUnique(ap *models.Appointment) error {
	if !isActive(ap) {
		return nil
	}
	for _, other := range s.data.appointments {
		if other.ID == ap.ID || !isActive(other) || other.Date != ap.Date {
			continue
		}
		if ap.DoctorID != nil && other.DoctorID != nil &&
			*ap.DoctorID == *other.DoctorID && ap.Time == other.Time {
			return domain.SlotConflictError{Reason: domain.ConflictSlotTaken}
		}
		if other.PatientID == ap.PatientID {
			return domain.SlotConflictError{Reason: domain.ConflictPatientDoubleBooked}
		}
	}
	return nil
}

// sorted orders by date, time, created_at, id. Caller holds s.mu.
func (s *Store) sorted() []*models.Appointment {
	out := make([]*models.Appointment, 0, len(s.data.appointments))
	for _, ap := range s.data.appointments {
		out = append(out, ap)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if c := a.Date.Compare(b.Date); c != 0 {
			return c < 0
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out
}

func isActive(ap *models.Appointment) bool {
	return domain.Status(ap.Status).IsActive()
}

// --------------------------------------------------
// Doctor availability
// --------------------------------------------------

func (s *Store) GetAvailabilityProfile(ctx context.Context, doctorID string) (*models.DoctorAvailability, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	p, ok := s.data.profiles[doctorID]
	if !ok {
		return nil, nil
	}
	return cloneProfile(p), nil
}

func (s *Store) ListAvailabilityProfiles(ctx context.Context) ([]models.DoctorAvailability, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := make([]models.DoctorAvailability, 0, len(s.data.profiles))
	for _, p := range s.data.profiles {
		out = append(out, *cloneProfile(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DoctorID < out[j].DoctorID })
	return out, nil
}

func (s *Store) SaveAvailabilityProfile(ctx context.Context, p *models.DoctorAvailability) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	now := time.Now()
	if cur, ok := s.data.profiles[p.DoctorID]; ok {
		p.CreatedAt = cur.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.data.profiles[p.DoctorID] = cloneProfile(p)
	return nil
}

func cloneProfile(p *models.DoctorAvailability) *models.DoctorAvailability {
	out := *p
	out.AvailableDays = append([]string(nil), p.AvailableDays...)
	out.WorkingHoursStart = cloneTOD(p.WorkingHoursStart)
	out.WorkingHoursEnd = cloneTOD(p.WorkingHoursEnd)
	out.BreakStart = cloneTOD(p.BreakStart)
	out.BreakEnd = cloneTOD(p.BreakEnd)
	return &out
}

func cloneTOD(t *caltime.TimeOfDay) *caltime.TimeOfDay {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// --------------------------------------------------
// Holidays
// --------------------------------------------------

func (s *Store) ListHolidays(ctx context.Context) ([]models.Holiday, error) {
	return s.listHolidays(ctx, func(models.Holiday) bool { return true })
}

func (s *Store) ListBlockingBetween(ctx context.Context, from, to caltime.Date) ([]models.Holiday, error) {
	return s.listHolidays(ctx, func(h models.Holiday) bool {
		return h.BlocksAppointments && !h.StartDate.After(to) && !h.EndDate.Before(from)
	})
}

func (s *Store) listHolidays(ctx context.Context, match func(models.Holiday) bool) ([]models.Holiday, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := []models.Holiday{}
	for _, h := range s.data.holidays {
		if match(*h) {
			out = append(out, *h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].StartDate.Compare(out[j].StartDate); c != 0 {
			return c < 0
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) CreateHoliday(ctx context.Context, h *models.Holiday) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	now := time.Now()
	h.CreatedAt, h.UpdatedAt = now, now
	v := *h
	s.data.holidays[h.ID] = &v
	return nil
}

func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	if err := s.begin(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if _, ok := s.data.holidays[id]; !ok {
		return domain.NotFoundError{Entity: "holiday", ID: id}
	}
	delete(s.data.holidays, id)
	return nil
}
