package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultBuffer  = 100
	deliverTimeout = 5 * time.Second
)

// Event describes one successful scheduling transition.
type Event struct {
	Type          string
	AppointmentID string
	PatientID     string
	DoctorID      string
	ActorID       string
	Status        string
	NotifyStaff   bool
	At            time.Time
	Metadata      map[string]any
}

// Event types, one per transition.
const (
	AppointmentCreated     = "appointment_created"
	AppointmentAssigned    = "appointment_assigned"
	AppointmentConfirmed   = "appointment_confirmed"
	AppointmentRescheduled = "appointment_rescheduled"
	AppointmentCancelled   = "appointment_cancelled"
	AppointmentCompleted   = "appointment_completed"
	PriorityChanged        = "appointment_priority_changed"
)

// Notifier is what the scheduling core calls. It must never block or fail.
type Notifier interface {
	Notify(ev Event)
}

// Sink delivers events somewhere (audit table, log, email gateway).
type Sink interface {
	Deliver(ctx context.Context, ev Event) error
}

type SinkFunc func(ctx context.Context, ev Event) error

func (f SinkFunc) Deliver(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Dispatcher fans events out to sinks from a single background worker.
// When the queue is full the event is dropped.
type Dispatcher struct {
	log   zerolog.Logger
	sinks []Sink
	queue chan Event

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

var _ Notifier = (*Dispatcher)(nil)

func NewDispatcher(log zerolog.Logger, buffer int, sinks ...Sink) *Dispatcher {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	d := &Dispatcher{
		log:   log,
		sinks: sinks,
		queue: make(chan Event, buffer),
		done:  make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for ev := range d.queue {
		for _, s := range d.sinks {
			d.deliver(s, ev)
		}
	}
}

func (d *Dispatcher) deliver(s Sink, ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			d.log.Warn().Interface("panic", r).Str("event", ev.Type).Msg("notification sink panicked")
		}
	}()

	if err := s.Deliver(ctx, ev); err != nil {
		d.log.Warn().Err(err).
			Str("event", ev.Type).
			Str("appointment_id", ev.AppointmentID).
			Msg("notification delivery failed")
	}
}

func (d *Dispatcher) Notify(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return
	}
	select {
	case d.queue <- ev:
	default:
		d.log.Warn().Str("event", ev.Type).Msg("notification queue full, dropping event")
	}
}

// Close stops accepting events and waits for queued ones to drain or ctx
// to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogSink writes each event as a structured log line.
func LogSink(log zerolog.Logger) Sink {
	return SinkFunc(func(_ context.Context, ev Event) error {
		log.Info().
			Str("event", ev.Type).
			Str("appointment_id", ev.AppointmentID).
			Str("patient_id", ev.PatientID).
			Str("doctor_id", ev.DoctorID).
			Str("actor_id", ev.ActorID).
			Str("status", ev.Status).
			Bool("notify_staff", ev.NotifyStaff).
			Msg("appointment event")
		return nil
	})
}

// Nop discards events.
type Nop struct{}

func (Nop) Notify(Event) {}
