package appointment

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ActiveStatuses hold a slot; the others are terminal.
var ActiveStatuses = []Status{StatusPending, StatusScheduled, StatusConfirmed}

func ActiveStatusStrings() []string {
	out := make([]string, len(ActiveStatuses))
	for i, s := range ActiveStatuses {
		out[i] = string(s)
	}
	return out
}

func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusScheduled || s == StatusConfirmed
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ===============================
// Actions
// ===============================

type Action string

const (
	ActionCreate      Action = "create"
	ActionAssign      Action = "assign"
	ActionConfirm     Action = "confirm"
	ActionReschedule  Action = "reschedule"
	ActionCancel      Action = "cancel"
	ActionComplete    Action = "complete"
	ActionSetPriority Action = "set_priority"
)

// allowedFrom lists the source states each action accepts. Completed and
// cancelled appear nowhere, so nothing leaves a terminal state.
var allowedFrom = map[Action][]Status{
	ActionAssign:      {StatusPending},
	ActionConfirm:     {StatusScheduled},
	ActionReschedule:  {StatusScheduled, StatusConfirmed},
	ActionCancel:      {StatusPending, StatusScheduled, StatusConfirmed},
	ActionComplete:    {StatusConfirmed},
	ActionSetPriority: {StatusPending, StatusScheduled, StatusConfirmed},
}

// ===============================
// Validations
// ===============================

// CanApply reports whether action may run on an appointment in current.
func CanApply(current Status, action Action) error {
	for _, s := range allowedFrom[action] {
		if s == current {
			return nil
		}
	}
	return InvalidStateTransitionError{From: current, Action: action}
}

func CanAssign(current Status) error     { return CanApply(current, ActionAssign) }
func CanConfirm(current Status) error    { return CanApply(current, ActionConfirm) }
func CanReschedule(current Status) error { return CanApply(current, ActionReschedule) }
func CanCancel(current Status) error     { return CanApply(current, ActionCancel) }
func CanComplete(current Status) error   { return CanApply(current, ActionComplete) }

// InitialStatus is scheduled when a doctor is bound at creation, pending otherwise.
func InitialStatus(a DoctorAssignment) Status {
	if a.IsAssigned() {
		return StatusScheduled
	}
	return StatusPending
}
