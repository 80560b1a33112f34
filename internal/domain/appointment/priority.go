package appointment

import (
	"sort"
	"strings"

	"github.com/clinicportal/clinic-scheduler/internal/models"
)

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority defaults an empty value to normal.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriorityNormal, nil
	case PriorityNormal, PriorityHigh, PriorityUrgent:
		return p, nil
	default:
		return "", NewValidationError("priority", "invalid_priority")
	}
}

// Rank orders urgent before high before normal. Unknown values sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityNormal:
		return 2
	default:
		return 3
	}
}

// Less is the queue comparator: priority rank, then date, then time, then
// creation order, then id.
func Less(a, b *models.Appointment) bool {
	if ra, rb := Priority(a.Priority).Rank(), Priority(b.Priority).Rank(); ra != rb {
		return ra < rb
	}
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
}

func SortQueue(aps []models.Appointment) {
	sort.SliceStable(aps, func(i, j int) bool {
		return Less(&aps[i], &aps[j])
	})
}
