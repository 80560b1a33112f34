package appointment

import (
	"context"
	"fmt"
	"sort"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
	domain "github.com/clinicportal/clinic-scheduler/internal/domain/appointment"
)

const (
	StrategyFirstAvailable = "first_available"
	StrategyLeastLoaded    = "least_loaded"
)

// AssignmentStrategy picks one doctor out of those free at a slot.
// candidates is never empty.
type AssignmentStrategy interface {
	Pick(ctx context.Context, repo domain.Repository, date caltime.Date, candidates []string) (string, error)
}

func StrategyByName(name string) (AssignmentStrategy, error) {
	switch name {
	case "", StrategyFirstAvailable:
		return FirstAvailable{}, nil
	case StrategyLeastLoaded:
		return LeastLoaded{}, nil
	default:
		return nil, fmt.Errorf("unknown assignment strategy %q", name)
	}
}

// FirstAvailable picks the lowest doctor id.
type FirstAvailable struct{}

func (FirstAvailable) Pick(_ context.Context, _ domain.Repository, _ caltime.Date, candidates []string) (string, error) {
	ids := append([]string(nil), candidates...)
	sort.Strings(ids)
	return ids[0], nil
}

// LeastLoaded picks the doctor with the fewest active appointments that
// day; ties go to the lowest id.
type LeastLoaded struct{}

func (LeastLoaded) Pick(ctx context.Context, repo domain.Repository, date caltime.Date, candidates []string) (string, error) {
	ids := append([]string(nil), candidates...)
	sort.Strings(ids)

	best, bestLoad := "", -1
	for _, id := range ids {
		aps, err := repo.ListActiveForDoctorOnDate(ctx, id, date)
		if err != nil {
			return "", err
		}
		if bestLoad < 0 || len(aps) < bestLoad {
			best, bestLoad = id, len(aps)
		}
	}
	return best, nil
}
