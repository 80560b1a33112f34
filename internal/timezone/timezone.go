package timezone

import (
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/clinicportal/clinic-scheduler/internal/caltime"
)

const DefaultTimezone = "UTC"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, _ := time.LoadLocation(DefaultTimezone)
	return loc
}

// ===============================
// Clock
// ===============================

// Clock yields "now" in the clinic's reference timezone. Every date/time
// comparison in the scheduler goes through one.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// Today is the clinic-local calendar date of c.Now().
func Today(c Clock) caltime.Date {
	return caltime.DateOf(c.Now().In(c.Location()))
}

type SystemClock struct {
	loc *time.Location
}

func NewSystemClock(tz string) SystemClock {
	return SystemClock{loc: Location(tz)}
}

func (c SystemClock) Now() time.Time          { return time.Now().In(c.loc) }
func (c SystemClock) Location() *time.Location { return c.loc }

// FixedClock is a settable clock for tests and replays.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
	loc *time.Location
}

func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now, loc: now.Location()}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FixedClock) Location() *time.Location { return c.loc }

func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t.In(c.loc)
	c.mu.Unlock()
}

func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
