package caltime

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

const TimeLayout = "15:04"

const minutesPerDay = 24 * 60

// TimeOfDay is a wall-clock time in minutes since midnight, rendered "HH:MM".
type TimeOfDay int

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ClockOf returns the wall-clock time of t in t's own location, truncated to the minute.
func ClockOf(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute())
}

// ParseTimeOfDay accepts "HH:MM" and "HH:MM:SS" (seconds are dropped).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		t, err = time.Parse("15:04:05", s)
	}
	if err != nil {
		return 0, fmt.Errorf("caltime: invalid time of day %q", s)
	}
	return NewTimeOfDay(t.Hour(), t.Minute()), nil
}

func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < minutesPerDay
}

func (t TimeOfDay) AddMinutes(n int) TimeOfDay {
	return t + TimeOfDay(n)
}

// Aligned reports whether t falls on a step-minute boundary.
func (t TimeOfDay) Aligned(step int) bool {
	return step > 0 && int(t)%step == 0
}

// RoundUp returns the first step-minute boundary at or after t.
func (t TimeOfDay) RoundUp(step int) TimeOfDay {
	if step <= 0 || t.Aligned(step) {
		return t
	}
	return t + TimeOfDay(step-int(t)%step)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	parsed, err := ParseTimeOfDay(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t *TimeOfDay) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case time.Time:
		*t = ClockOf(v)
		return nil
	default:
		return fmt.Errorf("caltime: cannot scan %T into TimeOfDay", src)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
