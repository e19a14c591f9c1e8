package availability

import (
	"fmt"
	"sort"
	"time"

	"reschedule-service/internal/models"
)

// Interval is a half-open [Start, End) range of absolute time.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Empty() bool {
	return !i.End.After(i.Start)
}

func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

// Expand widens the interval by d on both ends.
func (i Interval) Expand(d time.Duration) Interval {
	return Interval{Start: i.Start.Add(-d), End: i.End.Add(d)}
}

// Normalize drops empty intervals and sorts the rest by start.
func Normalize(in []Interval) []Interval {
	out := make([]Interval, 0, len(in))
	for _, iv := range in {
		if !iv.Empty() {
			out = append(out, iv)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})

	return out
}

// Subtract removes cuts from iv. cuts must be sorted by start; they may
// overlap each other.
func Subtract(iv Interval, cuts []Interval) []Interval {
	var out []Interval
	cur := iv.Start

	for _, c := range cuts {
		if !c.End.After(cur) {
			continue
		}
		if !c.Start.Before(iv.End) {
			break
		}
		if c.Start.After(cur) {
			out = append(out, Interval{Start: cur, End: c.Start})
		}
		cur = c.End
		if !cur.Before(iv.End) {
			return out
		}
	}

	if cur.Before(iv.End) {
		out = append(out, Interval{Start: cur, End: iv.End})
	}

	return out
}

// ParseClock accepts HH:MM and HH:MM:SS (the latter is what postgres TIME
// columns render as).
func ParseClock(s string) (int, int, bool) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour(), t.Minute(), true
		}
	}
	return 0, 0, false
}

// ValidateRule checks a single rule in isolation.
func ValidateRule(r models.AvailabilityRule) error {
	if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
		return fmt.Errorf("day_of_week %d out of range 0..6", r.DayOfWeek)
	}
	if r.BufferMinutes < 0 {
		return fmt.Errorf("buffer_minutes must not be negative")
	}
	if _, err := time.LoadLocation(r.Timezone); err != nil || r.Timezone == "" {
		return fmt.Errorf("unknown timezone %q", r.Timezone)
	}

	sh, sm, ok := ParseClock(r.StartTime)
	if !ok {
		return fmt.Errorf("invalid start_time %q", r.StartTime)
	}
	eh, em, ok := ParseClock(r.EndTime)
	if !ok {
		return fmt.Errorf("invalid end_time %q", r.EndTime)
	}
	if eh*60+em <= sh*60+sm {
		return fmt.Errorf("start_time %s must be before end_time %s", r.StartTime, r.EndTime)
	}

	return nil
}
