// Package availability turns a tutor's weekly rules into concrete bookable
// slots for a calendar date. Everything here is a pure function of its
// arguments; loading rules and bookings is the caller's job.
package availability

import (
	"sort"
	"time"

	"reschedule-service/internal/models"
)

const DateLayout = "2006-01-02"

// Slot is a free interval on a given date, expressed both in the tutor's
// local wall clock and as absolute instants.
type Slot struct {
	Date      string
	StartTime string
	EndTime   string
	Timezone  string
	Start     time.Time
	End       time.Time
}

// Contains reports whether t falls in [Start, End).
func (s Slot) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

type window struct {
	Interval
	loc *time.Location
	tz  string
}

// Resolve computes the free slots on date. Rules for date's weekday are
// unioned, then every busy interval widened by the largest matching buffer
// and every time-off interval are cut out. Only date's year, month and day
// are used.
func Resolve(date time.Time, rules []models.AvailabilityRule, busy, timeOff []Interval) []Slot {
	windows, buffer := matchingWindows(date, rules)
	if len(windows) == 0 {
		return []Slot{}
	}

	merged := mergeWindows(windows)

	cuts := make([]Interval, 0, len(busy)+len(timeOff))
	for _, b := range busy {
		cuts = append(cuts, b.Expand(buffer))
	}
	cuts = append(cuts, timeOff...)
	cuts = Normalize(cuts)

	dateStr := civil(date).Format(DateLayout)

	slots := make([]Slot, 0, len(merged))
	for _, w := range merged {
		for _, free := range Subtract(w.Interval, cuts) {
			slots = append(slots, Slot{
				Date:      dateStr,
				StartTime: free.Start.In(w.loc).Format("15:04"),
				EndTime:   free.End.In(w.loc).Format("15:04"),
				Timezone:  w.tz,
				Start:     free.Start,
				End:       free.End,
			})
		}
	}

	return slots
}

// BusyWindow returns the span that bookings must overlap to affect the
// slots on date: the union of matching rule windows widened by the buffer.
func BusyWindow(date time.Time, rules []models.AvailabilityRule) (Interval, bool) {
	windows, buffer := matchingWindows(date, rules)
	if len(windows) == 0 {
		return Interval{}, false
	}

	span := windows[0].Interval
	for _, w := range windows[1:] {
		if w.Start.Before(span.Start) {
			span.Start = w.Start
		}
		if w.End.After(span.End) {
			span.End = w.End
		}
	}

	return span.Expand(buffer), true
}

// LocalDates returns the distinct calendar dates t falls on across the
// zones used by rules.
func LocalDates(t time.Time, rules []models.AvailabilityRule) []time.Time {
	seen := make(map[string]struct{})
	var dates []time.Time

	for _, r := range rules {
		loc, err := time.LoadLocation(r.Timezone)
		if err != nil {
			continue
		}
		local := t.In(loc)
		d := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
		key := d.Format(DateLayout)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		dates = append(dates, d)
	}

	return dates
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func matchingWindows(date time.Time, rules []models.AvailabilityRule) ([]window, time.Duration) {
	d := civil(date)
	weekday := int(d.Weekday())

	var windows []window
	buffer := 0

	for _, r := range rules {
		if r.DayOfWeek != weekday {
			continue
		}

		loc, err := time.LoadLocation(r.Timezone)
		if err != nil {
			continue
		}

		sh, sm, ok := ParseClock(r.StartTime)
		if !ok {
			continue
		}
		eh, em, ok := ParseClock(r.EndTime)
		if !ok {
			continue
		}

		start := time.Date(d.Year(), d.Month(), d.Day(), sh, sm, 0, 0, loc)
		end := time.Date(d.Year(), d.Month(), d.Day(), eh, em, 0, 0, loc)
		if !end.After(start) {
			continue
		}

		windows = append(windows, window{
			Interval: Interval{Start: start, End: end},
			loc:      loc,
			tz:       r.Timezone,
		})

		if r.BufferMinutes > buffer {
			buffer = r.BufferMinutes
		}
	}

	return windows, time.Duration(buffer) * time.Minute
}

// mergeWindows unions overlapping or touching windows. A merged window keeps
// the zone of the window that starts it.
func mergeWindows(windows []window) []window {
	sort.Slice(windows, func(i, j int) bool {
		return windows[i].Start.Before(windows[j].Start)
	})

	merged := []window{windows[0]}
	for _, w := range windows[1:] {
		last := &merged[len(merged)-1]
		if !w.Start.After(last.End) {
			if w.End.After(last.End) {
				last.End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}

	return merged
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
