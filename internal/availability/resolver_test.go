package availability_test

import (
	"testing"
	"time"

	"reschedule-service/internal/availability"
	"reschedule-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-03-04 is a Wednesday.
var wednesday = time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

func rule(day int, start, end, tz string, buffer int) models.AvailabilityRule {
	return models.AvailabilityRule{
		TutorID:       "tutor-1",
		DayOfWeek:     day,
		StartTime:     start,
		EndTime:       end,
		Timezone:      tz,
		BufferMinutes: buffer,
	}
}

func at(t *testing.T, tz string, hour, min int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation(tz)
	require.NoError(t, err)
	return time.Date(2026, 3, 4, hour, min, 0, 0, loc)
}

func TestResolve_NoRules(t *testing.T) {
	slots := availability.Resolve(wednesday, nil, nil, nil)

	require.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestResolve_NoRuleForWeekday(t *testing.T) {
	rules := []models.AvailabilityRule{rule(1, "09:00", "17:00", "UTC", 0)}

	assert.Empty(t, availability.Resolve(wednesday, rules, nil, nil))
}

func TestResolve_BookingWithBuffer(t *testing.T) {
	rules := []models.AvailabilityRule{rule(3, "09:00", "17:00", "Europe/Berlin", 15)}
	busy := []availability.Interval{
		{Start: at(t, "Europe/Berlin", 12, 0), End: at(t, "Europe/Berlin", 13, 0)},
	}

	slots := availability.Resolve(wednesday, rules, busy, nil)

	require.Len(t, slots, 2)
	assert.Equal(t, "09:00", slots[0].StartTime)
	assert.Equal(t, "11:45", slots[0].EndTime)
	assert.Equal(t, "13:15", slots[1].StartTime)
	assert.Equal(t, "17:00", slots[1].EndTime)
	assert.Equal(t, "2026-03-04", slots[0].Date)
	assert.Equal(t, "Europe/Berlin", slots[0].Timezone)
	assert.True(t, slots[0].Start.Equal(at(t, "Europe/Berlin", 9, 0)))
	assert.True(t, slots[1].End.Equal(at(t, "Europe/Berlin", 17, 0)))
}

func TestResolve_BufferConsumesWholeWindow(t *testing.T) {
	rules := []models.AvailabilityRule{rule(3, "10:00", "11:00", "UTC", 30)}
	busy := []availability.Interval{
		{Start: at(t, "UTC", 10, 15), End: at(t, "UTC", 10, 45)},
	}

	assert.Empty(t, availability.Resolve(wednesday, rules, busy, nil))
}

func TestResolve_OverlappingRulesAreUnioned(t *testing.T) {
	rules := []models.AvailabilityRule{
		rule(3, "13:00", "18:00", "UTC", 0),
		rule(3, "09:00", "14:00", "UTC", 0),
		rule(3, "18:00", "19:00", "UTC", 0),
	}

	slots := availability.Resolve(wednesday, rules, nil, nil)

	require.Len(t, slots, 1)
	assert.Equal(t, "09:00", slots[0].StartTime)
	assert.Equal(t, "19:00", slots[0].EndTime)
}

func TestResolve_TimeOffIsNotBuffered(t *testing.T) {
	rules := []models.AvailabilityRule{rule(3, "09:00", "12:00", "UTC", 15)}
	off := []availability.Interval{
		{Start: at(t, "UTC", 10, 0), End: at(t, "UTC", 11, 0)},
	}

	slots := availability.Resolve(wednesday, rules, nil, off)

	require.Len(t, slots, 2)
	assert.Equal(t, "10:00", slots[0].EndTime)
	assert.Equal(t, "11:00", slots[1].StartTime)
}

func TestResolve_OrderedAndDisjoint(t *testing.T) {
	rules := []models.AvailabilityRule{
		rule(3, "15:00", "18:00", "UTC", 0),
		rule(3, "08:00", "10:00", "UTC", 0),
	}
	busy := []availability.Interval{
		{Start: at(t, "UTC", 16, 0), End: at(t, "UTC", 17, 0)},
		{Start: at(t, "UTC", 8, 30), End: at(t, "UTC", 9, 0)},
		{Start: at(t, "UTC", 8, 45), End: at(t, "UTC", 9, 15)},
	}

	slots := availability.Resolve(wednesday, rules, busy, nil)

	require.Len(t, slots, 4)
	for i := 1; i < len(slots); i++ {
		assert.False(t, slots[i].Start.Before(slots[i-1].End), "slot %d overlaps previous", i)
	}
	assert.Equal(t, "09:15", slots[1].StartTime)
}

func TestResolve_SkipsBrokenRules(t *testing.T) {
	rules := []models.AvailabilityRule{
		rule(3, "09:00", "10:00", "Mars/Olympus", 0),
		rule(3, "nine", "10:00", "UTC", 0),
		rule(3, "12:00", "11:00", "UTC", 0),
		rule(3, "14:00:00", "15:00:00", "UTC", 0),
	}

	slots := availability.Resolve(wednesday, rules, nil, nil)

	require.Len(t, slots, 1)
	assert.Equal(t, "14:00", slots[0].StartTime)
}

func TestBusyWindow(t *testing.T) {
	rules := []models.AvailabilityRule{
		rule(3, "09:00", "12:00", "UTC", 10),
		rule(3, "14:00", "17:00", "UTC", 20),
	}

	span, ok := availability.BusyWindow(wednesday, rules)

	require.True(t, ok)
	assert.True(t, span.Start.Equal(at(t, "UTC", 8, 40)))
	assert.True(t, span.End.Equal(at(t, "UTC", 17, 20)))

	_, ok = availability.BusyWindow(wednesday.AddDate(0, 0, 1), rules)
	assert.False(t, ok)
}

func TestLocalDates(t *testing.T) {
	rules := []models.AvailabilityRule{
		rule(3, "09:00", "12:00", "America/New_York", 0),
		rule(4, "09:00", "12:00", "Asia/Tokyo", 0),
		rule(5, "09:00", "12:00", "America/New_York", 0),
	}
	instant := time.Date(2026, 3, 5, 2, 0, 0, 0, time.UTC)

	dates := availability.LocalDates(instant, rules)

	require.Len(t, dates, 2)
	assert.Equal(t, "2026-03-04", dates[0].Format(availability.DateLayout))
	assert.Equal(t, "2026-03-05", dates[1].Format(availability.DateLayout))
}

func TestSubtract(t *testing.T) {
	base := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	h := func(n int) time.Time { return base.Add(time.Duration(n) * time.Hour) }

	tests := []struct {
		name string
		cuts []availability.Interval
		want []availability.Interval
	}{
		{
			name: "no cuts",
			want: []availability.Interval{{Start: h(9), End: h(17)}},
		},
		{
			name: "cut before window",
			cuts: []availability.Interval{{Start: h(6), End: h(8)}},
			want: []availability.Interval{{Start: h(9), End: h(17)}},
		},
		{
			name: "cut straddles start",
			cuts: []availability.Interval{{Start: h(8), End: h(10)}},
			want: []availability.Interval{{Start: h(10), End: h(17)}},
		},
		{
			name: "cut straddles end",
			cuts: []availability.Interval{{Start: h(16), End: h(18)}},
			want: []availability.Interval{{Start: h(9), End: h(16)}},
		},
		{
			name: "cut covers window",
			cuts: []availability.Interval{{Start: h(8), End: h(18)}},
		},
		{
			name: "touching cut leaves window intact",
			cuts: []availability.Interval{{Start: h(17), End: h(18)}},
			want: []availability.Interval{{Start: h(9), End: h(17)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := availability.Subtract(availability.Interval{Start: h(9), End: h(17)}, tt.cuts)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateRule(t *testing.T) {
	assert.NoError(t, availability.ValidateRule(rule(0, "09:00", "10:00", "UTC", 0)))
	assert.Error(t, availability.ValidateRule(rule(7, "09:00", "10:00", "UTC", 0)))
	assert.Error(t, availability.ValidateRule(rule(1, "10:00", "10:00", "UTC", 0)))
	assert.Error(t, availability.ValidateRule(rule(1, "09:00", "10:00", "", 0)))
	assert.Error(t, availability.ValidateRule(rule(1, "09:00", "10:00", "UTC", -5)))
	assert.Error(t, availability.ValidateRule(rule(1, "9am", "10:00", "UTC", 0)))
}
