package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedule_Available(t *testing.T) {
	s := &Schedule{MaxStudents: 10, BookedCount: 7}
	assert.Equal(t, 3, s.Available())

	s.BookedCount = 10
	assert.Equal(t, 0, s.Available())
}

func TestSchedule_IsBookable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &Schedule{Status: ScheduleStatusScheduled, StartTime: now.Add(time.Hour)}
	assert.True(t, s.IsBookable(now))

	s.StartTime = now.Add(-time.Minute)
	assert.False(t, s.IsBookable(now), "past session")

	s.StartTime = now.Add(time.Hour)
	s.Status = ScheduleStatusCancelled
	assert.False(t, s.IsBookable(now), "cancelled session")
}

func TestSchedule_Validate(t *testing.T) {
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	valid := Schedule{StartTime: start, EndTime: start.Add(2 * time.Hour), MaxStudents: 8, Status: ScheduleStatusScheduled}
	require.NoError(t, valid.Validate())

	reversed := valid
	reversed.EndTime = start
	assert.ErrorContains(t, reversed.Validate(), "startTime")

	overbooked := valid
	overbooked.BookedCount = 9
	assert.ErrorContains(t, overbooked.Validate(), "maxStudents")

	noSeats := valid
	noSeats.MaxStudents = 0
	assert.ErrorContains(t, noSeats.Validate(), "maxStudents")
}

func TestSchedule_IsAssignedTo(t *testing.T) {
	staffID := uuid.New()
	other := uuid.New()
	s := &Schedule{StaffID: &staffID}

	assert.True(t, s.IsAssignedTo(&staffID))
	assert.False(t, s.IsAssignedTo(&other))
	assert.False(t, s.IsAssignedTo(nil))
	assert.False(t, (&Schedule{}).IsAssignedTo(&staffID))
}

func TestScheduleSeries_Schedules(t *testing.T) {
	first := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	series := &ScheduleSeries{
		ClassID:         uuid.New(),
		RRule:           "FREQ=WEEKLY;COUNT=4",
		FirstStart:      first,
		DurationMinutes: 90,
		MaxStudents:     6,
	}

	schedules, err := series.Schedules()
	require.NoError(t, err)
	require.Len(t, schedules, 4)

	assert.Equal(t, first, schedules[0].StartTime)
	assert.Equal(t, first.Add(90*time.Minute), schedules[0].EndTime)
	assert.Equal(t, first.AddDate(0, 0, 21), schedules[3].StartTime)
	for _, s := range schedules {
		assert.Equal(t, ScheduleStatusScheduled, s.Status)
		assert.Equal(t, 6, s.MaxStudents)
	}
}

func TestScheduleSeries_OpenEndedRuleIsCapped(t *testing.T) {
	series := &ScheduleSeries{
		RRule:           "FREQ=DAILY",
		FirstStart:      time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	}

	starts, err := series.Occurrences()
	require.NoError(t, err)
	assert.Len(t, starts, MaxSeriesOccurrences)
}

func TestScheduleSeries_InvalidRule(t *testing.T) {
	series := &ScheduleSeries{RRule: "NOT_A_RULE", DurationMinutes: 60}
	_, err := series.Occurrences()
	assert.ErrorContains(t, err, "rrule")
}
