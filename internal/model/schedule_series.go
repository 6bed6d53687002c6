package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
)

// MaxSeriesOccurrences caps how many schedules a single series may create.
const MaxSeriesOccurrences = 52

// ScheduleSeries describes a recurring run of sessions of one class.
type ScheduleSeries struct {
	ClassID         uuid.UUID  `json:"classId"`
	StaffID         *uuid.UUID `json:"staffId,omitempty"`
	RRule           string     `json:"rrule"`      // RFC 5545 RRULE, e.g. FREQ=WEEKLY;COUNT=8
	FirstStart      time.Time  `json:"firstStart"` // DTSTART of the rule
	DurationMinutes int        `json:"durationMinutes"`
	MaxStudents     int        `json:"maxStudents"`
}

// Occurrences expands the rule into session start times.
// Open-ended rules are cut at MaxSeriesOccurrences.
func (s *ScheduleSeries) Occurrences() ([]time.Time, error) {
	if s.DurationMinutes <= 0 {
		return nil, errors.New("durationMinutes: must be greater than zero")
	}

	opts, err := rrule.StrToROption(s.RRule)
	if err != nil {
		return nil, fmt.Errorf("rrule: %w", err)
	}
	opts.Dtstart = s.FirstStart
	rule, err := rrule.NewRRule(*opts)
	if err != nil {
		return nil, fmt.Errorf("rrule: %w", err)
	}

	next := rule.Iterator()
	starts := make([]time.Time, 0, 8)
	for len(starts) < MaxSeriesOccurrences {
		start, ok := next()
		if !ok {
			break
		}
		starts = append(starts, start)
	}

	if len(starts) == 0 {
		return nil, errors.New("rrule: produces no occurrences")
	}
	return starts, nil
}

// Schedules builds one SCHEDULED session per occurrence.
func (s *ScheduleSeries) Schedules() ([]*Schedule, error) {
	starts, err := s.Occurrences()
	if err != nil {
		return nil, err
	}

	duration := time.Duration(s.DurationMinutes) * time.Minute
	schedules := make([]*Schedule, 0, len(starts))
	for _, start := range starts {
		schedules = append(schedules, &Schedule{
			ClassID:     s.ClassID,
			StaffID:     s.StaffID,
			StartTime:   start,
			EndTime:     start.Add(duration),
			MaxStudents: s.MaxStudents,
			Status:      ScheduleStatusScheduled,
		})
	}
	return schedules, nil
}
