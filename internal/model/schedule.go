package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "SCHEDULED"
	ScheduleStatusCompleted ScheduleStatus = "COMPLETED"
	ScheduleStatusCancelled ScheduleStatus = "CANCELLED"
)

func (s ScheduleStatus) Valid() bool {
	switch s {
	case ScheduleStatusScheduled, ScheduleStatusCompleted, ScheduleStatusCancelled:
		return true
	}
	return false
}

// Schedule is a single time-boxed session of a ClassOffering.
// BookedCount is the number of seats held by non-cancelled bookings;
// Version changes on every write and guards compare-and-set updates.
type Schedule struct {
	ID          uuid.UUID      `json:"id"`
	ClassID     uuid.UUID      `json:"classId"`
	StaffID     *uuid.UUID     `json:"staffId,omitempty"`
	StartTime   time.Time      `json:"startTime"`
	EndTime     time.Time      `json:"endTime"`
	MaxStudents int            `json:"maxStudents"`
	BookedCount int            `json:"bookedCount"`
	Status      ScheduleStatus `json:"status"`
	Version     int64          `json:"-"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`

	// Populated for responses, not stored with the schedule
	Class    *ClassOffering `json:"class,omitempty"`
	Staff    *Staff         `json:"staff,omitempty"`
	Bookings []*Booking     `json:"bookings,omitempty"`
}

// Available returns the number of seats still free.
func (s *Schedule) Available() int {
	available := s.MaxStudents - s.BookedCount
	if available < 0 {
		return 0
	}
	return available
}

// IsBookable reports whether new reservations may be taken at the given moment.
func (s *Schedule) IsBookable(now time.Time) bool {
	return s.Status == ScheduleStatusScheduled && s.StartTime.After(now)
}

// IsAssignedTo reports whether the schedule is taught by the given staff member.
func (s *Schedule) IsAssignedTo(staffID *uuid.UUID) bool {
	return s.StaffID != nil && staffID != nil && *s.StaffID == *staffID
}

// Validate checks the invariants that hold independently of bookings.
func (s *Schedule) Validate() error {
	switch {
	case !s.StartTime.Before(s.EndTime):
		return errors.New("startTime: must be before endTime")
	case s.MaxStudents <= 0:
		return errors.New("maxStudents: must be greater than zero")
	case s.BookedCount < 0:
		return errors.New("bookedCount: must not be negative")
	case s.BookedCount > s.MaxStudents:
		return errors.New("maxStudents: must not be below the number of booked seats")
	case !s.Status.Valid():
		return errors.New("status: must be SCHEDULED, COMPLETED or CANCELLED")
	}
	return nil
}
