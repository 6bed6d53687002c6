package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"   // Awaiting confirmation by staff
	BookingStatusConfirmed BookingStatus = "CONFIRMED" // Seat confirmed
	BookingStatusCompleted BookingStatus = "COMPLETED" // Class attended
	BookingStatusCancelled BookingStatus = "CANCELLED" // Seats released
)

// bookingTransitions lists, for every non-terminal status, where a booking may go next.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is a legal lifecycle step.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

// HoldsSeats reports whether a booking in status s counts against schedule capacity.
func (s BookingStatus) HoldsSeats() bool {
	return s != BookingStatusCancelled
}

type Booking struct {
	ID             uuid.UUID       `json:"id"`
	BookingNumber  string          `json:"bookingNumber"`
	AccountID      uuid.UUID       `json:"userId"`
	ScheduleID     uuid.UUID       `json:"scheduleId"`
	NumberOfPeople int             `json:"numberOfPeople"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	Notes          *string         `json:"notes,omitempty"`
	Status         BookingStatus   `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`

	// Populated for responses, not stored with the booking
	Schedule *Schedule `json:"schedule,omitempty"`
	Account  *Account  `json:"user,omitempty"`
}
