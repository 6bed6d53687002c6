// Package metrics holds the domain counters exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reservation results.
const (
	ResultBooked           = "booked"
	ResultCapacityExceeded = "capacity_exceeded"
	ResultConflict         = "conflict"
)

var (
	Reservations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cooking_school_reservations_total",
			Help: "Reservation attempts by result",
		},
		[]string{"result"},
	)
	ReservationRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cooking_school_reservation_retries_total",
			Help: "Reservation transactions retried after losing a concurrent write",
		},
	)
	SeatsBooked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cooking_school_seats_booked_total",
			Help: "Seats taken by new bookings",
		},
	)
	SeatsReleased = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cooking_school_seats_released_total",
			Help: "Seats returned by cancelled bookings",
		},
	)
	BookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cooking_school_booking_transitions_total",
			Help: "Booking status changes by target status",
		},
		[]string{"status"},
	)
	ApplicationsReviewed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cooking_school_applications_reviewed_total",
			Help: "Staff applications reviewed by outcome",
		},
		[]string{"status"},
	)
	SchedulesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cooking_school_schedules_completed_total",
			Help: "Schedules marked completed by the sweeper",
		},
	)
)
