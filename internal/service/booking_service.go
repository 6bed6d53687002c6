package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/cooking_school/internal/events"
	"github.com/Freeeeeet/cooking_school/internal/metrics"
	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/policy"
	"github.com/Freeeeeet/cooking_school/internal/repository"
)

type BookingService struct {
	store      repository.Store
	events     events.Publisher
	logger     *zap.Logger
	maxRetries uint64
	now        func() time.Time
}

func NewBookingService(store repository.Store, publisher events.Publisher, logger *zap.Logger, maxRetries int) *BookingService {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &BookingService{
		store:      store,
		events:     publisher,
		logger:     logger,
		maxRetries: uint64(maxRetries),
		now:        time.Now,
	}
}

type ReserveInput struct {
	ScheduleID     uuid.UUID
	NumberOfPeople int
	Notes          *string
}

// Reserve books seats on a schedule for the actor. The seat check, the
// booking insert and the booked count increment commit together; a lost
// race on the schedule version is retried before it reaches the caller.
func (s *BookingService) Reserve(ctx context.Context, actor Actor, in ReserveInput) (*model.Booking, error) {
	if err := actor.require(policy.BookingCreate); err != nil {
		return nil, err
	}
	if in.NumberOfPeople < 1 {
		return nil, invalid("numberOfPeople", "must be at least 1")
	}

	var booking *model.Booking
	err := retryConflicts(ctx, s.maxRetries, metrics.ReservationRetries.Inc, func(ctx context.Context) error {
		var err error
		booking, err = s.reserveOnce(ctx, actor, in)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrCapacityExceeded):
			metrics.Reservations.WithLabelValues(metrics.ResultCapacityExceeded).Inc()
		case errors.Is(err, ErrConflict):
			metrics.Reservations.WithLabelValues(metrics.ResultConflict).Inc()
		}
		return nil, err
	}

	metrics.Reservations.WithLabelValues(metrics.ResultBooked).Inc()
	metrics.SeatsBooked.Add(float64(booking.NumberOfPeople))

	s.logger.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("booking_number", booking.BookingNumber),
		zap.String("user_id", actor.AccountID.String()),
		zap.String("schedule_id", in.ScheduleID.String()),
		zap.Int("number_of_people", booking.NumberOfPeople),
		zap.Int("booked_count", booking.Schedule.BookedCount),
	)

	if err := s.events.BookingCreated(ctx, booking); err != nil {
		s.logger.Warn("Failed to publish booking event", zap.Error(err))
	}
	return booking, nil
}

func (s *BookingService) reserveOnce(ctx context.Context, actor Actor, in ReserveInput) (*model.Booking, error) {
	var booking *model.Booking

	err := s.store.Tx(ctx, func(r repository.Repositories) error {
		schedule, err := r.Schedules().GetForUpdate(ctx, in.ScheduleID)
		if err != nil {
			return fmt.Errorf("get schedule: %w", err)
		}
		if schedule == nil {
			return notFound("schedule", in.ScheduleID)
		}

		now := s.now()
		if schedule.Status != model.ScheduleStatusScheduled {
			return invalid("scheduleId", fmt.Sprintf("schedule is %s", schedule.Status))
		}
		if !schedule.IsBookable(now) {
			return invalid("scheduleId", "schedule has already started")
		}

		if available := schedule.Available(); in.NumberOfPeople > available {
			return &CapacityExceededError{Available: available}
		}

		class, err := r.Classes().GetByID(ctx, schedule.ClassID)
		if err != nil {
			return fmt.Errorf("get class: %w", err)
		}
		if class == nil {
			return notFound("class", schedule.ClassID)
		}

		number, err := generateBookingNumber(ctx, r.Bookings(), now)
		if err != nil {
			return err
		}

		booking = &model.Booking{
			ID:             uuid.New(),
			BookingNumber:  number,
			AccountID:      actor.AccountID,
			ScheduleID:     schedule.ID,
			NumberOfPeople: in.NumberOfPeople,
			TotalPrice:     class.TotalFor(in.NumberOfPeople),
			Notes:          in.Notes,
			Status:         model.BookingStatusPending,
		}
		if err := r.Bookings().Create(ctx, booking); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		booked, err := r.Schedules().AdjustBooked(ctx, schedule.ID, in.NumberOfPeople, schedule.Version)
		if err != nil {
			return fmt.Errorf("book seats: %w", err)
		}

		schedule.BookedCount = booked
		schedule.Class = class
		booking.Schedule = schedule
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// UpdateStatus moves a booking along its lifecycle. Cancelling releases the
// booking's seats exactly once; cancelling an already cancelled booking
// returns it unchanged.
func (s *BookingService) UpdateStatus(ctx context.Context, actor Actor, bookingID uuid.UUID, to model.BookingStatus) (*model.Booking, error) {
	if !to.Valid() {
		return nil, invalid("status", "must be PENDING, CONFIRMED, COMPLETED or CANCELLED")
	}

	var (
		booking *model.Booking
		from    model.BookingStatus
		changed bool
	)
	err := retryConflicts(ctx, s.maxRetries, nil, func(ctx context.Context) error {
		return s.store.Tx(ctx, func(r repository.Repositories) error {
			current, err := r.Bookings().GetByID(ctx, bookingID)
			if err != nil {
				return fmt.Errorf("get booking: %w", err)
			}
			if current == nil {
				return notFound("booking", bookingID)
			}

			schedule, err := r.Schedules().GetForUpdate(ctx, current.ScheduleID)
			if err != nil {
				return fmt.Errorf("get schedule: %w", err)
			}
			if schedule == nil {
				return notFound("schedule", current.ScheduleID)
			}

			// Read again under the schedule lock so a concurrent cancel is seen.
			current, err = r.Bookings().GetByID(ctx, bookingID)
			if err != nil {
				return fmt.Errorf("get booking: %w", err)
			}
			if current == nil {
				return notFound("booking", bookingID)
			}

			if err := authorizeTransition(actor, current, schedule, to); err != nil {
				return err
			}

			from = current.Status
			booking = current
			booking.Schedule = schedule
			changed = false

			if from == model.BookingStatusCancelled && to == model.BookingStatusCancelled {
				return nil
			}
			if !from.CanTransitionTo(to) {
				return &InvalidTransitionError{From: from, To: to}
			}

			if err := r.Bookings().UpdateStatus(ctx, bookingID, to); err != nil {
				return fmt.Errorf("update booking status: %w", err)
			}

			if to == model.BookingStatusCancelled {
				booked, err := r.Schedules().AdjustBooked(ctx, schedule.ID, -current.NumberOfPeople, schedule.Version)
				if err != nil {
					return fmt.Errorf("release seats: %w", err)
				}
				schedule.BookedCount = booked
			}

			booking.Status = to
			booking.UpdatedAt = s.now()
			changed = true
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if !changed {
		return booking, nil
	}

	metrics.BookingTransitions.WithLabelValues(string(to)).Inc()
	if to == model.BookingStatusCancelled {
		metrics.SeatsReleased.Add(float64(booking.NumberOfPeople))
	}

	s.logger.Info("Booking status changed",
		zap.String("booking_id", booking.ID.String()),
		zap.String("booking_number", booking.BookingNumber),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actor_id", actor.AccountID.String()),
		zap.Int("booked_count", booking.Schedule.BookedCount),
	)

	if err := s.events.BookingStatusChanged(ctx, booking, from); err != nil {
		s.logger.Warn("Failed to publish booking event", zap.Error(err))
	}
	return booking, nil
}

func authorizeTransition(actor Actor, booking *model.Booking, schedule *model.Schedule, to model.BookingStatus) error {
	switch {
	case to == model.BookingStatusCancelled && booking.AccountID == actor.AccountID && actor.Can(policy.BookingCancelOwn):
		return nil
	case actor.Can(policy.BookingTransitionAny):
		return nil
	case actor.Can(policy.BookingTransitionAssigned) && schedule.IsAssignedTo(actor.StaffID):
		return nil
	}
	return ErrForbidden
}

func canReadBooking(actor Actor, booking *model.Booking, schedule *model.Schedule) bool {
	switch {
	case booking.AccountID == actor.AccountID && actor.Can(policy.BookingReadOwn):
		return true
	case actor.Can(policy.BookingReadAny):
		return true
	case actor.Can(policy.BookingReadAssigned) && schedule != nil && schedule.IsAssignedTo(actor.StaffID):
		return true
	}
	return false
}

func (s *BookingService) GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*model.Booking, error) {
	var booking *model.Booking

	err := s.store.Read(ctx, func(r repository.Repositories) error {
		var err error
		booking, err = r.Bookings().GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get booking: %w", err)
		}
		if booking == nil {
			return notFound("booking", id)
		}

		if err := attachBookingDetails(ctx, r, []*model.Booking{booking}, true); err != nil {
			return err
		}
		if !canReadBooking(actor, booking, booking.Schedule) {
			return ErrForbidden
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// ListMine returns the actor's own bookings, newest first.
func (s *BookingService) ListMine(ctx context.Context, actor Actor) ([]*model.Booking, error) {
	if err := actor.require(policy.BookingReadOwn); err != nil {
		return nil, err
	}
	return s.list(ctx, repository.BookingFilter{AccountID: &actor.AccountID}, false)
}

type BookingListFilter struct {
	ScheduleID *uuid.UUID
}

// List returns every booking for ADMIN/DEV and the bookings on assigned
// schedules for STAFF.
func (s *BookingService) List(ctx context.Context, actor Actor, filter BookingListFilter) ([]*model.Booking, error) {
	query := repository.BookingFilter{ScheduleID: filter.ScheduleID}

	switch {
	case actor.Can(policy.BookingReadAny):
	case actor.Can(policy.BookingReadAssigned):
		if actor.StaffID == nil {
			return []*model.Booking{}, nil
		}
		query.StaffID = actor.StaffID
	default:
		return nil, ErrForbidden
	}

	return s.list(ctx, query, true)
}

func (s *BookingService) list(ctx context.Context, filter repository.BookingFilter, withAccount bool) ([]*model.Booking, error) {
	var bookings []*model.Booking

	err := s.store.Read(ctx, func(r repository.Repositories) error {
		var err error
		bookings, err = r.Bookings().List(ctx, filter)
		if err != nil {
			return fmt.Errorf("list bookings: %w", err)
		}
		return attachBookingDetails(ctx, r, bookings, withAccount)
	})
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// SeatAudit compares a schedule's stored booked count with the seats held by
// its bookings.
type SeatAudit struct {
	ScheduleID     uuid.UUID `json:"scheduleId"`
	MaxStudents    int       `json:"maxStudents"`
	BookedCount    int       `json:"bookedCount"`
	ActivePeople   int       `json:"activePeople"`
	ActiveBookings int       `json:"activeBookings"`
}

func (a SeatAudit) Consistent() bool {
	return a.BookedCount == a.ActivePeople && a.BookedCount >= 0 && a.BookedCount <= a.MaxStudents
}

func (s *BookingService) AuditSchedule(ctx context.Context, actor Actor, scheduleID uuid.UUID) (*SeatAudit, error) {
	if err := actor.require(policy.ScheduleAudit); err != nil {
		return nil, err
	}

	var audit *SeatAudit
	err := s.store.Read(ctx, func(r repository.Repositories) error {
		schedule, err := r.Schedules().GetByID(ctx, scheduleID)
		if err != nil {
			return fmt.Errorf("get schedule: %w", err)
		}
		if schedule == nil {
			return notFound("schedule", scheduleID)
		}

		people, err := r.Bookings().SumActivePeople(ctx, scheduleID)
		if err != nil {
			return err
		}
		count, err := r.Bookings().CountActive(ctx, scheduleID)
		if err != nil {
			return err
		}

		audit = &SeatAudit{
			ScheduleID:     scheduleID,
			MaxStudents:    schedule.MaxStudents,
			BookedCount:    schedule.BookedCount,
			ActivePeople:   people,
			ActiveBookings: count,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !audit.Consistent() {
		s.logger.Error("Seat count drift detected",
			zap.String("schedule_id", scheduleID.String()),
			zap.Int("booked_count", audit.BookedCount),
			zap.Int("active_people", audit.ActivePeople),
		)
	}
	return audit, nil
}
