package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/repository"
)

type bookingRepo struct{ *repos }

func (r *bookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	if _, ok := r.st.schedules[booking.ScheduleID]; !ok {
		return fmt.Errorf("create booking: schedule %s: %w", booking.ScheduleID, repository.ErrNotFound)
	}
	for _, existing := range r.st.bookings {
		if existing.BookingNumber == booking.BookingNumber {
			return fmt.Errorf("create booking: number %s: %w", booking.BookingNumber, repository.ErrConflict)
		}
	}

	ensureID(&booking.ID)
	booking.CreatedAt = r.now()
	booking.UpdatedAt = booking.CreatedAt

	stored := *booking
	stored.Schedule = nil
	stored.Account = nil
	r.st.bookings[booking.ID] = stored
	return nil
}

func (r *bookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, ok := r.st.bookings[id]
	if !ok {
		return nil, nil
	}
	return &booking, nil
}

func (r *bookingRepo) List(ctx context.Context, filter repository.BookingFilter) ([]*model.Booking, error) {
	bookings := make([]*model.Booking, 0)
	for _, booking := range r.st.bookings {
		if filter.AccountID != nil && booking.AccountID != *filter.AccountID {
			continue
		}
		if filter.ScheduleID != nil && booking.ScheduleID != *filter.ScheduleID {
			continue
		}
		if filter.StaffID != nil {
			schedule, ok := r.st.schedules[booking.ScheduleID]
			if !ok || !schedule.IsAssignedTo(filter.StaffID) {
				continue
			}
		}
		booking := booking
		bookings = append(bookings, &booking)
	}
	sortByCreated(bookings, func(b *model.Booking) time.Time { return b.CreatedAt })
	return bookings, nil
}

func (r *bookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error {
	booking, ok := r.st.bookings[id]
	if !ok {
		return fmt.Errorf("update booking status: %w", repository.ErrNotFound)
	}
	booking.Status = status
	booking.UpdatedAt = r.now()
	r.st.bookings[id] = booking
	return nil
}

func (r *bookingRepo) NumberExists(ctx context.Context, number string) (bool, error) {
	for _, booking := range r.st.bookings {
		if booking.BookingNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *bookingRepo) CountActive(ctx context.Context, scheduleID uuid.UUID) (int, error) {
	count := 0
	for _, booking := range r.st.bookings {
		if booking.ScheduleID == scheduleID && booking.Status.HoldsSeats() {
			count++
		}
	}
	return count, nil
}

func (r *bookingRepo) SumActivePeople(ctx context.Context, scheduleID uuid.UUID) (int, error) {
	sum := 0
	for _, booking := range r.st.bookings {
		if booking.ScheduleID == scheduleID && booking.Status.HoldsSeats() {
			sum += booking.NumberOfPeople
		}
	}
	return sum, nil
}
