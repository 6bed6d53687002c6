package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/repository"
)

type scheduleRepo struct{ *repos }

func (r *scheduleRepo) Create(ctx context.Context, schedule *model.Schedule) error {
	if _, ok := r.st.classes[schedule.ClassID]; !ok {
		return fmt.Errorf("create schedule: class %s: %w", schedule.ClassID, repository.ErrNotFound)
	}

	ensureID(&schedule.ID)
	schedule.Version = 1
	schedule.CreatedAt = r.now()
	schedule.UpdatedAt = schedule.CreatedAt
	r.st.schedules[schedule.ID] = stripSchedule(*schedule)
	return nil
}

func (r *scheduleRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Schedule, error) {
	schedule, ok := r.st.schedules[id]
	if !ok {
		return nil, nil
	}
	return &schedule, nil
}

// GetForUpdate needs no extra locking: transactions are already serialized.
func (r *scheduleRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Schedule, error) {
	return r.GetByID(ctx, id)
}

func (r *scheduleRepo) List(ctx context.Context, filter repository.ScheduleFilter) ([]*model.Schedule, error) {
	schedules := make([]*model.Schedule, 0, len(r.st.schedules))
	for _, schedule := range r.st.schedules {
		if filter.ClassID != nil && schedule.ClassID != *filter.ClassID {
			continue
		}
		if filter.StaffID != nil && !schedule.IsAssignedTo(filter.StaffID) {
			continue
		}
		if filter.Status != nil && schedule.Status != *filter.Status {
			continue
		}
		if filter.EndsBefore != nil && !schedule.EndTime.Before(*filter.EndsBefore) {
			continue
		}
		schedule := schedule
		schedules = append(schedules, &schedule)
	}

	sort.SliceStable(schedules, func(i, j int) bool {
		return schedules[i].StartTime.Before(schedules[j].StartTime)
	})
	return schedules, nil
}

func (r *scheduleRepo) Update(ctx context.Context, schedule *model.Schedule) error {
	existing, ok := r.st.schedules[schedule.ID]
	if !ok {
		return fmt.Errorf("update schedule: %w", repository.ErrNotFound)
	}
	if existing.Version != schedule.Version {
		return fmt.Errorf("update schedule: %w", repository.ErrConflict)
	}
	if schedule.MaxStudents < existing.BookedCount {
		return fmt.Errorf("update schedule: capacity below booked seats: %w", repository.ErrConflict)
	}

	existing.ClassID = schedule.ClassID
	existing.StaffID = schedule.StaffID
	existing.StartTime = schedule.StartTime
	existing.EndTime = schedule.EndTime
	existing.MaxStudents = schedule.MaxStudents
	existing.Status = schedule.Status
	existing.Version++
	existing.UpdatedAt = r.now()
	r.st.schedules[schedule.ID] = existing

	schedule.BookedCount = existing.BookedCount
	schedule.Version = existing.Version
	schedule.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *scheduleRepo) AdjustBooked(ctx context.Context, id uuid.UUID, delta int, expectedVersion int64) (int, error) {
	schedule, ok := r.st.schedules[id]
	if !ok {
		return 0, fmt.Errorf("adjust booked count: %w", repository.ErrNotFound)
	}

	booked := schedule.BookedCount + delta
	if schedule.Version != expectedVersion || booked < 0 || booked > schedule.MaxStudents {
		return 0, fmt.Errorf("adjust booked count: %w", repository.ErrConflict)
	}

	schedule.BookedCount = booked
	schedule.Version++
	schedule.UpdatedAt = r.now()
	r.st.schedules[id] = schedule
	return booked, nil
}

func (r *scheduleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.st.schedules[id]; !ok {
		return fmt.Errorf("delete schedule: %w", repository.ErrNotFound)
	}
	for _, booking := range r.st.bookings {
		if booking.ScheduleID == id && booking.Status.HoldsSeats() {
			return fmt.Errorf("delete schedule: active bookings: %w", repository.ErrConflict)
		}
	}

	for bookingID, booking := range r.st.bookings {
		if booking.ScheduleID == id {
			delete(r.st.bookings, bookingID)
		}
	}
	delete(r.st.schedules, id)
	return nil
}

func (r *scheduleRepo) CountByClass(ctx context.Context, classID uuid.UUID) (int, error) {
	count := 0
	for _, schedule := range r.st.schedules {
		if schedule.ClassID == classID {
			count++
		}
	}
	return count, nil
}

func (r *scheduleRepo) UnassignStaff(ctx context.Context, staffID uuid.UUID) error {
	for id, schedule := range r.st.schedules {
		if schedule.IsAssignedTo(&staffID) {
			schedule.StaffID = nil
			schedule.Version++
			schedule.UpdatedAt = r.now()
			r.st.schedules[id] = schedule
		}
	}
	return nil
}

// stripSchedule drops response-only fields before storing.
func stripSchedule(s model.Schedule) model.Schedule {
	s.Class = nil
	s.Staff = nil
	s.Bookings = nil
	return s
}
