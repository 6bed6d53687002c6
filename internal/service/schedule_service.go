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

type ScheduleService struct {
	store      repository.Store
	events     events.Publisher
	logger     *zap.Logger
	maxRetries uint64
	now        func() time.Time
}

func NewScheduleService(store repository.Store, publisher events.Publisher, logger *zap.Logger, maxRetries int) *ScheduleService {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &ScheduleService{
		store:      store,
		events:     publisher,
		logger:     logger,
		maxRetries: uint64(maxRetries),
		now:        time.Now,
	}
}

type ScheduleInput struct {
	ClassID     uuid.UUID
	StaffID     *uuid.UUID
	StartTime   time.Time
	EndTime     time.Time
	MaxStudents int // zero takes the class default
}

func (s *ScheduleService) Create(ctx context.Context, actor Actor, in ScheduleInput) (*model.Schedule, error) {
	if err := actor.require(policy.ScheduleManage); err != nil {
		return nil, err
	}

	var schedule *model.Schedule
	err := s.store.Tx(ctx, func(r repository.Repositories) error {
		class, err := s.checkRefs(ctx, r, in.ClassID, in.StaffID)
		if err != nil {
			return err
		}

		schedule = &model.Schedule{
			ID:          uuid.New(),
			ClassID:     in.ClassID,
			StaffID:     in.StaffID,
			StartTime:   in.StartTime,
			EndTime:     in.EndTime,
			MaxStudents: in.MaxStudents,
			Status:      model.ScheduleStatusScheduled,
		}
		if schedule.MaxStudents == 0 {
			schedule.MaxStudents = class.MaxStudents
		}
		if err := schedule.Validate(); err != nil {
			return invalidModel(err)
		}

		if err := r.Schedules().Create(ctx, schedule); err != nil {
			return fmt.Errorf("create schedule: %w", err)
		}
		return attachScheduleDetails(ctx, r, []*model.Schedule{schedule}, false)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Schedule created",
		zap.String("schedule_id", schedule.ID.String()),
		zap.String("class_id", schedule.ClassID.String()),
		zap.Time("start_time", schedule.StartTime),
		zap.Int("max_students", schedule.MaxStudents),
	)
	return schedule, nil
}

// CreateSeries expands a recurrence rule into schedules and stores them all
// or none.
func (s *ScheduleService) CreateSeries(ctx context.Context, actor Actor, series model.ScheduleSeries) ([]*model.Schedule, error) {
	if err := actor.require(policy.ScheduleManage); err != nil {
		return nil, err
	}

	var schedules []*model.Schedule
	err := s.store.Tx(ctx, func(r repository.Repositories) error {
		class, err := s.checkRefs(ctx, r, series.ClassID, series.StaffID)
		if err != nil {
			return err
		}
		if series.MaxStudents == 0 {
			series.MaxStudents = class.MaxStudents
		}
		if series.DurationMinutes == 0 {
			series.DurationMinutes = class.DurationMinutes
		}

		schedules, err = series.Schedules()
		if err != nil {
			return invalidModel(err)
		}

		for _, schedule := range schedules {
			schedule.ID = uuid.New()
			if err := schedule.Validate(); err != nil {
				return invalidModel(err)
			}
			if err := r.Schedules().Create(ctx, schedule); err != nil {
				return fmt.Errorf("create schedule: %w", err)
			}
		}
		return attachScheduleDetails(ctx, r, schedules, false)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Schedule series created",
		zap.String("class_id", series.ClassID.String()),
		zap.String("rrule", series.RRule),
		zap.Int("count", len(schedules)),
	)
	return schedules, nil
}

func (s *ScheduleService) checkRefs(ctx context.Context, r repository.Repositories, classID uuid.UUID, staffID *uuid.UUID) (*model.ClassOffering, error) {
	class, err := r.Classes().GetByID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("get class: %w", err)
	}
	if class == nil {
		return nil, notFound("class", classID)
	}

	if staffID != nil {
		staff, err := r.Staff().GetByID(ctx, *staffID)
		if err != nil {
			return nil, fmt.Errorf("get staff: %w", err)
		}
		if staff == nil {
			return nil, notFound("staff", *staffID)
		}
	}
	return class, nil
}

// ScheduleUpdate carries the fields to change; nil leaves a field as is.
type ScheduleUpdate struct {
	ClassID     *uuid.UUID
	StaffID     *uuid.UUID
	ClearStaff  bool
	StartTime   *time.Time
	EndTime     *time.Time
	MaxStudents *int
	Status      *model.ScheduleStatus
}

// Update edits a schedule. Capacity may not drop below the seats already
// booked, and a schedule with active bookings cannot be cancelled.
func (s *ScheduleService) Update(ctx context.Context, actor Actor, id uuid.UUID, in ScheduleUpdate) (*model.Schedule, error) {
	if err := actor.require(policy.ScheduleManage); err != nil {
		return nil, err
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, invalid("status", "must be SCHEDULED, COMPLETED or CANCELLED")
	}

	var schedule *model.Schedule
	err := retryConflicts(ctx, s.maxRetries, nil, func(ctx context.Context) error {
		return s.store.Tx(ctx, func(r repository.Repositories) error {
			var err error
			schedule, err = r.Schedules().GetForUpdate(ctx, id)
			if err != nil {
				return fmt.Errorf("get schedule: %w", err)
			}
			if schedule == nil {
				return notFound("schedule", id)
			}

			classID := schedule.ClassID
			if in.ClassID != nil {
				classID = *in.ClassID
			}
			staffID := schedule.StaffID
			switch {
			case in.ClearStaff:
				staffID = nil
			case in.StaffID != nil:
				staffID = in.StaffID
			}
			if _, err := s.checkRefs(ctx, r, classID, staffID); err != nil {
				return err
			}

			schedule.ClassID = classID
			schedule.StaffID = staffID
			if in.StartTime != nil {
				schedule.StartTime = *in.StartTime
			}
			if in.EndTime != nil {
				schedule.EndTime = *in.EndTime
			}
			if in.MaxStudents != nil {
				schedule.MaxStudents = *in.MaxStudents
			}
			if in.Status != nil {
				if *in.Status == model.ScheduleStatusCancelled && schedule.Status != model.ScheduleStatusCancelled {
					active, err := r.Bookings().CountActive(ctx, id)
					if err != nil {
						return err
					}
					if active > 0 {
						return fmt.Errorf("schedule has %d active bookings: %w", active, ErrConflict)
					}
				}
				schedule.Status = *in.Status
			}

			if err := schedule.Validate(); err != nil {
				return invalidModel(err)
			}
			if err := r.Schedules().Update(ctx, schedule); err != nil {
				return fmt.Errorf("update schedule: %w", err)
			}
			return attachScheduleDetails(ctx, r, []*model.Schedule{schedule}, false)
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Schedule updated",
		zap.String("schedule_id", id.String()),
		zap.String("status", string(schedule.Status)),
		zap.Int("max_students", schedule.MaxStudents),
		zap.Int("booked_count", schedule.BookedCount),
	)
	return schedule, nil
}

// Delete removes a schedule that holds no active bookings.
func (s *ScheduleService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := actor.require(policy.ScheduleManage); err != nil {
		return err
	}

	err := s.store.Tx(ctx, func(r repository.Repositories) error {
		return r.Schedules().Delete(ctx, id)
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound("schedule", id)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("schedule has active bookings: %w", ErrConflict)
	case err != nil:
		return err
	}

	s.logger.Info("Schedule deleted", zap.String("schedule_id", id.String()))
	return nil
}

type ScheduleListFilter struct {
	ClassID *uuid.UUID
	StaffID *uuid.UUID
	Status  *model.ScheduleStatus
}

func (s *ScheduleService) List(ctx context.Context, filter ScheduleListFilter) ([]*model.Schedule, error) {
	return s.list(ctx, repository.ScheduleFilter{
		ClassID: filter.ClassID,
		StaffID: filter.StaffID,
		Status:  filter.Status,
	}, false)
}

func (s *ScheduleService) Get(ctx context.Context, id uuid.UUID) (*model.Schedule, error) {
	var schedule *model.Schedule
	err := s.store.Read(ctx, func(r repository.Repositories) error {
		var err error
		schedule, err = r.Schedules().GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get schedule: %w", err)
		}
		if schedule == nil {
			return notFound("schedule", id)
		}
		return attachScheduleDetails(ctx, r, []*model.Schedule{schedule}, false)
	})
	if err != nil {
		return nil, err
	}
	return schedule, nil
}

// ListMine returns the schedules the actor teaches, with their bookings.
func (s *ScheduleService) ListMine(ctx context.Context, actor Actor) ([]*model.Schedule, error) {
	if err := actor.require(policy.ScheduleReadAssigned); err != nil {
		return nil, err
	}
	if actor.StaffID == nil {
		return []*model.Schedule{}, nil
	}
	return s.list(ctx, repository.ScheduleFilter{StaffID: actor.StaffID}, true)
}

func (s *ScheduleService) list(ctx context.Context, filter repository.ScheduleFilter, withBookings bool) ([]*model.Schedule, error) {
	var schedules []*model.Schedule
	err := s.store.Read(ctx, func(r repository.Repositories) error {
		var err error
		schedules, err = r.Schedules().List(ctx, filter)
		if err != nil {
			return fmt.Errorf("list schedules: %w", err)
		}
		return attachScheduleDetails(ctx, r, schedules, withBookings)
	})
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

// CompleteElapsed marks every SCHEDULED schedule whose end time has passed
// as COMPLETED and returns how many were changed.
func (s *ScheduleService) CompleteElapsed(ctx context.Context) (int, error) {
	now := s.now()
	status := model.ScheduleStatusScheduled

	var due []*model.Schedule
	err := s.store.Read(ctx, func(r repository.Repositories) error {
		var err error
		due, err = r.Schedules().List(ctx, repository.ScheduleFilter{Status: &status, EndsBefore: &now})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("list elapsed schedules: %w", err)
	}

	completed := 0
	for _, candidate := range due {
		var schedule *model.Schedule
		err := retryConflicts(ctx, s.maxRetries, nil, func(ctx context.Context) error {
			return s.store.Tx(ctx, func(r repository.Repositories) error {
				var err error
				schedule, err = r.Schedules().GetForUpdate(ctx, candidate.ID)
				if err != nil {
					return err
				}
				if schedule == nil || schedule.Status != model.ScheduleStatusScheduled || !schedule.EndTime.Before(now) {
					schedule = nil
					return nil
				}
				schedule.Status = model.ScheduleStatusCompleted
				return r.Schedules().Update(ctx, schedule)
			})
		})
		if err != nil {
			s.logger.Error("Failed to complete schedule",
				zap.String("schedule_id", candidate.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if schedule == nil {
			continue
		}

		completed++
		metrics.SchedulesCompleted.Inc()
		if err := s.events.ScheduleCompleted(ctx, schedule); err != nil {
			s.logger.Warn("Failed to publish schedule event", zap.Error(err))
		}
	}

	if completed > 0 {
		s.logger.Info("Elapsed schedules completed", zap.Int("count", completed))
	}
	return completed, nil
}
