package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/service"
)

type ScheduleRequest struct {
	ClassID     uuid.UUID  `json:"classId" validate:"required"`
	StaffID     *uuid.UUID `json:"staffId"`
	StartTime   time.Time  `json:"startTime" validate:"required"`
	EndTime     time.Time  `json:"endTime" validate:"required"`
	MaxStudents int        `json:"maxStudents" validate:"gte=0"`
}

// ScheduleUpdateRequest changes only the fields that are present.
type ScheduleUpdateRequest struct {
	ClassID     *uuid.UUID `json:"classId"`
	StaffID     *uuid.UUID `json:"staffId"`
	ClearStaff  bool       `json:"clearStaff"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	MaxStudents *int       `json:"maxStudents" validate:"omitempty,gt=0"`
	Status      *string    `json:"status" validate:"omitempty,oneof=SCHEDULED COMPLETED CANCELLED"`
}

type ScheduleSeriesRequest struct {
	ClassID         uuid.UUID  `json:"classId" validate:"required"`
	StaffID         *uuid.UUID `json:"staffId"`
	RRule           string     `json:"rrule" validate:"required"`
	FirstStart      time.Time  `json:"firstStart" validate:"required"`
	DurationMinutes int        `json:"durationMinutes" validate:"gte=0"`
	MaxStudents     int        `json:"maxStudents" validate:"gte=0"`
}

func (s *Server) listSchedules(c *fiber.Ctx) error {
	var filter service.ScheduleListFilter

	var err error
	if filter.ClassID, err = queryUUID(c, "classId"); err != nil {
		return err
	}
	if filter.StaffID, err = queryUUID(c, "staffId"); err != nil {
		return err
	}
	if v := c.Query("status"); v != "" {
		status := model.ScheduleStatus(v)
		if !status.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid status")
		}
		filter.Status = &status
	}

	schedules, err := s.services.Schedules.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return ok(c, schedules)
}

func queryUUID(c *fiber.Ctx, key string) (*uuid.UUID, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+key)
	}
	return &id, nil
}

func (s *Server) getSchedule(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	schedule, err := s.services.Schedules.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, schedule)
}

func (s *Server) mySchedules(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}

	schedules, err := s.services.Schedules.ListMine(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return ok(c, schedules)
}

func (s *Server) createSchedule(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	var request ScheduleRequest
	if err := s.parseBody(c, &request); err != nil {
		return err
	}

	schedule, err := s.services.Schedules.Create(c.UserContext(), actor, service.ScheduleInput{
		ClassID:     request.ClassID,
		StaffID:     request.StaffID,
		StartTime:   request.StartTime,
		EndTime:     request.EndTime,
		MaxStudents: request.MaxStudents,
	})
	if err != nil {
		return err
	}
	return created(c, schedule)
}

func (s *Server) createScheduleSeries(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	var request ScheduleSeriesRequest
	if err := s.parseBody(c, &request); err != nil {
		return err
	}

	schedules, err := s.services.Schedules.CreateSeries(c.UserContext(), actor, model.ScheduleSeries{
		ClassID:         request.ClassID,
		StaffID:         request.StaffID,
		RRule:           request.RRule,
		FirstStart:      request.FirstStart,
		DurationMinutes: request.DurationMinutes,
		MaxStudents:     request.MaxStudents,
	})
	if err != nil {
		return err
	}
	return created(c, schedules)
}

func (s *Server) updateSchedule(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var request ScheduleUpdateRequest
	if err := s.parseBody(c, &request); err != nil {
		return err
	}

	update := service.ScheduleUpdate{
		ClassID:     request.ClassID,
		StaffID:     request.StaffID,
		ClearStaff:  request.ClearStaff,
		StartTime:   request.StartTime,
		EndTime:     request.EndTime,
		MaxStudents: request.MaxStudents,
	}
	if request.Status != nil {
		status := model.ScheduleStatus(*request.Status)
		update.Status = &status
	}

	schedule, err := s.services.Schedules.Update(c.UserContext(), actor, id, update)
	if err != nil {
		return err
	}
	return ok(c, schedule)
}

func (s *Server) deleteSchedule(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	if err := s.services.Schedules.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return message(c, "Schedule deleted")
}

func (s *Server) auditSchedule(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	audit, err := s.services.Bookings.AuditSchedule(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{"audit": audit, "consistent": audit.Consistent()})
}
