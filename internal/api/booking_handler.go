package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/service"
)

type BookingRequest struct {
	ScheduleID     uuid.UUID `json:"scheduleId" validate:"required"`
	NumberOfPeople int       `json:"numberOfPeople"`
	Notes          *string   `json:"notes" validate:"omitempty,max=1000"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (s *Server) createBooking(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	var request BookingRequest
	if err := s.parseBody(c, &request); err != nil {
		return err
	}

	booking, err := s.services.Bookings.Reserve(c.UserContext(), actor, service.ReserveInput{
		ScheduleID:     request.ScheduleID,
		NumberOfPeople: request.NumberOfPeople,
		Notes:          request.Notes,
	})
	if err != nil {
		return err
	}
	return created(c, booking)
}

func (s *Server) listBookings(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	scheduleID, err := queryUUID(c, "scheduleId")
	if err != nil {
		return err
	}

	bookings, err := s.services.Bookings.List(c.UserContext(), actor, service.BookingListFilter{ScheduleID: scheduleID})
	if err != nil {
		return err
	}
	return ok(c, bookings)
}

func (s *Server) myBookings(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}

	bookings, err := s.services.Bookings.ListMine(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return ok(c, bookings)
}

func (s *Server) getBooking(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	booking, err := s.services.Bookings.GetByID(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return ok(c, booking)
}

func (s *Server) updateBookingStatus(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var request StatusRequest
	if err := s.parseBody(c, &request); err != nil {
		return err
	}

	booking, err := s.services.Bookings.UpdateStatus(c.UserContext(), actor, id, model.BookingStatus(request.Status))
	if err != nil {
		return err
	}
	return ok(c, booking)
}
