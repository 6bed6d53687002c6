package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Freeeeeet/cooking_school/internal/service"
)

type StaffRequest struct {
	Name        string   `json:"name" validate:"required"`
	Email       string   `json:"email" validate:"required,email"`
	Phone       *string  `json:"phone"`
	Specialties []string `json:"specialties"`
}

func (r StaffRequest) input() service.StaffInput {
	return service.StaffInput{
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		Specialties: r.Specialties,
	}
}

func (s *Server) listStaff(c *fiber.Ctx) error {
	staff, err := s.services.Staff.List(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, staff)
}

func (s *Server) getStaff(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	staff, err := s.services.Staff.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, staff)
}

func (s *Server) createStaff(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	var request StaffRequest
	if err := s.parseBody(c, &request); err != nil {
		return err
	}

	staff, err := s.services.Staff.Create(c.UserContext(), actor, request.input())
	if err != nil {
		return err
	}
	return created(c, staff)
}

func (s *Server) updateStaff(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var request StaffRequest
	if err := s.parseBody(c, &request); err != nil {
		return err
	}

	staff, err := s.services.Staff.Update(c.UserContext(), actor, id, request.input())
	if err != nil {
		return err
	}
	return ok(c, staff)
}

func (s *Server) deleteStaff(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	if err := s.services.Staff.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return message(c, "Staff deleted")
}
