package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/service"
)

type ApplicationRequest struct {
	FullName   string   `json:"fullName" validate:"required"`
	Email      string   `json:"email" validate:"required,email"`
	Phone      string   `json:"phone" validate:"required"`
	Experience string   `json:"experience"`
	Skills     []string `json:"skills"`
}

type ReviewRequest struct {
	Status string `json:"status" validate:"required,oneof=APPROVED REJECTED"`
}

func (s *Server) submitApplication(c *fiber.Ctx) error {
	var request ApplicationRequest
	if err := s.parseBody(c, &request); err != nil {
		return err
	}

	var actor *service.Actor
	if a, ok := actorFrom(c); ok {
		actor = &a
	}

	app, err := s.services.Applications.Submit(c.UserContext(), actor, service.ApplicationInput{
		FullName:   request.FullName,
		Email:      request.Email,
		Phone:      request.Phone,
		Experience: request.Experience,
		Skills:     request.Skills,
	})
	if err != nil {
		return err
	}
	return created(c, app)
}

func (s *Server) listApplications(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}

	apps, err := s.services.Applications.List(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return ok(c, apps)
}

func (s *Server) getApplication(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	app, err := s.services.Applications.Get(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return ok(c, app)
}

// reviewApplication approves or rejects an application. An approval may
// create a staff record and raise the applicant's account to STAFF.
func (s *Server) reviewApplication(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var request ReviewRequest
	if err := s.parseBody(c, &request); err != nil {
		return err
	}

	result, err := s.services.Applications.Review(c.UserContext(), actor, id, model.ApplicationStatus(request.Status))
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{
		"application": result.Application,
		"staff":       result.Staff,
		"elevated":    result.Elevated,
	})
}
