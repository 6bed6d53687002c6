package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Freeeeeet/cooking_school/internal/service"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=2"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) register(c *fiber.Ctx) error {
	var request RegisterRequest
	if err := s.parseBody(c, &request); err != nil {
		return err
	}

	session, err := s.services.Auth.Register(c.UserContext(), service.RegisterInput{
		Email:    request.Email,
		Password: request.Password,
		Name:     request.Name,
	})
	if err != nil {
		return err
	}
	return created(c, session)
}

func (s *Server) login(c *fiber.Ctx) error {
	var request LoginRequest
	if err := s.parseBody(c, &request); err != nil {
		return err
	}

	session, err := s.services.Auth.Login(c.UserContext(), request.Email, request.Password)
	if err != nil {
		return err
	}
	return ok(c, session)
}

func (s *Server) staffLogin(c *fiber.Ctx) error {
	var request LoginRequest
	if err := s.parseBody(c, &request); err != nil {
		return err
	}

	session, err := s.services.Auth.StaffLogin(c.UserContext(), request.Email, request.Password)
	if err != nil {
		return err
	}
	return ok(c, session)
}
