package api

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Freeeeeet/cooking_school/internal/repository"
	"github.com/Freeeeeet/cooking_school/internal/service"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(Response{Success: true, Data: data})
}

func created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Response{Success: true, Data: data})
}

func message(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusOK).JSON(Response{Success: true, Message: msg})
}

// statusFor maps the service error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrCapacityExceeded),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrAlreadyReviewed),
		errors.Is(err, service.ErrConflict),
		errors.Is(err, repository.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrUnavailable):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler renders any error returned by a handler in the envelope.
// Internal errors keep their detail in the log only.
func (s *Server) ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(Response{Message: fe.Message})
	}

	status := statusFor(err)
	resp := Response{Message: err.Error()}

	var capacity *service.CapacityExceededError
	var verr *service.ValidationError
	switch {
	case errors.As(err, &capacity):
		resp.Data = fiber.Map{"available": capacity.Available}
	case errors.As(err, &verr):
		resp.Data = fiber.Map{"field": verr.Field}
	}

	if status == fiber.StatusInternalServerError {
		s.logger.Error("Request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		resp.Message = "internal server error"
	}
	return c.Status(status).JSON(resp)
}

// parseBody decodes the JSON body into dst and runs its validate tags.
func (s *Server) parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "cannot parse JSON body")
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid "+verrs[0].Field()+": failed "+verrs[0].Tag())
		}
		return fiber.NewError(fiber.StatusBadRequest, "invalid input")
	}
	return nil
}
