package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/service"
)

type ClassRequest struct {
	Title           string          `json:"title" validate:"required"`
	Description     string          `json:"description"`
	DurationMinutes int             `json:"durationMinutes" validate:"required,gt=0"`
	Price           decimal.Decimal `json:"price"`
	MaxStudents     int             `json:"maxStudents" validate:"required,gt=0"`
	Difficulty      string          `json:"difficulty" validate:"required,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	Image           *string         `json:"image" validate:"omitempty,url"`
}

func (r ClassRequest) input() service.ClassInput {
	return service.ClassInput{
		Title:           r.Title,
		Description:     r.Description,
		DurationMinutes: r.DurationMinutes,
		Price:           r.Price,
		MaxStudents:     r.MaxStudents,
		Difficulty:      model.Difficulty(r.Difficulty),
		Image:           r.Image,
	}
}

type ImageUploadRequest struct {
	ContentType string `json:"contentType" validate:"required"`
}

func (s *Server) listClasses(c *fiber.Ctx) error {
	var filter service.ClassListFilter

	if v := c.Query("difficulty"); v != "" {
		difficulty := model.Difficulty(v)
		filter.Difficulty = &difficulty
	}
	var err error
	if filter.MinPrice, err = queryDecimal(c, "minPrice"); err != nil {
		return err
	}
	if filter.MaxPrice, err = queryDecimal(c, "maxPrice"); err != nil {
		return err
	}

	classes, err := s.services.Classes.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return ok(c, classes)
}

func (s *Server) getClass(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	class, err := s.services.Classes.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, class)
}

func (s *Server) createClass(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	var request ClassRequest
	if err := s.parseBody(c, &request); err != nil {
		return err
	}

	class, err := s.services.Classes.Create(c.UserContext(), actor, request.input())
	if err != nil {
		return err
	}
	return created(c, class)
}

func (s *Server) updateClass(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var request ClassRequest
	if err := s.parseBody(c, &request); err != nil {
		return err
	}

	class, err := s.services.Classes.Update(c.UserContext(), actor, id, request.input())
	if err != nil {
		return err
	}
	return ok(c, class)
}

func (s *Server) deleteClass(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	if err := s.services.Classes.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return message(c, "Class deleted")
}

func (s *Server) classImageUploadURL(c *fiber.Ctx) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var request ImageUploadRequest
	if err := s.parseBody(c, &request); err != nil {
		return err
	}

	upload, err := s.services.Classes.ImageUploadURL(c.UserContext(), actor, id, request.ContentType)
	if err != nil {
		return err
	}
	return ok(c, upload)
}

func queryDecimal(c *fiber.Ctx, key string) (*decimal.Decimal, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+key)
	}
	return &d, nil
}
