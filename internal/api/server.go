// Package api exposes the booking services over HTTP.
package api

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Freeeeeet/cooking_school/internal/service"
)

// TokenValidator turns a bearer token into the account id it was issued for.
type TokenValidator interface {
	Validate(token string) (uuid.UUID, error)
}

type Services struct {
	Auth         *service.AuthService
	Classes      *service.ClassService
	Schedules    *service.ScheduleService
	Bookings     *service.BookingService
	Staff        *service.StaffService
	Applications *service.ApplicationService
}

type Server struct {
	app      *fiber.App
	services Services
	tokens   TokenValidator
	logger   *zap.Logger
	validate *validator.Validate
}

func NewServer(services Services, tokens TokenValidator, logger *zap.Logger) *Server {
	s := &Server{
		services: services,
		tokens:   tokens,
		logger:   logger,
		validate: validator.New(),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "cooking_school",
		ErrorHandler:          s.ErrorHandler,
		DisableStartupMessage: true,
	})
	s.app.Use(recover.New())
	s.app.Use(PrometheusMiddleware())
	s.app.Use(RequestLogger(logger))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "cooking_school"})
	})
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := s.app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", s.register)
	auth.Post("/login", s.login)
	auth.Post("/staff/login", s.staffLogin)

	classes := api.Group("/classes")
	classes.Get("/", s.listClasses)
	classes.Get("/:id", s.getClass)
	classes.Post("/", s.requireAuth(), s.createClass)
	classes.Put("/:id", s.requireAuth(), s.updateClass)
	classes.Delete("/:id", s.requireAuth(), s.deleteClass)
	classes.Post("/:id/image-upload-url", s.requireAuth(), s.classImageUploadURL)

	schedules := api.Group("/schedules")
	schedules.Get("/", s.listSchedules)
	schedules.Get("/my-schedules", s.requireAuth(), s.mySchedules)
	schedules.Get("/:id", s.getSchedule)
	schedules.Get("/:id/audit", s.requireAuth(), s.auditSchedule)
	schedules.Post("/", s.requireAuth(), s.createSchedule)
	schedules.Post("/series", s.requireAuth(), s.createScheduleSeries)
	schedules.Put("/:id", s.requireAuth(), s.updateSchedule)
	schedules.Delete("/:id", s.requireAuth(), s.deleteSchedule)

	bookings := api.Group("/bookings", s.requireAuth())
	bookings.Post("/", s.createBooking)
	bookings.Get("/", s.listBookings)
	bookings.Get("/my-bookings", s.myBookings)
	bookings.Get("/:id", s.getBooking)
	bookings.Patch("/:id/status", s.updateBookingStatus)

	staff := api.Group("/staff")
	staff.Get("/", s.listStaff)
	staff.Get("/:id", s.getStaff)
	staff.Post("/", s.requireAuth(), s.createStaff)
	staff.Put("/:id", s.requireAuth(), s.updateStaff)
	staff.Delete("/:id", s.requireAuth(), s.deleteStaff)

	applications := api.Group("/staff-applications")
	applications.Post("/", s.optionalAuth(), s.submitApplication)
	applications.Get("/", s.requireAuth(), s.listApplications)
	applications.Get("/:id", s.requireAuth(), s.getApplication)
	applications.Patch("/:id", s.requireAuth(), s.reviewApplication)
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.logger.Info("HTTP server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}
