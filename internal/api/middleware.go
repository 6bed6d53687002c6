package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/Freeeeeet/cooking_school/internal/service"
)

const actorKey = "actor"

var (
	httpRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of http request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)
)

// requireAuth rejects requests without a valid bearer token.
func (s *Server) requireAuth() fiber.Handler {
	return s.authenticate(false)
}

// optionalAuth resolves the actor when a token is sent and lets anonymous
// requests through.
func (s *Server) optionalAuth() fiber.Handler {
	return s.authenticate(true)
}

func (s *Server) authenticate(optional bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			if optional {
				return c.Next()
			}
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header format")
		}

		accountID, err := s.tokens.Validate(parts[1])
		if err != nil {
			if errors.Is(err, jwtv5.ErrTokenExpired) {
				return fiber.NewError(fiber.StatusUnauthorized, "token has expired")
			}
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		actor, err := s.services.Auth.ResolveActor(c.UserContext(), accountID)
		if err != nil {
			return err
		}
		c.Locals(actorKey, actor)

		return c.Next()
	}
}

// actorFrom returns the actor resolved by the auth middleware.
func actorFrom(c *fiber.Ctx) (service.Actor, bool) {
	actor, ok := c.Locals(actorKey).(service.Actor)
	return actor, ok
}

func mustActor(c *fiber.Ctx) (service.Actor, error) {
	actor, ok := actorFrom(c)
	if !ok {
		return service.Actor{}, service.ErrUnauthenticated
	}
	return actor, nil
}

func PrometheusMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start).Seconds()
		statusCode := responseStatus(c, err)

		method := c.Method()
		path := c.Route().Path
		statusStr := strconv.Itoa(statusCode)

		httpRequestTotal.WithLabelValues(method, path, statusStr).Inc()
		httpRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration)

		return err
	}
}

// RequestLogger logs every request once it has been handled.
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", responseStatus(c, err)),
			zap.Duration("latency", time.Since(start)),
		)
		return err
	}
}

// responseStatus is the status the error handler will answer with.
func responseStatus(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var e *fiber.Error
	if errors.As(err, &e) {
		return e.Code
	}
	return statusFor(err)
}
