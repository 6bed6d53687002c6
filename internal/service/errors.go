package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Freeeeeet/cooking_school/internal/model"
)

var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrValidation         = errors.New("validation failed")
	ErrAlreadyReviewed    = errors.New("application already reviewed")
	ErrCapacityExceeded   = errors.New("capacity exceeded")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrUnavailable        = errors.New("feature not configured")
)

// CapacityExceededError carries the number of seats that were still free.
type CapacityExceededError struct {
	Available int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("capacity exceeded: %d seats available", e.Available)
}

func (e *CapacityExceededError) Is(target error) bool { return target == ErrCapacityExceeded }

type InvalidTransitionError struct {
	From model.BookingStatus
	To   model.BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func notFound(entity string, id uuid.UUID) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// invalidModel wraps a model Validate error ("field: reason") as a ValidationError.
func invalidModel(err error) error {
	field, reason, ok := strings.Cut(err.Error(), ": ")
	if !ok {
		return invalid("", err.Error())
	}
	return invalid(field, reason)
}
