// Package events publishes domain events to NATS after state changes commit.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Freeeeeet/cooking_school/internal/model"
)

// Subjects.
const (
	SubjectBookingCreated       = "booking.created"
	SubjectBookingStatusChanged = "booking.status_changed"
	SubjectApplicationReviewed  = "application.reviewed"
	SubjectScheduleCompleted    = "schedule.completed"
)

type Publisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking) error
	BookingStatusChanged(ctx context.Context, booking *model.Booking, from model.BookingStatus) error
	ApplicationReviewed(ctx context.Context, app *model.StaffApplication) error
	ScheduleCompleted(ctx context.Context, schedule *model.Schedule) error
}

type BookingCreatedEvent struct {
	EventType      string          `json:"event_type"`
	BookingID      uuid.UUID       `json:"booking_id"`
	BookingNumber  string          `json:"booking_number"`
	UserID         uuid.UUID       `json:"user_id"`
	ScheduleID     uuid.UUID       `json:"schedule_id"`
	NumberOfPeople int             `json:"number_of_people"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	CreatedAt      time.Time       `json:"created_at"`
}

type BookingStatusChangedEvent struct {
	EventType     string              `json:"event_type"`
	BookingID     uuid.UUID           `json:"booking_id"`
	BookingNumber string              `json:"booking_number"`
	ScheduleID    uuid.UUID           `json:"schedule_id"`
	From          model.BookingStatus `json:"from"`
	To            model.BookingStatus `json:"to"`
	ChangedAt     time.Time           `json:"changed_at"`
}

type ApplicationReviewedEvent struct {
	EventType     string                  `json:"event_type"`
	ApplicationID uuid.UUID               `json:"application_id"`
	Email         string                  `json:"email"`
	Status        model.ApplicationStatus `json:"status"`
	ReviewedAt    *time.Time              `json:"reviewed_at,omitempty"`
}

type ScheduleCompletedEvent struct {
	EventType   string    `json:"event_type"`
	ScheduleID  uuid.UUID `json:"schedule_id"`
	ClassID     uuid.UUID `json:"class_id"`
	BookedCount int       `json:"booked_count"`
	EndTime     time.Time `json:"end_time"`
}

type NatsPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func NewNatsPublisher(natsURL string, logger *zap.Logger) (*NatsPublisher, error) {
	nc, err := nats.Connect(natsURL, nats.Name("cooking_school"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NatsPublisher{conn: nc, logger: logger}, nil
}

func (p *NatsPublisher) BookingCreated(ctx context.Context, booking *model.Booking) error {
	return p.publish(SubjectBookingCreated, bookingCreated(booking))
}

func (p *NatsPublisher) BookingStatusChanged(ctx context.Context, booking *model.Booking, from model.BookingStatus) error {
	return p.publish(SubjectBookingStatusChanged, bookingStatusChanged(booking, from))
}

func (p *NatsPublisher) ApplicationReviewed(ctx context.Context, app *model.StaffApplication) error {
	return p.publish(SubjectApplicationReviewed, applicationReviewed(app))
}

func (p *NatsPublisher) ScheduleCompleted(ctx context.Context, schedule *model.Schedule) error {
	return p.publish(SubjectScheduleCompleted, scheduleCompleted(schedule))
}

func (p *NatsPublisher) publish(subject string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", subject, err)
	}

	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	p.logger.Debug("Event published", zap.String("subject", subject))
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NatsPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("Failed to drain nats connection", zap.Error(err))
	}
}

func bookingCreated(b *model.Booking) BookingCreatedEvent {
	return BookingCreatedEvent{
		EventType:      SubjectBookingCreated,
		BookingID:      b.ID,
		BookingNumber:  b.BookingNumber,
		UserID:         b.AccountID,
		ScheduleID:     b.ScheduleID,
		NumberOfPeople: b.NumberOfPeople,
		TotalPrice:     b.TotalPrice,
		CreatedAt:      b.CreatedAt,
	}
}

func bookingStatusChanged(b *model.Booking, from model.BookingStatus) BookingStatusChangedEvent {
	return BookingStatusChangedEvent{
		EventType:     SubjectBookingStatusChanged,
		BookingID:     b.ID,
		BookingNumber: b.BookingNumber,
		ScheduleID:    b.ScheduleID,
		From:          from,
		To:            b.Status,
		ChangedAt:     b.UpdatedAt,
	}
}

func applicationReviewed(a *model.StaffApplication) ApplicationReviewedEvent {
	return ApplicationReviewedEvent{
		EventType:     SubjectApplicationReviewed,
		ApplicationID: a.ID,
		Email:         a.Email,
		Status:        a.Status,
		ReviewedAt:    a.ReviewedAt,
	}
}

func scheduleCompleted(s *model.Schedule) ScheduleCompletedEvent {
	return ScheduleCompletedEvent{
		EventType:   SubjectScheduleCompleted,
		ScheduleID:  s.ID,
		ClassID:     s.ClassID,
		BookedCount: s.BookedCount,
		EndTime:     s.EndTime,
	}
}
