package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/cooking_school/internal/model"
)

func TestBookingStatusChangedPayload(t *testing.T) {
	booking := &model.Booking{
		ID:            uuid.New(),
		BookingNumber: "BK-20261018-ABCDEF",
		ScheduleID:    uuid.New(),
		Status:        model.BookingStatusCancelled,
		UpdatedAt:     time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
	}

	payload, err := json.Marshal(bookingStatusChanged(booking, model.BookingStatusConfirmed))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, SubjectBookingStatusChanged, decoded["event_type"])
	assert.Equal(t, "CONFIRMED", decoded["from"])
	assert.Equal(t, "CANCELLED", decoded["to"])
	assert.Equal(t, "BK-20261018-ABCDEF", decoded["booking_number"])
}

func TestBookingCreatedCarriesDecimalTotal(t *testing.T) {
	booking := &model.Booking{
		ID:             uuid.New(),
		BookingNumber:  "BK-20261018-FEDCBA",
		NumberOfPeople: 2,
		TotalPrice:     decimal.RequireFromString("49.50"),
	}

	payload, err := json.Marshal(bookingCreated(booking))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, 49.5, decoded["total_price"])
}

func TestApplicationReviewedOmitsMissingReviewTime(t *testing.T) {
	payload, err := json.Marshal(applicationReviewed(&model.StaffApplication{
		ID: uuid.New(), Email: "a@example.com", Status: model.ApplicationStatusRejected,
	}))
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "reviewed_at")
}

func TestRecorderKeepsOrder(t *testing.T) {
	var r Recorder
	require.NoError(t, r.BookingCreated(context.Background(), &model.Booking{}))
	require.NoError(t, r.ScheduleCompleted(context.Background(), &model.Schedule{}))

	assert.Equal(t, []string{SubjectBookingCreated, SubjectScheduleCompleted}, r.Subjects())
}
