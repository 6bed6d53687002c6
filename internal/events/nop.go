package events

import (
	"context"
	"sync"

	"github.com/Freeeeeet/cooking_school/internal/model"
)

// Nop drops every event. Used when NATS_URL is empty.
type Nop struct{}

func (Nop) BookingCreated(context.Context, *model.Booking) error {
	return nil
}

func (Nop) BookingStatusChanged(context.Context, *model.Booking, model.BookingStatus) error {
	return nil
}

func (Nop) ApplicationReviewed(context.Context, *model.StaffApplication) error {
	return nil
}

func (Nop) ScheduleCompleted(context.Context, *model.Schedule) error {
	return nil
}

// Recorder keeps the subjects of published events in memory.
type Recorder struct {
	mu       sync.Mutex
	subjects []string
}

func (r *Recorder) record(subject string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects = append(r.subjects, subject)
	return nil
}

// Subjects returns a copy of the recorded subjects in publish order.
func (r *Recorder) Subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.subjects...)
}

func (r *Recorder) BookingCreated(context.Context, *model.Booking) error {
	return r.record(SubjectBookingCreated)
}

func (r *Recorder) BookingStatusChanged(context.Context, *model.Booking, model.BookingStatus) error {
	return r.record(SubjectBookingStatusChanged)
}

func (r *Recorder) ApplicationReviewed(context.Context, *model.StaffApplication) error {
	return r.record(SubjectApplicationReviewed)
}

func (r *Recorder) ScheduleCompleted(context.Context, *model.Schedule) error {
	return r.record(SubjectScheduleCompleted)
}
