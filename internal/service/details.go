package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/repository"
)

// details caches lookups while response objects are filled in.
type details struct {
	r         repository.Repositories
	classes   map[uuid.UUID]*model.ClassOffering
	staff     map[uuid.UUID]*model.Staff
	schedules map[uuid.UUID]*model.Schedule
	accounts  map[uuid.UUID]*model.Account
}

func newDetails(r repository.Repositories) *details {
	return &details{
		r:         r,
		classes:   make(map[uuid.UUID]*model.ClassOffering),
		staff:     make(map[uuid.UUID]*model.Staff),
		schedules: make(map[uuid.UUID]*model.Schedule),
		accounts:  make(map[uuid.UUID]*model.Account),
	}
}

func (d *details) class(ctx context.Context, id uuid.UUID) (*model.ClassOffering, error) {
	if c, ok := d.classes[id]; ok {
		return c, nil
	}
	c, err := d.r.Classes().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get class: %w", err)
	}
	d.classes[id] = c
	return c, nil
}

func (d *details) staffMember(ctx context.Context, id *uuid.UUID) (*model.Staff, error) {
	if id == nil {
		return nil, nil
	}
	if s, ok := d.staff[*id]; ok {
		return s, nil
	}
	s, err := d.r.Staff().GetByID(ctx, *id)
	if err != nil {
		return nil, fmt.Errorf("get staff: %w", err)
	}
	d.staff[*id] = s
	return s, nil
}

func (d *details) schedule(ctx context.Context, id uuid.UUID) (*model.Schedule, error) {
	if s, ok := d.schedules[id]; ok {
		return s, nil
	}
	s, err := d.r.Schedules().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	if s != nil {
		if s.Class, err = d.class(ctx, s.ClassID); err != nil {
			return nil, err
		}
		if s.Staff, err = d.staffMember(ctx, s.StaffID); err != nil {
			return nil, err
		}
	}
	d.schedules[id] = s
	return s, nil
}

func (d *details) account(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	if a, ok := d.accounts[id]; ok {
		return a, nil
	}
	a, err := d.r.Accounts().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	d.accounts[id] = a
	return a, nil
}

func attachBookingDetails(ctx context.Context, r repository.Repositories, bookings []*model.Booking, withAccount bool) error {
	d := newDetails(r)
	for _, b := range bookings {
		schedule, err := d.schedule(ctx, b.ScheduleID)
		if err != nil {
			return err
		}
		b.Schedule = schedule

		if withAccount {
			if b.Account, err = d.account(ctx, b.AccountID); err != nil {
				return err
			}
		}
	}
	return nil
}

func attachScheduleDetails(ctx context.Context, r repository.Repositories, schedules []*model.Schedule, withBookings bool) error {
	d := newDetails(r)
	for _, s := range schedules {
		var err error
		if s.Class, err = d.class(ctx, s.ClassID); err != nil {
			return err
		}
		if s.Staff, err = d.staffMember(ctx, s.StaffID); err != nil {
			return err
		}

		if !withBookings {
			continue
		}
		scheduleID := s.ID
		s.Bookings, err = r.Bookings().List(ctx, repository.BookingFilter{ScheduleID: &scheduleID})
		if err != nil {
			return fmt.Errorf("list schedule bookings: %w", err)
		}
		for _, b := range s.Bookings {
			if b.Account, err = d.account(ctx, b.AccountID); err != nil {
				return err
			}
		}
	}
	return nil
}
