package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/policy"
	"github.com/Freeeeeet/cooking_school/internal/repository"
)

type StaffService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewStaffService(store repository.Store, logger *zap.Logger) *StaffService {
	return &StaffService{store: store, logger: logger}
}

type StaffInput struct {
	Name        string
	Email       string
	Phone       *string
	Specialties []string
}

func (in StaffInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return invalid("name", "must not be empty")
	case strings.TrimSpace(in.Email) == "":
		return invalid("email", "must not be empty")
	}
	return nil
}

func (s *StaffService) Create(ctx context.Context, actor Actor, in StaffInput) (*model.Staff, error) {
	if err := actor.require(policy.StaffManage); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	staff := &model.Staff{
		ID:    uuid.New(),
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
		Phone: in.Phone,
	}
	staff.MergeSpecialties(cleanStrings(in.Specialties))

	err := s.store.Tx(ctx, func(r repository.Repositories) error {
		return r.Staff().Create(ctx, staff)
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("staff email %q already registered: %w", staff.Email, ErrConflict)
		}
		return nil, fmt.Errorf("create staff: %w", err)
	}

	s.logger.Info("Staff created",
		zap.String("staff_id", staff.ID.String()),
		zap.String("email", staff.Email),
	)
	return staff, nil
}

func (s *StaffService) List(ctx context.Context) ([]*model.Staff, error) {
	var members []*model.Staff
	err := s.store.Read(ctx, func(r repository.Repositories) error {
		var err error
		members, err = r.Staff().List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	return members, nil
}

func (s *StaffService) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	var staff *model.Staff
	err := s.store.Read(ctx, func(r repository.Repositories) error {
		var err error
		staff, err = r.Staff().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get staff: %w", err)
	}
	if staff == nil {
		return nil, notFound("staff", id)
	}
	return staff, nil
}

func (s *StaffService) Update(ctx context.Context, actor Actor, id uuid.UUID, in StaffInput) (*model.Staff, error) {
	if err := actor.require(policy.StaffManage); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var staff *model.Staff
	err := s.store.Tx(ctx, func(r repository.Repositories) error {
		var err error
		staff, err = r.Staff().GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get staff: %w", err)
		}
		if staff == nil {
			return notFound("staff", id)
		}

		staff.Name = strings.TrimSpace(in.Name)
		staff.Email = strings.TrimSpace(in.Email)
		staff.Phone = in.Phone
		staff.Specialties = nil
		staff.MergeSpecialties(cleanStrings(in.Specialties))
		return r.Staff().Update(ctx, staff)
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("staff email %q already registered: %w", in.Email, ErrConflict)
		}
		return nil, err
	}

	s.logger.Info("Staff updated", zap.String("staff_id", id.String()))
	return staff, nil
}

// Delete removes a staff member; schedules they taught become unassigned.
func (s *StaffService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := actor.require(policy.StaffManage); err != nil {
		return err
	}

	err := s.store.Tx(ctx, func(r repository.Repositories) error {
		if err := r.Schedules().UnassignStaff(ctx, id); err != nil {
			return err
		}
		return r.Staff().Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("staff", id)
		}
		return err
	}

	s.logger.Info("Staff deleted", zap.String("staff_id", id.String()))
	return nil
}
