package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/cooking_school/internal/events"
	"github.com/Freeeeeet/cooking_school/internal/metrics"
	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/policy"
	"github.com/Freeeeeet/cooking_school/internal/repository"
)

type ApplicationService struct {
	store  repository.Store
	events events.Publisher
	logger *zap.Logger
	now    func() time.Time
}

func NewApplicationService(store repository.Store, publisher events.Publisher, logger *zap.Logger) *ApplicationService {
	return &ApplicationService{
		store:  store,
		events: publisher,
		logger: logger,
		now:    time.Now,
	}
}

type ApplicationInput struct {
	FullName   string
	Email      string
	Phone      string
	Experience string
	Skills     []string
}

// Submit files a new application. Anonymous visitors may apply, so actor is optional.
func (s *ApplicationService) Submit(ctx context.Context, actor *Actor, in ApplicationInput) (*model.StaffApplication, error) {
	if actor != nil {
		if err := actor.require(policy.ApplicationSubmit); err != nil {
			return nil, err
		}
	}

	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	switch {
	case in.FullName == "":
		return nil, invalid("fullName", "must not be empty")
	case in.Email == "":
		return nil, invalid("email", "must not be empty")
	}

	app := &model.StaffApplication{
		ID:         uuid.New(),
		FullName:   in.FullName,
		Email:      in.Email,
		Phone:      in.Phone,
		Experience: in.Experience,
		Skills:     cleanStrings(in.Skills),
		Status:     model.ApplicationStatusPending,
	}

	err := s.store.Tx(ctx, func(r repository.Repositories) error {
		return r.Applications().Create(ctx, app)
	})
	if err != nil {
		return nil, fmt.Errorf("create staff application: %w", err)
	}

	s.logger.Info("Staff application submitted",
		zap.String("application_id", app.ID.String()),
		zap.String("email", app.Email),
	)
	return app, nil
}

func (s *ApplicationService) List(ctx context.Context, actor Actor) ([]*model.StaffApplication, error) {
	if err := actor.require(policy.ApplicationRead); err != nil {
		return nil, err
	}

	var apps []*model.StaffApplication
	err := s.store.Read(ctx, func(r repository.Repositories) error {
		var err error
		apps, err = r.Applications().List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list staff applications: %w", err)
	}
	return apps, nil
}

func (s *ApplicationService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.StaffApplication, error) {
	if err := actor.require(policy.ApplicationRead); err != nil {
		return nil, err
	}

	var app *model.StaffApplication
	err := s.store.Read(ctx, func(r repository.Repositories) error {
		var err error
		app, err = r.Applications().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get staff application: %w", err)
	}
	if app == nil {
		return nil, notFound("staff application", id)
	}
	return app, nil
}

// ReviewResult describes what an approval or rejection changed.
type ReviewResult struct {
	Application *model.StaffApplication
	Staff       *model.Staff   // created or promoted staff record, approvals only
	Elevated    *model.Account // account raised from USER to STAFF, if any
}

func (s *ApplicationService) Approve(ctx context.Context, actor Actor, id uuid.UUID) (*ReviewResult, error) {
	return s.Review(ctx, actor, id, model.ApplicationStatusApproved)
}

func (s *ApplicationService) Reject(ctx context.Context, actor Actor, id uuid.UUID) (*ReviewResult, error) {
	return s.Review(ctx, actor, id, model.ApplicationStatusRejected)
}

// Review decides a PENDING application. Approval writes the application
// status, the staff record and the account role in one transaction.
func (s *ApplicationService) Review(ctx context.Context, actor Actor, id uuid.UUID, status model.ApplicationStatus) (*ReviewResult, error) {
	if err := actor.require(policy.ApplicationReview); err != nil {
		return nil, err
	}
	if status != model.ApplicationStatusApproved && status != model.ApplicationStatusRejected {
		return nil, invalid("status", "must be APPROVED or REJECTED")
	}

	result := &ReviewResult{}
	err := s.store.Tx(ctx, func(r repository.Repositories) error {
		app, err := r.Applications().GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get staff application: %w", err)
		}
		if app == nil {
			return notFound("staff application", id)
		}
		if !app.IsPending() {
			return ErrAlreadyReviewed
		}

		reviewedAt := s.now()
		if err := r.Applications().UpdateStatus(ctx, id, status, reviewedAt); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrAlreadyReviewed
			}
			return fmt.Errorf("update staff application: %w", err)
		}
		app.Status = status
		app.ReviewedAt = &reviewedAt
		result.Application = app

		if !app.IsApproved() {
			return nil
		}

		if result.Staff, err = upsertStaffFromApplication(ctx, r.Staff(), app); err != nil {
			return err
		}

		account, err := r.Accounts().GetByEmail(ctx, app.Email)
		if err != nil {
			return fmt.Errorf("get account: %w", err)
		}
		if account != nil && account.Role == model.RoleUser {
			if err := r.Accounts().UpdateRole(ctx, account.ID, model.RoleStaff); err != nil {
				return fmt.Errorf("elevate account: %w", err)
			}
			account.Role = model.RoleStaff
			result.Elevated = account
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ApplicationsReviewed.WithLabelValues(string(status)).Inc()

	fields := []zap.Field{
		zap.String("application_id", id.String()),
		zap.String("status", string(status)),
		zap.String("reviewer_id", actor.AccountID.String()),
	}
	if result.Staff != nil {
		fields = append(fields, zap.String("staff_id", result.Staff.ID.String()))
	}
	if result.Elevated != nil {
		fields = append(fields, zap.String("elevated_account_id", result.Elevated.ID.String()))
	}
	s.logger.Info("Staff application reviewed", fields...)

	if err := s.events.ApplicationReviewed(ctx, result.Application); err != nil {
		s.logger.Warn("Failed to publish application event", zap.Error(err))
	}
	return result, nil
}

// upsertStaffFromApplication creates the staff record for an approved
// applicant, or merges the application into the record that already uses
// the same email.
func upsertStaffFromApplication(ctx context.Context, repo repository.StaffRepository, app *model.StaffApplication) (*model.Staff, error) {
	staff, err := repo.GetByEmail(ctx, app.Email)
	if err != nil {
		return nil, fmt.Errorf("get staff by email: %w", err)
	}

	if staff == nil {
		staff = &model.Staff{
			ID:    uuid.New(),
			Name:  app.FullName,
			Email: app.Email,
		}
		if app.Phone != "" {
			phone := app.Phone
			staff.Phone = &phone
		}
		staff.MergeSpecialties(app.Skills)

		if err := repo.Create(ctx, staff); err != nil {
			return nil, fmt.Errorf("create staff: %w", err)
		}
		return staff, nil
	}

	staff.MergeSpecialties(app.Skills)
	if staff.Phone == nil && app.Phone != "" {
		phone := app.Phone
		staff.Phone = &phone
	}
	if err := repo.Update(ctx, staff); err != nil {
		return nil, fmt.Errorf("promote staff: %w", err)
	}
	return staff, nil
}

func cleanStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
