package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/repository"
)

type applicationRepo struct{ *repos }

func (r *applicationRepo) Create(ctx context.Context, app *model.StaffApplication) error {
	ensureID(&app.ID)
	app.CreatedAt = r.now()

	stored := *app
	stored.Skills = cloneStrings(app.Skills)
	r.st.applications[app.ID] = stored
	return nil
}

func (r *applicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.StaffApplication, error) {
	app, ok := r.st.applications[id]
	if !ok {
		return nil, nil
	}
	app.Skills = cloneStrings(app.Skills)
	return &app, nil
}

func (r *applicationRepo) List(ctx context.Context) ([]*model.StaffApplication, error) {
	apps := make([]*model.StaffApplication, 0, len(r.st.applications))
	for _, app := range r.st.applications {
		app := app
		app.Skills = cloneStrings(app.Skills)
		apps = append(apps, &app)
	}
	sortByCreated(apps, func(a *model.StaffApplication) time.Time { return a.CreatedAt })
	return apps, nil
}

func (r *applicationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ApplicationStatus, reviewedAt time.Time) error {
	app, ok := r.st.applications[id]
	if !ok {
		return fmt.Errorf("update application status: %w", repository.ErrNotFound)
	}
	if !app.IsPending() {
		return fmt.Errorf("update application status: %w", repository.ErrConflict)
	}

	app.Status = status
	app.ReviewedAt = &reviewedAt
	r.st.applications[id] = app
	return nil
}
