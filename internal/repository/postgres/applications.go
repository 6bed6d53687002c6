package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/repository"
)

type applicationRepo struct{ base }

const applicationColumns = `id, full_name, email, phone, experience, skills, status, reviewed_at, created_at`

func scanApplication(row interface{ Scan(...any) error }) (*model.StaffApplication, error) {
	var a model.StaffApplication
	err := row.Scan(
		&a.ID,
		&a.FullName,
		&a.Email,
		&a.Phone,
		&a.Experience,
		&a.Skills,
		&a.Status,
		&a.ReviewedAt,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *applicationRepo) Create(ctx context.Context, app *model.StaffApplication) error {
	ensureID(&app.ID)

	query := `
		INSERT INTO staff_applications (id, full_name, email, phone, experience, skills, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		app.ID,
		app.FullName,
		app.Email,
		app.Phone,
		app.Experience,
		specialtiesParam(app.Skills),
		app.Status,
	).Scan(&app.CreatedAt)
	if err != nil {
		return fmt.Errorf("create staff application: %w", err)
	}
	return nil
}

func (r *applicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.StaffApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM staff_applications WHERE id = $1`

	app, err := scanApplication(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get staff application by id: %w", err)
	}
	return app, nil
}

func (r *applicationRepo) List(ctx context.Context) ([]*model.StaffApplication, error) {
	rows, err := r.db.Query(ctx, `SELECT `+applicationColumns+` FROM staff_applications ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list staff applications: %w", err)
	}
	defer rows.Close()

	apps := make([]*model.StaffApplication, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan staff application: %w", err)
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (r *applicationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ApplicationStatus, reviewedAt time.Time) error {
	query := `
		UPDATE staff_applications
		SET status = $2, reviewed_at = $3
		WHERE id = $1 AND status = 'PENDING'
	`
	affected, err := r.execAffected(ctx, query, id, status, reviewedAt)
	if err != nil {
		return fmt.Errorf("update staff application status: %w", err)
	}
	if affected == 0 {
		found, err := r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM staff_applications WHERE id = $1)`, id)
		if err != nil {
			return fmt.Errorf("update staff application status: %w", err)
		}
		if !found {
			return fmt.Errorf("update staff application status: %w", repository.ErrNotFound)
		}
		return fmt.Errorf("update staff application status: %w", repository.ErrConflict)
	}
	return nil
}
