package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/repository"
)

type staffRepo struct{ base }

const staffColumns = `id, name, email, phone, specialties, created_at, updated_at`

func scanStaff(row interface{ Scan(...any) error }) (*model.Staff, error) {
	var s model.Staff
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Specialties, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func specialtiesParam(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func (r *staffRepo) Create(ctx context.Context, staff *model.Staff) error {
	ensureID(&staff.ID)

	query := `
		INSERT INTO staff (id, name, email, phone, specialties)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		staff.ID,
		staff.Name,
		staff.Email,
		staff.Phone,
		specialtiesParam(staff.Specialties),
	).Scan(&staff.CreatedAt, &staff.UpdatedAt)
	if err != nil {
		if isConstraint(err, uniqueViolation) {
			return fmt.Errorf("create staff: email %q: %w", staff.Email, repository.ErrConflict)
		}
		return fmt.Errorf("create staff: %w", err)
	}
	return nil
}

func (r *staffRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	staff, err := scanStaff(r.db.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = $1`, id))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get staff by id: %w", err)
	}
	return staff, nil
}

func (r *staffRepo) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE lower(email) = lower($1)`

	staff, err := scanStaff(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get staff by email: %w", err)
	}
	return staff, nil
}

func (r *staffRepo) List(ctx context.Context) ([]*model.Staff, error) {
	rows, err := r.db.Query(ctx, `SELECT `+staffColumns+` FROM staff ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	members := make([]*model.Staff, 0)
	for rows.Next() {
		staff, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		members = append(members, staff)
	}
	return members, rows.Err()
}

func (r *staffRepo) Update(ctx context.Context, staff *model.Staff) error {
	query := `
		UPDATE staff
		SET name = $2, email = $3, phone = $4, specialties = $5, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		staff.ID,
		staff.Name,
		staff.Email,
		staff.Phone,
		specialtiesParam(staff.Specialties),
	).Scan(&staff.CreatedAt, &staff.UpdatedAt)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("update staff: %w", repository.ErrNotFound)
		}
		if isConstraint(err, uniqueViolation) {
			return fmt.Errorf("update staff: email %q: %w", staff.Email, repository.ErrConflict)
		}
		return fmt.Errorf("update staff: %w", err)
	}
	return nil
}

func (r *staffRepo) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.execAffected(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete staff: %w", repository.ErrNotFound)
	}
	return nil
}
