package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/repository"
)

type classRepo struct{ base }

const classColumns = `id, title, description, duration_minutes, price, max_students, difficulty, image, created_at, updated_at`

func scanClass(row interface{ Scan(...any) error }) (*model.ClassOffering, error) {
	var c model.ClassOffering
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.DurationMinutes,
		&c.Price,
		&c.MaxStudents,
		&c.Difficulty,
		&c.Image,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *classRepo) Create(ctx context.Context, class *model.ClassOffering) error {
	ensureID(&class.ID)

	query := `
		INSERT INTO class_offerings (id, title, description, duration_minutes, price, max_students, difficulty, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		class.ID,
		class.Title,
		class.Description,
		class.DurationMinutes,
		class.Price,
		class.MaxStudents,
		class.Difficulty,
		class.Image,
	).Scan(&class.CreatedAt, &class.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

func (r *classRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.ClassOffering, error) {
	query := `SELECT ` + classColumns + ` FROM class_offerings WHERE id = $1`

	class, err := scanClass(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get class by id: %w", err)
	}
	return class, nil
}

func (r *classRepo) List(ctx context.Context, filter repository.ClassFilter) ([]*model.ClassOffering, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Difficulty != nil {
		args = append(args, *filter.Difficulty)
		conds = append(conds, fmt.Sprintf("difficulty = $%d", len(args)))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		conds = append(conds, fmt.Sprintf("price >= $%d", len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		conds = append(conds, fmt.Sprintf("price <= $%d", len(args)))
	}

	query := `SELECT ` + classColumns + ` FROM class_offerings`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	defer rows.Close()

	classes := make([]*model.ClassOffering, 0)
	for rows.Next() {
		class, err := scanClass(rows)
		if err != nil {
			return nil, fmt.Errorf("scan class: %w", err)
		}
		classes = append(classes, class)
	}
	return classes, rows.Err()
}

func (r *classRepo) Update(ctx context.Context, class *model.ClassOffering) error {
	query := `
		UPDATE class_offerings
		SET title = $2, description = $3, duration_minutes = $4, price = $5,
		    max_students = $6, difficulty = $7, image = $8, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		class.ID,
		class.Title,
		class.Description,
		class.DurationMinutes,
		class.Price,
		class.MaxStudents,
		class.Difficulty,
		class.Image,
	).Scan(&class.CreatedAt, &class.UpdatedAt)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("update class: %w", repository.ErrNotFound)
		}
		return fmt.Errorf("update class: %w", err)
	}
	return nil
}

func (r *classRepo) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.execAffected(ctx, `DELETE FROM class_offerings WHERE id = $1`, id)
	if err != nil {
		if isConstraint(err, foreignKeyViolation) {
			return fmt.Errorf("delete class: has schedules: %w", repository.ErrConflict)
		}
		return fmt.Errorf("delete class: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete class: %w", repository.ErrNotFound)
	}
	return nil
}
