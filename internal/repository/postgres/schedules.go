package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/repository"
)

type scheduleRepo struct{ base }

const scheduleColumns = `id, class_id, staff_id, start_time, end_time, max_students, booked_count, status, version, created_at, updated_at`

func scanSchedule(row interface{ Scan(...any) error }) (*model.Schedule, error) {
	var s model.Schedule
	err := row.Scan(
		&s.ID,
		&s.ClassID,
		&s.StaffID,
		&s.StartTime,
		&s.EndTime,
		&s.MaxStudents,
		&s.BookedCount,
		&s.Status,
		&s.Version,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *scheduleRepo) Create(ctx context.Context, schedule *model.Schedule) error {
	ensureID(&schedule.ID)

	query := `
		INSERT INTO schedules (id, class_id, staff_id, start_time, end_time, max_students, booked_count, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING version, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		schedule.ID,
		schedule.ClassID,
		schedule.StaffID,
		schedule.StartTime,
		schedule.EndTime,
		schedule.MaxStudents,
		schedule.BookedCount,
		schedule.Status,
	).Scan(&schedule.Version, &schedule.CreatedAt, &schedule.UpdatedAt)
	if err != nil {
		if isConstraint(err, foreignKeyViolation) {
			return fmt.Errorf("create schedule: %w", repository.ErrNotFound)
		}
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

func (r *scheduleRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Schedule, error) {
	return r.get(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`, id)
}

func (r *scheduleRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Schedule, error) {
	return r.get(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id = $1 FOR UPDATE`, id)
}

func (r *scheduleRepo) get(ctx context.Context, query string, id uuid.UUID) (*model.Schedule, error) {
	schedule, err := scanSchedule(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get schedule by id: %w", err)
	}
	return schedule, nil
}

func (r *scheduleRepo) List(ctx context.Context, filter repository.ScheduleFilter) ([]*model.Schedule, error) {
	var (
		conds []string
		args  []any
	)
	if filter.ClassID != nil {
		args = append(args, *filter.ClassID)
		conds = append(conds, fmt.Sprintf("class_id = $%d", len(args)))
	}
	if filter.StaffID != nil {
		args = append(args, *filter.StaffID)
		conds = append(conds, fmt.Sprintf("staff_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.EndsBefore != nil {
		args = append(args, *filter.EndsBefore)
		conds = append(conds, fmt.Sprintf("end_time < $%d", len(args)))
	}

	query := `SELECT ` + scheduleColumns + ` FROM schedules`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY start_time`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	schedules := make([]*model.Schedule, 0)
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedules = append(schedules, schedule)
	}
	return schedules, rows.Err()
}

func (r *scheduleRepo) Update(ctx context.Context, schedule *model.Schedule) error {
	query := `
		UPDATE schedules
		SET class_id = $2, staff_id = $3, start_time = $4, end_time = $5,
		    max_students = $6, status = $7, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $8 AND booked_count <= $6
		RETURNING booked_count, version, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		schedule.ID,
		schedule.ClassID,
		schedule.StaffID,
		schedule.StartTime,
		schedule.EndTime,
		schedule.MaxStudents,
		schedule.Status,
		schedule.Version,
	).Scan(&schedule.BookedCount, &schedule.Version, &schedule.UpdatedAt)
	if err != nil {
		if isNotFound(err) {
			return r.missOrConflict(ctx, "update schedule", schedule.ID)
		}
		return fmt.Errorf("update schedule: %w", err)
	}
	return nil
}

func (r *scheduleRepo) AdjustBooked(ctx context.Context, id uuid.UUID, delta int, expectedVersion int64) (int, error) {
	query := `
		UPDATE schedules
		SET booked_count = booked_count + $2, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $3 AND booked_count + $2 BETWEEN 0 AND max_students
		RETURNING booked_count
	`
	var booked int
	err := r.db.QueryRow(ctx, query, id, delta, expectedVersion).Scan(&booked)
	if err != nil {
		if isNotFound(err) {
			return 0, r.missOrConflict(ctx, "adjust booked count", id)
		}
		if isConstraint(err, checkViolation) {
			return 0, fmt.Errorf("adjust booked count: %w", repository.ErrConflict)
		}
		return 0, fmt.Errorf("adjust booked count: %w", err)
	}
	return booked, nil
}

// missOrConflict tells a vanished row from a failed compare-and-set.
func (r *scheduleRepo) missOrConflict(ctx context.Context, op string, id uuid.UUID) error {
	found, err := r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM schedules WHERE id = $1)`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, repository.ErrConflict)
}

func (r *scheduleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetForUpdate(ctx, id); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}

	active, err := r.exists(ctx, `
		SELECT EXISTS (SELECT 1 FROM bookings WHERE schedule_id = $1 AND status <> 'CANCELLED')
	`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	if active {
		return fmt.Errorf("delete schedule: active bookings: %w", repository.ErrConflict)
	}

	affected, err := r.execAffected(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete schedule: %w", repository.ErrNotFound)
	}
	return nil
}

func (r *scheduleRepo) CountByClass(ctx context.Context, classID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM schedules WHERE class_id = $1`, classID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count schedules by class: %w", err)
	}
	return count, nil
}

func (r *scheduleRepo) UnassignStaff(ctx context.Context, staffID uuid.UUID) error {
	query := `
		UPDATE schedules
		SET staff_id = NULL, version = version + 1, updated_at = now()
		WHERE staff_id = $1
	`
	if _, err := r.db.Exec(ctx, query, staffID); err != nil {
		return fmt.Errorf("unassign staff: %w", err)
	}
	return nil
}
