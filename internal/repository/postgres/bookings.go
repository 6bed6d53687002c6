package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/repository"
)

type bookingRepo struct{ base }

const bookingColumns = `b.id, b.booking_number, b.account_id, b.schedule_id, b.number_of_people, b.total_price, b.notes, b.status, b.created_at, b.updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID,
		&b.BookingNumber,
		&b.AccountID,
		&b.ScheduleID,
		&b.NumberOfPeople,
		&b.TotalPrice,
		&b.Notes,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	ensureID(&booking.ID)

	query := `
		INSERT INTO bookings (id, booking_number, account_id, schedule_id, number_of_people, total_price, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		booking.ID,
		booking.BookingNumber,
		booking.AccountID,
		booking.ScheduleID,
		booking.NumberOfPeople,
		booking.TotalPrice,
		booking.Notes,
		booking.Status,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if isConstraint(err, uniqueViolation) {
			return fmt.Errorf("create booking: number %s: %w", booking.BookingNumber, repository.ErrConflict)
		}
		if isConstraint(err, foreignKeyViolation) {
			return fmt.Errorf("create booking: %w", repository.ErrNotFound)
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *bookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}
	return booking, nil
}

func (r *bookingRepo) List(ctx context.Context, filter repository.BookingFilter) ([]*model.Booking, error) {
	var (
		conds []string
		args  []any
	)
	if filter.AccountID != nil {
		args = append(args, *filter.AccountID)
		conds = append(conds, fmt.Sprintf("b.account_id = $%d", len(args)))
	}
	if filter.ScheduleID != nil {
		args = append(args, *filter.ScheduleID)
		conds = append(conds, fmt.Sprintf("b.schedule_id = $%d", len(args)))
	}
	if filter.StaffID != nil {
		args = append(args, *filter.StaffID)
		conds = append(conds, fmt.Sprintf("s.staff_id = $%d", len(args)))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings b JOIN schedules s ON s.id = b.schedule_id`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY b.created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]*model.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func (r *bookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error {
	query := `UPDATE bookings SET status = $2, updated_at = now() WHERE id = $1`

	affected, err := r.execAffected(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update booking status: %w", repository.ErrNotFound)
	}
	return nil
}

func (r *bookingRepo) NumberExists(ctx context.Context, number string) (bool, error) {
	found, err := r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE booking_number = $1)`, number)
	if err != nil {
		return false, fmt.Errorf("check booking number: %w", err)
	}
	return found, nil
}

func (r *bookingRepo) CountActive(ctx context.Context, scheduleID uuid.UUID) (int, error) {
	var count int
	query := `SELECT count(*) FROM bookings WHERE schedule_id = $1 AND status <> 'CANCELLED'`
	if err := r.db.QueryRow(ctx, query, scheduleID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active bookings: %w", err)
	}
	return count, nil
}

func (r *bookingRepo) SumActivePeople(ctx context.Context, scheduleID uuid.UUID) (int, error) {
	var sum int
	query := `SELECT COALESCE(SUM(number_of_people), 0) FROM bookings WHERE schedule_id = $1 AND status <> 'CANCELLED'`
	if err := r.db.QueryRow(ctx, query, scheduleID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum active people: %w", err)
	}
	return sum, nil
}
