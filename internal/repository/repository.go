// Package repository defines the storage contract shared by the Postgres
// and in-memory backends.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Freeeeeet/cooking_school/internal/model"
)

// ErrConflict is returned when a compare-and-set write loses to a concurrent
// writer, or when a generated unique value is already taken. It is retryable.
var ErrConflict = errors.New("concurrent modification")

// ErrNotFound is returned by updates and deletes that match no row.
var ErrNotFound = errors.New("row not found")

// Store hands out repositories bound to a unit of work.
type Store interface {
	// Tx runs fn in a single committed unit: either every write made through r
	// becomes visible, or none does.
	Tx(ctx context.Context, fn func(r Repositories) error) error
	// Read runs fn for lookups that need no atomicity.
	Read(ctx context.Context, fn func(r Repositories) error) error
}

type Repositories interface {
	Accounts() AccountRepository
	Classes() ClassRepository
	Schedules() ScheduleRepository
	Bookings() BookingRepository
	Staff() StaffRepository
	Applications() ApplicationRepository
}

// Lookups return (nil, nil) when the row does not exist.

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error
}

type ClassFilter struct {
	Difficulty *model.Difficulty
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}

type ClassRepository interface {
	Create(ctx context.Context, class *model.ClassOffering) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ClassOffering, error)
	List(ctx context.Context, filter ClassFilter) ([]*model.ClassOffering, error)
	Update(ctx context.Context, class *model.ClassOffering) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ScheduleFilter struct {
	ClassID    *uuid.UUID
	StaffID    *uuid.UUID
	Status     *model.ScheduleStatus
	EndsBefore *time.Time
}

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *model.Schedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Schedule, error)
	// GetForUpdate reads the schedule and holds a per-schedule lock until the
	// surrounding Tx ends. Only meaningful inside Store.Tx.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Schedule, error)
	List(ctx context.Context, filter ScheduleFilter) ([]*model.Schedule, error)
	// Update writes the editable fields if schedule.Version is still current,
	// and bumps the version. Returns ErrConflict otherwise.
	Update(ctx context.Context, schedule *model.Schedule) error
	// AdjustBooked adds delta to booked_count if the version still equals
	// expectedVersion and the result stays within [0, max_students].
	// Returns the new booked count, or ErrConflict.
	AdjustBooked(ctx context.Context, id uuid.UUID, delta int, expectedVersion int64) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByClass(ctx context.Context, classID uuid.UUID) (int, error)
	UnassignStaff(ctx context.Context, staffID uuid.UUID) error
}

type BookingFilter struct {
	AccountID  *uuid.UUID
	ScheduleID *uuid.UUID
	StaffID    *uuid.UUID // bookings on schedules taught by this staff member
}

type BookingRepository interface {
	// Create returns ErrConflict if the booking number is already taken.
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error
	NumberExists(ctx context.Context, number string) (bool, error)
	// CountActive counts non-cancelled bookings on a schedule.
	CountActive(ctx context.Context, scheduleID uuid.UUID) (int, error)
	// SumActivePeople sums number_of_people over non-cancelled bookings on a schedule.
	SumActivePeople(ctx context.Context, scheduleID uuid.UUID) (int, error)
}

type StaffRepository interface {
	Create(ctx context.Context, staff *model.Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Staff, error)
	GetByEmail(ctx context.Context, email string) (*model.Staff, error)
	List(ctx context.Context) ([]*model.Staff, error)
	Update(ctx context.Context, staff *model.Staff) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *model.StaffApplication) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.StaffApplication, error)
	List(ctx context.Context) ([]*model.StaffApplication, error)
	// UpdateStatus moves a PENDING application to status. Returns ErrConflict
	// if the application was no longer PENDING.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ApplicationStatus, reviewedAt time.Time) error
}
