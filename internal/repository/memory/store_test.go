package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/repository"
)

func seedSchedule(t *testing.T, store *Store, maxStudents int) *model.Schedule {
	t.Helper()

	class := &model.ClassOffering{
		Title: "Knife skills", DurationMinutes: 90, Price: decimal.NewFromInt(50),
		MaxStudents: maxStudents, Difficulty: model.DifficultyBeginner,
	}
	start := time.Now().Add(48 * time.Hour)
	schedule := &model.Schedule{
		StartTime: start, EndTime: start.Add(90 * time.Minute),
		MaxStudents: maxStudents, Status: model.ScheduleStatusScheduled,
	}

	err := store.Tx(context.Background(), func(r repository.Repositories) error {
		if err := r.Classes().Create(context.Background(), class); err != nil {
			return err
		}
		schedule.ClassID = class.ID
		return r.Schedules().Create(context.Background(), schedule)
	})
	require.NoError(t, err)
	return schedule
}

func TestTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	schedule := seedSchedule(t, store, 4)

	boom := errors.New("boom")
	err := store.Tx(ctx, func(r repository.Repositories) error {
		if _, err := r.Schedules().AdjustBooked(ctx, schedule.ID, 2, schedule.Version); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = store.Read(ctx, func(r repository.Repositories) error {
		got, err := r.Schedules().GetByID(ctx, schedule.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.BookedCount)
		assert.Equal(t, schedule.Version, got.Version)
		return nil
	})
	require.NoError(t, err)
}

func TestAdjustBookedCompareAndSet(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	schedule := seedSchedule(t, store, 3)

	err := store.Tx(ctx, func(r repository.Repositories) error {
		booked, err := r.Schedules().AdjustBooked(ctx, schedule.ID, 2, schedule.Version)
		require.NoError(t, err)
		assert.Equal(t, 2, booked)

		_, err = r.Schedules().AdjustBooked(ctx, schedule.ID, 1, schedule.Version)
		assert.ErrorIs(t, err, repository.ErrConflict, "stale version")

		_, err = r.Schedules().AdjustBooked(ctx, schedule.ID, 2, schedule.Version+1)
		assert.ErrorIs(t, err, repository.ErrConflict, "over capacity")

		_, err = r.Schedules().AdjustBooked(ctx, schedule.ID, -3, schedule.Version+1)
		assert.ErrorIs(t, err, repository.ErrConflict, "below zero")
		return nil
	})
	require.NoError(t, err)
}

func TestScheduleUpdateRejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	schedule := seedSchedule(t, store, 3)

	err := store.Tx(ctx, func(r repository.Repositories) error {
		fresh := *schedule
		fresh.MaxStudents = 5
		require.NoError(t, r.Schedules().Update(ctx, &fresh))
		assert.Equal(t, schedule.Version+1, fresh.Version)

		stale := *schedule
		stale.MaxStudents = 6
		assert.ErrorIs(t, r.Schedules().Update(ctx, &stale), repository.ErrConflict)
		return nil
	})
	require.NoError(t, err)
}

func TestDeleteScheduleWithActiveBookings(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	schedule := seedSchedule(t, store, 3)

	booking := &model.Booking{
		BookingNumber: "BK-TEST-0001", AccountID: uuid.New(), ScheduleID: schedule.ID,
		NumberOfPeople: 1, Status: model.BookingStatusPending,
	}
	require.NoError(t, store.Tx(ctx, func(r repository.Repositories) error {
		return r.Bookings().Create(ctx, booking)
	}))

	err := store.Tx(ctx, func(r repository.Repositories) error {
		return r.Schedules().Delete(ctx, schedule.ID)
	})
	require.ErrorIs(t, err, repository.ErrConflict)

	require.NoError(t, store.Tx(ctx, func(r repository.Repositories) error {
		return r.Bookings().UpdateStatus(ctx, booking.ID, model.BookingStatusCancelled)
	}))
	require.NoError(t, store.Tx(ctx, func(r repository.Repositories) error {
		return r.Schedules().Delete(ctx, schedule.ID)
	}))
}

func TestBookingNumberUnique(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	schedule := seedSchedule(t, store, 3)

	err := store.Tx(ctx, func(r repository.Repositories) error {
		first := &model.Booking{BookingNumber: "BK-DUP", ScheduleID: schedule.ID, NumberOfPeople: 1}
		require.NoError(t, r.Bookings().Create(ctx, first))

		exists, err := r.Bookings().NumberExists(ctx, "BK-DUP")
		require.NoError(t, err)
		assert.True(t, exists)

		second := &model.Booking{BookingNumber: "BK-DUP", ScheduleID: schedule.ID, NumberOfPeople: 1}
		assert.ErrorIs(t, r.Bookings().Create(ctx, second), repository.ErrConflict)
		return nil
	})
	require.NoError(t, err)
}

func TestApplicationUpdateStatusOnlyFromPending(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	app := &model.StaffApplication{FullName: "Ana Cook", Email: "ana@example.com", Status: model.ApplicationStatusPending}
	err := store.Tx(ctx, func(r repository.Repositories) error {
		require.NoError(t, r.Applications().Create(ctx, app))
		require.NoError(t, r.Applications().UpdateStatus(ctx, app.ID, model.ApplicationStatusRejected, time.Now()))
		assert.ErrorIs(t, r.Applications().UpdateStatus(ctx, app.ID, model.ApplicationStatusApproved, time.Now()), repository.ErrConflict)
		return nil
	})
	require.NoError(t, err)
}

func TestLookupsReturnNilForMissingRows(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	err := store.Read(ctx, func(r repository.Repositories) error {
		account, err := r.Accounts().GetByEmail(ctx, "nobody@example.com")
		assert.NoError(t, err)
		assert.Nil(t, account)

		schedule, err := r.Schedules().GetByID(ctx, uuid.New())
		assert.NoError(t, err)
		assert.Nil(t, schedule)
		return nil
	})
	require.NoError(t, err)
}

func TestUnassignStaff(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	schedule := seedSchedule(t, store, 3)

	staffID := uuid.New()
	err := store.Tx(ctx, func(r repository.Repositories) error {
		current, _ := r.Schedules().GetByID(ctx, schedule.ID)
		current.StaffID = &staffID
		require.NoError(t, r.Schedules().Update(ctx, current))
		return r.Schedules().UnassignStaff(ctx, staffID)
	})
	require.NoError(t, err)

	err = store.Read(ctx, func(r repository.Repositories) error {
		list, err := r.Schedules().List(ctx, repository.ScheduleFilter{StaffID: &staffID})
		require.NoError(t, err)
		assert.Empty(t, list)
		return nil
	})
	require.NoError(t, err)
}
