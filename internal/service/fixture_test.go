package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Freeeeeet/cooking_school/internal/events"
	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/repository"
	"github.com/Freeeeeet/cooking_school/internal/repository/memory"
)

type fixture struct {
	ctx    context.Context
	store  repository.Store
	events *events.Recorder

	bookings     *BookingService
	applications *ApplicationService
	classes      *ClassService
	schedules    *ScheduleService
	staff        *StaffService
	auth         *AuthService

	admin Actor
}

type staticTokens struct{}

func (staticTokens) Issue(account *model.Account) (string, error) {
	return "token-" + account.ID.String(), nil
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithStore(t, memory.NewStore())
}

func newFixtureWithStore(t *testing.T, store repository.Store) *fixture {
	t.Helper()

	logger := zap.NewNop()
	recorder := &events.Recorder{}

	f := &fixture{
		ctx:          context.Background(),
		store:        store,
		events:       recorder,
		bookings:     NewBookingService(store, recorder, logger, 5),
		applications: NewApplicationService(store, recorder, logger),
		classes:      NewClassService(store, nil, logger),
		schedules:    NewScheduleService(store, recorder, logger, 5),
		staff:        NewStaffService(store, logger),
		auth:         NewAuthService(store, staticTokens{}, logger),
	}
	f.auth.hashCost = bcrypt.MinCost
	f.admin = f.account(t, "admin@example.com", model.RoleAdmin)
	return f
}

// account stores an account and returns it as a resolved actor.
func (f *fixture) account(t *testing.T, email string, role model.Role) Actor {
	t.Helper()

	account := &model.Account{ID: uuid.New(), Email: email, Name: email, Role: role, PasswordHash: "x"}
	require.NoError(t, f.store.Tx(f.ctx, func(r repository.Repositories) error {
		return r.Accounts().Create(f.ctx, account)
	}))

	actor, err := f.auth.ResolveActor(f.ctx, account.ID)
	require.NoError(t, err)
	return actor
}

// instructor creates a STAFF account with a matching staff record.
func (f *fixture) instructor(t *testing.T, email string) Actor {
	t.Helper()

	_, err := f.staff.Create(f.ctx, f.admin, StaffInput{Name: email, Email: email})
	require.NoError(t, err)
	actor := f.account(t, email, model.RoleStaff)
	require.NotNil(t, actor.StaffID)
	return actor
}

func (f *fixture) class(t *testing.T, price string, maxStudents int) *model.ClassOffering {
	t.Helper()

	class, err := f.classes.Create(f.ctx, f.admin, ClassInput{
		Title:           "Fresh pasta",
		DurationMinutes: 120,
		Price:           decimal.RequireFromString(price),
		MaxStudents:     maxStudents,
		Difficulty:      model.DifficultyBeginner,
	})
	require.NoError(t, err)
	return class
}

func (f *fixture) schedule(t *testing.T, maxStudents int, staffID *uuid.UUID) *model.Schedule {
	t.Helper()

	class := f.class(t, "50", maxStudents)
	start := time.Now().Add(72 * time.Hour)
	schedule, err := f.schedules.Create(f.ctx, f.admin, ScheduleInput{
		ClassID:   class.ID,
		StaffID:   staffID,
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	return schedule
}

func (f *fixture) getSchedule(t *testing.T, id uuid.UUID) *model.Schedule {
	t.Helper()

	schedule, err := f.schedules.Get(f.ctx, id)
	require.NoError(t, err)
	return schedule
}

func (f *fixture) reserve(t *testing.T, actor Actor, scheduleID uuid.UUID, people int) *model.Booking {
	t.Helper()

	booking, err := f.bookings.Reserve(f.ctx, actor, ReserveInput{ScheduleID: scheduleID, NumberOfPeople: people})
	require.NoError(t, err)
	return booking
}
