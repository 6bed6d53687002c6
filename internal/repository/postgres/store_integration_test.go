//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/repository"
	"github.com/Freeeeeet/cooking_school/migrations"
)

type StoreIntegrationSuite struct {
	suite.Suite
	ctx   context.Context
	pgc   *tcpostgres.PostgresContainer
	pool  *pgxpool.Pool
	store *Store
}

func TestStoreIntegration(t *testing.T) {
	suite.Run(t, new(StoreIntegrationSuite))
}

func (s *StoreIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	pgc, err := tcpostgres.Run(s.ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("cooking_school"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.pgc = pgc

	dsn, err := pgc.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	pool, err := NewPool(s.ctx, dsn)
	s.Require().NoError(err)
	s.pool = pool

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	goose.SetBaseFS(migrations.FS)
	s.Require().NoError(goose.SetDialect("postgres"))
	s.Require().NoError(goose.UpContext(s.ctx, db, "."))

	s.store = NewStore(pool)
}

func (s *StoreIntegrationSuite) TearDownSuite() {
	s.pool.Close()
	s.Require().NoError(s.pgc.Terminate(s.ctx))
}

func (s *StoreIntegrationSuite) seed(maxStudents int) (*model.Account, *model.Schedule) {
	account := &model.Account{
		Email: uuid.NewString() + "@example.com", Name: "Guest", Role: model.RoleUser, PasswordHash: "x",
	}
	class := &model.ClassOffering{
		Title: "Pasta", DurationMinutes: 120, Price: decimal.RequireFromString("49.50"), MaxStudents: maxStudents,
		Difficulty: model.DifficultyBeginner,
	}
	start := time.Now().Add(72 * time.Hour).Truncate(time.Second)
	schedule := &model.Schedule{
		StartTime: start, EndTime: start.Add(2 * time.Hour),
		MaxStudents: maxStudents, Status: model.ScheduleStatusScheduled,
	}

	err := s.store.Tx(s.ctx, func(r repository.Repositories) error {
		if err := r.Accounts().Create(s.ctx, account); err != nil {
			return err
		}
		if err := r.Classes().Create(s.ctx, class); err != nil {
			return err
		}
		schedule.ClassID = class.ID
		return r.Schedules().Create(s.ctx, schedule)
	})
	s.Require().NoError(err)
	return account, schedule
}

func (s *StoreIntegrationSuite) TestAdjustBookedRespectsVersionAndBounds() {
	_, schedule := s.seed(2)

	err := s.store.Tx(s.ctx, func(r repository.Repositories) error {
		current, err := r.Schedules().GetForUpdate(s.ctx, schedule.ID)
		s.Require().NoError(err)

		booked, err := r.Schedules().AdjustBooked(s.ctx, schedule.ID, 2, current.Version)
		s.Require().NoError(err)
		s.Equal(2, booked)

		_, err = r.Schedules().AdjustBooked(s.ctx, schedule.ID, 1, current.Version+1)
		s.ErrorIs(err, repository.ErrConflict)
		return nil
	})
	s.Require().NoError(err)
}

func (s *StoreIntegrationSuite) TestTxRollsBack() {
	_, schedule := s.seed(3)
	boom := errors.New("boom")

	err := s.store.Tx(s.ctx, func(r repository.Repositories) error {
		if _, err := r.Schedules().AdjustBooked(s.ctx, schedule.ID, 1, schedule.Version); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	err = s.store.Read(s.ctx, func(r repository.Repositories) error {
		got, err := r.Schedules().GetByID(s.ctx, schedule.ID)
		s.Require().NoError(err)
		s.Equal(0, got.BookedCount)
		return nil
	})
	s.Require().NoError(err)
}

func (s *StoreIntegrationSuite) TestConcurrentSeatIncrementsNeverOverbook() {
	_, schedule := s.seed(5)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Tx(s.ctx, func(r repository.Repositories) error {
				current, err := r.Schedules().GetForUpdate(s.ctx, schedule.ID)
				if err != nil {
					return err
				}
				_, err = r.Schedules().AdjustBooked(s.ctx, schedule.ID, 1, current.Version)
				return err
			})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(s.T(), 5, success)
	err := s.store.Read(s.ctx, func(r repository.Repositories) error {
		got, err := r.Schedules().GetByID(s.ctx, schedule.ID)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), 5, got.BookedCount)
		return nil
	})
	s.Require().NoError(err)
}

func (s *StoreIntegrationSuite) TestBookingNumberUniqueAndDeleteGuard() {
	account, schedule := s.seed(4)

	err := s.store.Tx(s.ctx, func(r repository.Repositories) error {
		return r.Bookings().Create(s.ctx, &model.Booking{
			BookingNumber: "BK-IT-" + schedule.ID.String()[:8], AccountID: account.ID, ScheduleID: schedule.ID,
			NumberOfPeople: 1, TotalPrice: decimal.RequireFromString("49.50"), Status: model.BookingStatusPending,
		})
	})
	s.Require().NoError(err)

	err = s.store.Tx(s.ctx, func(r repository.Repositories) error {
		return r.Bookings().Create(s.ctx, &model.Booking{
			BookingNumber: "BK-IT-" + schedule.ID.String()[:8], AccountID: account.ID, ScheduleID: schedule.ID,
			NumberOfPeople: 1, TotalPrice: decimal.RequireFromString("49.50"), Status: model.BookingStatusPending,
		})
	})
	s.ErrorIs(err, repository.ErrConflict)

	err = s.store.Tx(s.ctx, func(r repository.Repositories) error {
		return r.Schedules().Delete(s.ctx, schedule.ID)
	})
	s.ErrorIs(err, repository.ErrConflict)
}

func (s *StoreIntegrationSuite) TestApplicationReviewOnce() {
	app := &model.StaffApplication{
		FullName: "Rita Chef", Email: "rita@example.com", Skills: []string{"baking"},
		Status: model.ApplicationStatusPending,
	}
	err := s.store.Tx(s.ctx, func(r repository.Repositories) error {
		if err := r.Applications().Create(s.ctx, app); err != nil {
			return err
		}
		return r.Applications().UpdateStatus(s.ctx, app.ID, model.ApplicationStatusApproved, time.Now())
	})
	s.Require().NoError(err)

	err = s.store.Tx(s.ctx, func(r repository.Repositories) error {
		return r.Applications().UpdateStatus(s.ctx, app.ID, model.ApplicationStatusRejected, time.Now())
	})
	s.ErrorIs(err, repository.ErrConflict)
}

func (s *StoreIntegrationSuite) TestPricesRoundTripAsNumeric() {
	account, schedule := s.seed(4)

	booking := &model.Booking{
		BookingNumber: "BK-NUM-" + schedule.ID.String()[:8], AccountID: account.ID, ScheduleID: schedule.ID,
		NumberOfPeople: 3, TotalPrice: decimal.RequireFromString("148.50"), Status: model.BookingStatusPending,
	}
	s.Require().NoError(s.store.Tx(s.ctx, func(r repository.Repositories) error {
		return r.Bookings().Create(s.ctx, booking)
	}))

	var (
		class   *model.ClassOffering
		stored  *model.Booking
		matches []*model.ClassOffering
	)
	lo, hi := decimal.RequireFromString("49.25"), decimal.RequireFromString("49.75")
	err := s.store.Read(s.ctx, func(r repository.Repositories) error {
		var err error
		if class, err = r.Classes().GetByID(s.ctx, schedule.ClassID); err != nil {
			return err
		}
		if stored, err = r.Bookings().GetByID(s.ctx, booking.ID); err != nil {
			return err
		}
		matches, err = r.Classes().List(s.ctx, repository.ClassFilter{MinPrice: &lo, MaxPrice: &hi})
		return err
	})
	s.Require().NoError(err)

	s.True(decimal.RequireFromString("49.5").Equal(class.Price), class.Price.String())
	s.True(decimal.RequireFromString("148.5").Equal(stored.TotalPrice), stored.TotalPrice.String())

	var found bool
	for _, c := range matches {
		found = found || c.ID == class.ID
	}
	s.True(found)
}
