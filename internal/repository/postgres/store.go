// Package postgres is the authoritative repository.Store backed by pgx.
package postgres

import (
	"context"
	"fmt"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freeeeeet/cooking_school/internal/repository"
)

type Store struct {
	pool *pgxpool.Pool
}

// NewPool opens a pgx pool whose connections map NUMERIC columns to decimal.Decimal.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	return pgxpool.NewWithConfig(ctx, config)
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Tx(ctx context.Context, fn func(r repository.Repositories) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&repos{b: base{db: tx}}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Read(ctx context.Context, fn func(r repository.Repositories) error) error {
	return fn(&repos{b: base{db: s.pool}})
}

type repos struct {
	b base
}

func (r *repos) Accounts() repository.AccountRepository         { return &accountRepo{r.b} }
func (r *repos) Classes() repository.ClassRepository            { return &classRepo{r.b} }
func (r *repos) Schedules() repository.ScheduleRepository       { return &scheduleRepo{r.b} }
func (r *repos) Bookings() repository.BookingRepository         { return &bookingRepo{r.b} }
func (r *repos) Staff() repository.StaffRepository              { return &staffRepo{r.b} }
func (r *repos) Applications() repository.ApplicationRepository { return &applicationRepo{r.b} }
