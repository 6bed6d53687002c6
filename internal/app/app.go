// Package app wires configuration, storage and services into a running server.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/Freeeeeet/cooking_school/internal/api"
	"github.com/Freeeeeet/cooking_school/internal/config"
	"github.com/Freeeeeet/cooking_school/internal/events"
	"github.com/Freeeeeet/cooking_school/internal/images"
	"github.com/Freeeeeet/cooking_school/internal/jwt"
	"github.com/Freeeeeet/cooking_school/internal/repository"
	"github.com/Freeeeeet/cooking_school/internal/repository/memory"
	"github.com/Freeeeeet/cooking_school/internal/repository/postgres"
	"github.com/Freeeeeet/cooking_school/internal/service"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	pool      *pgxpool.Pool
	publisher events.Publisher
	closeBus  func()

	Store    repository.Store
	Services api.Services
	server   *api.Server
	sweeper  *Sweeper
}

// New connects to the configured backends and builds every service.
// With STORAGE=postgres the schema is migrated before New returns.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger, closeBus: func() {}}

	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		a.Store = memory.NewStore()
	default:
		pool, err := Connect(ctx, cfg.DBDSN, logger)
		if err != nil {
			return nil, err
		}
		a.pool = pool

		migrator, err := NewMigrator(pool, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		err = migrator.Up(ctx)
		migrator.Close()
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Store = postgres.NewStore(pool)
	}

	if cfg.NATSURL != "" {
		publisher, err := events.NewNatsPublisher(cfg.NATSURL, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.publisher = publisher
		a.closeBus = publisher.Close
	} else {
		logger.Info("NATS_URL not set, domain events are not published")
		a.publisher = events.Nop{}
	}

	var imageStore service.ImageStore
	if cfg.S3.Enabled() {
		presigner, err := images.NewPresigner(ctx, images.Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		imageStore = presigner
	}

	issuer := jwt.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	a.Services = api.Services{
		Auth:         service.NewAuthService(a.Store, issuer, logger),
		Classes:      service.NewClassService(a.Store, imageStore, logger),
		Schedules:    service.NewScheduleService(a.Store, a.publisher, logger, cfg.ReserveMaxRetries),
		Bookings:     service.NewBookingService(a.Store, a.publisher, logger, cfg.ReserveMaxRetries),
		Staff:        service.NewStaffService(a.Store, logger),
		Applications: service.NewApplicationService(a.Store, a.publisher, logger),
	}
	a.server = api.NewServer(a.Services, issuer, logger)
	a.sweeper = NewSweeper(a.Services.Schedules, cfg.SweepInterval, logger)

	return a, nil
}

// Connect opens the pgx pool, retrying while the database comes up.
func Connect(ctx context.Context, dsn string, logger *zap.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		p, err := postgres.NewPool(ctx, dsn)
		if err != nil {
			return fmt.Errorf("create pool: %w", err)
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			logger.Warn("Database not reachable yet", zap.Error(err))
			return retry.RetryableError(fmt.Errorf("ping database: %w", err))
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Connected to database")
	return pool, nil
}

// Run serves HTTP and sweeps schedules until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.sweeper.Start(ctx)
	defer a.sweeper.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Listen(a.cfg.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

func (a *App) Close() {
	a.closeBus()
	if a.pool != nil {
		a.pool.Close()
	}
}
