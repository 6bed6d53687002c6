package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ScheduleCompleter closes schedules whose end time has passed.
type ScheduleCompleter interface {
	CompleteElapsed(ctx context.Context) (int, error)
}

// Sweeper periodically marks elapsed schedules as completed.
type Sweeper struct {
	schedules ScheduleCompleter
	interval  time.Duration
	logger    *zap.Logger
	stopChan  chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
}

func NewSweeper(schedules ScheduleCompleter, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		schedules: schedules,
		interval:  interval,
		logger:    logger,
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting schedule sweeper", zap.Duration("interval", s.interval))
	go s.run(ctx)
}

// Stop ends the loop and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping schedule sweeper")
		close(s.stopChan)
	})
	<-s.done
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	// first sweep right away
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("Schedule sweeper stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Schedule sweeper cancelled")
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if _, err := s.schedules.CompleteElapsed(ctx); err != nil {
		s.logger.Error("Failed to complete elapsed schedules", zap.Error(err))
	}
}
