package service

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/Freeeeeet/cooking_school/internal/repository"
)

const conflictBackoff = 5 * time.Millisecond

// retryConflicts runs fn again while it fails with repository.ErrConflict,
// at most maxRetries extra times. onRetry is called before every new attempt.
// A conflict that survives every attempt is returned as ErrConflict.
func retryConflicts(ctx context.Context, maxRetries uint64, onRetry func(), fn func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(maxRetries, retry.WithJitterPercent(50, retry.NewConstant(conflictBackoff)))

	attempt := 0
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		if attempt > 0 && onRetry != nil {
			onRetry()
		}
		attempt++

		if err := fn(ctx); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})

	if errors.Is(err, repository.ErrConflict) {
		return errors.Join(ErrConflict, err)
	}
	return err
}
