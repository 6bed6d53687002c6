package service

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/cooking_school/internal/repository"
)

const bookingNumberAttempts = 10

// generateBookingNumber returns an unused number like BK-20261018-K3QZ7A.
// The unique index on bookings still backs this up when two transactions
// pick the same number concurrently; that surfaces as repository.ErrConflict.
func generateBookingNumber(ctx context.Context, bookings repository.BookingRepository, now time.Time) (string, error) {
	for i := 0; i < bookingNumberAttempts; i++ {
		bytes := make([]byte, 5)
		if _, err := rand.Read(bytes); err != nil {
			return "", fmt.Errorf("generate random bytes: %w", err)
		}

		suffix := strings.TrimRight(base32.StdEncoding.EncodeToString(bytes), "=")[:6]
		number := fmt.Sprintf("BK-%s-%s", now.UTC().Format("20060102"), suffix)

		exists, err := bookings.NumberExists(ctx, number)
		if err != nil {
			return "", fmt.Errorf("check booking number: %w", err)
		}
		if !exists {
			return number, nil
		}
	}

	return "", fmt.Errorf("generate booking number after %d attempts: %w", bookingNumberAttempts, repository.ErrConflict)
}
