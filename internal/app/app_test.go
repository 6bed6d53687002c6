package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/cooking_school/internal/config"
	"github.com/Freeeeeet/cooking_school/internal/model"
	"github.com/Freeeeeet/cooking_school/internal/service"
)

func TestNewWithMemoryStorage(t *testing.T) {
	cfg := &config.Config{
		HTTPAddr:          ":0",
		Storage:           config.StorageMemory,
		JWTSecret:         "0123456789abcdef",
		JWTTTL:            time.Hour,
		ReserveMaxRetries: 3,
		SweepInterval:     time.Minute,
	}

	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	session, err := a.Services.Auth.Register(ctx, service.RegisterInput{
		Email: "owner@example.com", Password: "s3cretpass", Name: "Owner",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)

	account, err := a.Services.Auth.SetRole(ctx, service.Operator, "owner@example.com", model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, account.Role)

	_, err = a.Services.Classes.ImageUploadURL(ctx, service.Operator, account.ID, "image/png")
	assert.ErrorIs(t, err, service.ErrUnavailable)
}

func TestNewLogger(t *testing.T) {
	for _, production := range []bool{true, false} {
		logger, err := NewLogger(production)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}
}
