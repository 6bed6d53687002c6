package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/cooking_school/internal/model"
)

func TestIssueAndValidate(t *testing.T) {
	issuer := NewIssuer("0123456789abcdef", time.Hour)
	account := &model.Account{ID: uuid.New(), Email: "cook@example.com", Role: model.RoleStaff}

	token, err := issuer.Issue(account)
	require.NoError(t, err)

	id, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, id)
}

func TestValidateRejectsExpired(t *testing.T) {
	issuer := NewIssuer("0123456789abcdef", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := issuer.Issue(&model.Account{ID: uuid.New(), Role: model.RoleUser})
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	token, err := NewIssuer("another-secret-value", time.Hour).Issue(&model.Account{ID: uuid.New(), Role: model.RoleUser})
	require.NoError(t, err)

	_, err = NewIssuer("0123456789abcdef", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewIssuer("0123456789abcdef", time.Hour).Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsBadSubject(t *testing.T) {
	secret := "0123456789abcdef"
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = NewIssuer(secret, time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
