package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/organs/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/organs/internal/core/domain"
	"github.com/vncsmyrnk/organs/internal/core/ports"
)

var testSecret = []byte("test-secret-0123456789")

func newAuthService(now func() time.Time) *AuthService {
	users := memory.NewUserRepository(memory.New())
	return NewAuthService(users, testSecret, time.Hour, Options{Now: now})
}

func TestAuthService_SignUp(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(nil)

	user, err := svc.SignUp(ctx, ports.SignUpInput{Username: "jane", Email: "jane@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.NotEqual(t, "hunter22", user.PasswordHash)
	assert.Empty(t, user.Organs)

	_, err = svc.SignUp(ctx, ports.SignUpInput{Username: "other", Email: "jane@example.com", Password: "pw"})
	require.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	_, err = svc.SignUp(ctx, ports.SignUpInput{Email: "x@example.com", Password: "pw"})
	require.ErrorIs(t, err, domain.ErrMissingSignUpFields)
}

func TestAuthService_SignIn(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := newAuthService(func() time.Time { return now })

	user, err := svc.SignUp(ctx, ports.SignUpInput{Username: "jane", Email: "jane@example.com", Password: "hunter22"})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		token, err := svc.SignIn(ctx, "jane@example.com", "hunter22")
		require.NoError(t, err)

		claims := &Claims{}
		_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) { return testSecret, nil },
			jwt.WithTimeFunc(func() time.Time { return now }))
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID)
		assert.Equal(t, user.ID.String(), claims.Subject)
		assert.Equal(t, "jane", claims.Username)
		assert.True(t, now.Add(time.Hour).Equal(claims.ExpiresAt.Time))

		id, err := svc.Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, id)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.SignIn(ctx, "jane@example.com", "wrong")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.SignIn(ctx, "nobody@example.com", "hunter22")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
		assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := issued
	svc := newAuthService(func() time.Time { return clock })

	_, err := svc.SignUp(ctx, ports.SignUpInput{Username: "jane", Email: "jane@example.com", Password: "hunter22"})
	require.NoError(t, err)
	token, err := svc.SignIn(ctx, "jane@example.com", "hunter22")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		clock = issued.Add(2 * time.Hour)
		defer func() { clock = issued }()

		_, err := svc.Authenticate(ctx, token)
		require.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewAuthService(memory.NewUserRepository(memory.New()), []byte("another-secret-0123456"), time.Hour, Options{Now: func() time.Time { return clock }})
		_, err := other.Authenticate(ctx, token)
		require.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("other algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"_id": uuid.NewString(), "exp": clock.Add(time.Hour).Unix()})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, raw)
		require.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "")
		require.ErrorIs(t, err, domain.ErrMissingToken)
	})
}
