package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/todo/internal/adapters/repository/memory"
	"github.com/taskmaster/todo/internal/domain/entities"
	"github.com/taskmaster/todo/internal/infrastructure/config"
	"github.com/taskmaster/todo/internal/infrastructure/logger"
	"github.com/taskmaster/todo/internal/ports"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	repos := memory.NewStore().Repositories()
	return NewAuthService(repos.Users, config.JWTConfig{
		Secret:    "test-secret",
		ExpiresIn: 24 * time.Hour,
		Issuer:    "todo-test",
	}, logger.NewNop())
}

func TestAuthServiceRegister(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	resp, err := svc.Register(ctx, ports.RegisterRequest{Username: "alice", Password: "pw123"})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(86400), resp.ExpiresIn)
	assert.NotEmpty(t, resp.AccessToken)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.NotEmpty(t, claims.UserID)

	_, err = svc.Register(ctx, ports.RegisterRequest{Username: "alice", Password: "other"})
	assert.True(t, errors.Is(err, entities.ErrDuplicateUser))
}

func TestAuthServiceRegisterRequiresFields(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(context.Background(), ports.RegisterRequest{Username: "alice"})
	assert.True(t, errors.Is(err, entities.ErrValidation))

	_, err = svc.Register(context.Background(), ports.RegisterRequest{Password: "pw"})
	assert.True(t, errors.Is(err, entities.ErrValidation))
}

func TestAuthServiceRegisterPasswordLength(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	_, err := svc.Register(ctx, ports.RegisterRequest{Username: "alice", Password: strings.Repeat("a", 73)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, entities.ErrValidation))
	assert.Contains(t, err.Error(), "at most 72 bytes")

	// multi-byte runes count by bytes
	_, err = svc.Register(ctx, ports.RegisterRequest{Username: "alice", Password: strings.Repeat("é", 37)})
	assert.True(t, errors.Is(err, entities.ErrValidation))

	resp, err := svc.Register(ctx, ports.RegisterRequest{Username: "alice", Password: strings.Repeat("a", 72)})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Username)

	_, err = svc.Login(ctx, ports.LoginRequest{Username: "alice", Password: strings.Repeat("a", 72)})
	assert.NoError(t, err)
}

func TestAuthServiceLogin(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	registered, err := svc.Register(ctx, ports.RegisterRequest{Username: "alice", Password: "pw123"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, ports.LoginRequest{Username: "alice", Password: "pw123"})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Username)

	first, err := svc.ValidateToken(registered.AccessToken)
	require.NoError(t, err)
	second, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, first.UserID, second.UserID)

	_, err = svc.Login(ctx, ports.LoginRequest{Username: "alice", Password: "wrong"})
	assert.True(t, errors.Is(err, entities.ErrInvalidCredentials))

	_, err = svc.Login(ctx, ports.LoginRequest{Username: "nobody", Password: "pw123"})
	assert.True(t, errors.Is(err, entities.ErrInvalidCredentials))
}

func TestAuthServiceValidateToken(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	resp, err := svc.Register(ctx, ports.RegisterRequest{Username: "alice", Password: "pw123"})
	require.NoError(t, err)

	t.Run("missing", func(t *testing.T) {
		_, err := svc.ValidateToken("")
		assert.True(t, errors.Is(err, entities.ErrUnauthenticated))
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.jwt")
		assert.True(t, errors.Is(err, entities.ErrUnauthenticated))
	})

	t.Run("bad signature", func(t *testing.T) {
		other := NewAuthService(memory.NewStore().Repositories().Users, config.JWTConfig{
			Secret: "another-secret", ExpiresIn: time.Hour, Issuer: "todo-test",
		}, logger.NewNop())
		_, err := other.ValidateToken(resp.AccessToken)
		assert.True(t, errors.Is(err, entities.ErrUnauthenticated))
	})

	t.Run("expired", func(t *testing.T) {
		svc.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
		defer func() { svc.now = time.Now }()

		_, err := svc.ValidateToken(resp.AccessToken)
		assert.True(t, errors.Is(err, entities.ErrUnauthenticated))
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			UserID: "someone",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "todo-test",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ValidateToken(unsigned)
		assert.True(t, errors.Is(err, entities.ErrUnauthenticated))
	})
}
