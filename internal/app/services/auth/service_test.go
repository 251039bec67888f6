package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "gearshare/internal/domain/auth"
	domainuser "gearshare/internal/domain/user"
	"gearshare/internal/infra/security"
	"gearshare/internal/infra/storage/memory"
)

func newService() *Service {
	return &Service{
		Users:     memory.NewUserRepository(),
		Sessions:  memory.NewSessionStore(),
		Passwords: security.BcryptHasher{},
		Tokens:    security.RandomTokenGenerator{},
	}
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and issues a session", func(t *testing.T) {
		s := newService()
		res, err := s.Register(ctx, RegisterParams{Email: " Dana@Example.COM ", Name: "Dana", Password: "correct horse"})
		require.NoError(t, err)
		assert.Equal(t, "dana@example.com", res.User.Email)
		require.NotEmpty(t, res.Token)

		resolved, err := s.ResolveToken(ctx, res.Token)
		require.NoError(t, err)
		assert.Equal(t, res.User.ID, resolved.User.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		s := newService()
		_, err := s.Register(ctx, RegisterParams{Email: "dana@example.com", Name: "Dana", Password: "correct horse"})
		require.NoError(t, err)
		_, err = s.Register(ctx, RegisterParams{Email: "DANA@example.com", Name: "Other", Password: "correct horse"})
		assert.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)
	})

	t.Run("short password", func(t *testing.T) {
		s := newService()
		_, err := s.Register(ctx, RegisterParams{Email: "dana@example.com", Name: "Dana", Password: "short"})
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("name required", func(t *testing.T) {
		s := newService()
		_, err := s.Register(ctx, RegisterParams{Email: "dana@example.com", Name: "  ", Password: "correct horse"})
		assert.ErrorIs(t, err, domainuser.ErrNameRequired)
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	register := func(t *testing.T, s *Service) *domainuser.User {
		t.Helper()
		res, err := s.Register(ctx, RegisterParams{Email: "dana@example.com", Name: "Dana", Password: "correct horse"})
		require.NoError(t, err)
		return res.User
	}

	t.Run("valid credentials", func(t *testing.T) {
		s := newService()
		register(t, s)
		res, err := s.Login(ctx, LoginParams{Email: "dana@example.com", Password: "correct horse"})
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		s := newService()
		register(t, s)
		_, err := s.Login(ctx, LoginParams{Email: "dana@example.com", Password: "wrong horse"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email reads the same as wrong password", func(t *testing.T) {
		s := newService()
		_, err := s.Login(ctx, LoginParams{Email: "nobody@example.com", Password: "correct horse"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("blocked user", func(t *testing.T) {
		s := newService()
		u := register(t, s)
		u.Blocked = true
		require.NoError(t, s.Users.Save(ctx, u))
		_, err := s.Login(ctx, LoginParams{Email: "dana@example.com", Password: "correct horse"})
		assert.ErrorIs(t, err, ErrUserBlocked)
	})
}

func TestService_Sessions(t *testing.T) {
	ctx := context.Background()

	t.Run("logout invalidates the token", func(t *testing.T) {
		s := newService()
		res, err := s.Register(ctx, RegisterParams{Email: "dana@example.com", Name: "Dana", Password: "correct horse"})
		require.NoError(t, err)

		require.NoError(t, s.Logout(ctx, res.Token))
		_, err = s.ResolveToken(ctx, res.Token)
		assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
	})

	t.Run("expired session is rejected and purged", func(t *testing.T) {
		s := newService()
		s.SessionTTL = time.Nanosecond
		res, err := s.Register(ctx, RegisterParams{Email: "dana@example.com", Name: "Dana", Password: "correct horse"})
		require.NoError(t, err)

		time.Sleep(time.Millisecond)
		_, err = s.ResolveToken(ctx, res.Token)
		assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
	})

	t.Run("empty token", func(t *testing.T) {
		s := newService()
		_, err := s.ResolveToken(ctx, "  ")
		assert.ErrorIs(t, err, domainauth.ErrTokenRequired)
	})
}
