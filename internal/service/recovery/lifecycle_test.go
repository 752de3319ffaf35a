package recovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheusdealcantara/tabnews.com.br/internal/apperrors"
	"github.com/matheusdealcantara/tabnews.com.br/internal/models"
)

// In memory token repository, newest token is the last one
type memTokens struct {
	tokens  []models.RecoveryToken
	now     func() time.Time
	created int
	err     error
}

func (m *memTokens) Create(_ context.Context, userID uuid.UUID, ttl time.Duration) (models.RecoveryToken, error) {
	if m.err != nil {
		return models.RecoveryToken{}, m.err
	}
	t := models.NewRecoveryToken(userID, m.now(), ttl)
	m.tokens = append(m.tokens, t)
	m.created++
	return t, nil
}

func (m *memTokens) FindOneValidByUserID(_ context.Context, userID uuid.UUID) (models.RecoveryToken, error) {
	if m.err != nil {
		return models.RecoveryToken{}, m.err
	}
	for i := len(m.tokens) - 1; i >= 0; i-- {
		if t := m.tokens[i]; t.UserID == userID && t.IsValid(m.now()) {
			return t, nil
		}
	}
	return models.RecoveryToken{}, apperrors.ErrRecoveryTokenNotFound
}

func TestEngine_Issue(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	user := models.User{ID: uuid.New(), Username: "Recuperando", Email: "recuperando@example.com"}

	newEngine := func() (*Engine, *memTokens) {
		tokens := &memTokens{now: clock}
		return NewEngine(Config{TTL: 15 * time.Minute, Now: clock}, tokens), tokens
	}

	t.Run("active user without token gets new one", func(t *testing.T) {
		engine, tokens := newEngine()

		got, err := engine.Issue(t.Context(), ActiveUser{User: user})

		require.NoError(t, err)
		require.True(t, got.ShouldNotify)
		require.Equal(t, user.ID, got.Token.UserID)
		require.Equal(t, 1, tokens.created)
	})

	t.Run("active user with valid token reuses it", func(t *testing.T) {
		engine, tokens := newEngine()
		first, err := engine.Issue(t.Context(), ActiveUser{User: user})
		require.NoError(t, err)

		second, err := engine.Issue(t.Context(), ActiveUser{User: user})

		require.NoError(t, err)
		require.False(t, second.ShouldNotify)
		require.Equal(t, first.Token.ID, second.Token.ID)
		require.Equal(t, 1, tokens.created)
	})

	t.Run("new token after previous used or expired", func(t *testing.T) {
		engine, tokens := newEngine()
		first, err := engine.Issue(t.Context(), ActiveUser{User: user})
		require.NoError(t, err)
		tokens.tokens[0].Used = true

		second, err := engine.Issue(t.Context(), ActiveUser{User: user})
		require.NoError(t, err)
		tokens.tokens[1].ExpiresAt = now.Add(-time.Second)

		third, err := engine.Issue(t.Context(), ActiveUser{User: user})
		require.NoError(t, err)

		require.True(t, second.ShouldNotify)
		require.True(t, third.ShouldNotify)
		require.NotEqual(t, first.Token.ID, second.Token.ID)
		require.NotEqual(t, second.Token.ID, third.Token.ID)
		require.Equal(t, 3, tokens.created)
	})

	t.Run("newest of several valid tokens reused", func(t *testing.T) {
		engine, tokens := newEngine()
		_, err := tokens.Create(t.Context(), user.ID, time.Minute)
		require.NoError(t, err)
		newest, err := tokens.Create(t.Context(), user.ID, time.Minute)
		require.NoError(t, err)

		got, err := engine.Issue(t.Context(), ActiveUser{User: user})

		require.NoError(t, err)
		require.False(t, got.ShouldNotify)
		require.Equal(t, newest.ID, got.Token.ID)
	})

	t.Run("targets without active user get ephemeral token", func(t *testing.T) {
		targets := map[string]Target{
			"nuked":   NukedUser{User: user},
			"no user": NoSuchUser{},
		}

		for name, target := range targets {
			t.Run(name, func(t *testing.T) {
				engine, tokens := newEngine()

				got, err := engine.Issue(t.Context(), target)

				require.NoError(t, err)
				assert.False(t, got.ShouldNotify)
				assert.Equal(t, 0, tokens.created, "ephemeral token must not be stored")
				assert.False(t, got.Token.Used)
				assert.Equal(t, now, got.Token.CreatedAt)
				assert.Equal(t, now, got.Token.UpdatedAt)
				assert.Equal(t, now.Add(15*time.Minute), got.Token.ExpiresAt)
			})
		}
	})

	t.Run("stored and ephemeral tokens share ttl and precision", func(t *testing.T) {
		precise := time.Date(2025, 3, 1, 7, 0, 0, 123456789, time.FixedZone("BRT", -3*60*60))
		preciseClock := func() time.Time { return precise }
		tokens := &memTokens{now: preciseClock}
		engine := NewEngine(Config{TTL: 42 * time.Minute, Now: preciseClock}, tokens)

		stored, err := engine.Issue(t.Context(), ActiveUser{User: user})
		require.NoError(t, err)
		unknown, err := engine.Issue(t.Context(), NoSuchUser{})
		require.NoError(t, err)
		nuked, err := engine.Issue(t.Context(), NukedUser{User: user})
		require.NoError(t, err)

		expected := time.Date(2025, 3, 1, 10, 0, 0, 123456000, time.UTC)
		for _, issued := range []Issue{stored, unknown, nuked} {
			assert.Equal(t, expected, issued.Token.CreatedAt)
			assert.Equal(t, expected, issued.Token.UpdatedAt)
			assert.Equal(t, expected.Add(42*time.Minute), issued.Token.ExpiresAt)
		}
	})

	t.Run("default ttl", func(t *testing.T) {
		engine := NewEngine(Config{Now: clock}, &memTokens{now: clock})

		ephemeral, err := engine.Issue(t.Context(), NoSuchUser{})
		require.NoError(t, err)
		stored, err := engine.Issue(t.Context(), ActiveUser{User: user})
		require.NoError(t, err)

		require.Equal(t, DefaultTTL, ephemeral.Token.ExpiresAt.Sub(ephemeral.Token.CreatedAt))
		require.Equal(t, DefaultTTL, stored.Token.ExpiresAt.Sub(stored.Token.CreatedAt))
	})

	t.Run("storage error", func(t *testing.T) {
		engine, tokens := newEngine()
		tokens.err = errors.New("connection reset")

		_, err := engine.Issue(t.Context(), ActiveUser{User: user})

		require.Error(t, err)
		require.Contains(t, err.Error(), "connection reset")
	})

	t.Run("storage error on create", func(t *testing.T) {
		engine := NewEngine(Config{Now: clock}, &createFails{memTokens: memTokens{now: clock}})

		_, err := engine.Issue(t.Context(), ActiveUser{User: user})

		require.ErrorIs(t, err, apperrors.ErrStorage)
	})
}

type createFails struct {
	memTokens
}

func (c *createFails) Create(context.Context, uuid.UUID, time.Duration) (models.RecoveryToken, error) {
	return models.RecoveryToken{}, apperrors.ErrStorage
}
