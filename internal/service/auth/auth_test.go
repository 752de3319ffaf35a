package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/matheusdealcantara/tabnews.com.br/internal/apperrors"
	"github.com/matheusdealcantara/tabnews.com.br/internal/models"
	"github.com/matheusdealcantara/tabnews.com.br/internal/repository/postgres"
	"github.com/matheusdealcantara/tabnews.com.br/internal/testutil"
)

func TestAuthService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	withService := func(t *testing.T, fn func(s *AuthService, user models.User)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			users := &postgres.UserRepo{DB: tx}
			user, err := users.CreateUser(t.Context(), models.User{
				Username: "Logado",
				Email:    "logado@example.com",
				Features: []string{models.FeatureCreateRecoveryTokenUsername},
			})
			require.NoError(t, err)

			s, err := NewService(Config{}, &postgres.SessionRepo{DB: tx}, users)
			require.NoError(t, err)

			fn(s, user)
		})
	}

	t.Run("default config", func(t *testing.T) {
		withService(t, func(s *AuthService, _ models.User) {
			require.Equal(t, defaultSessionTTL, s.sessionTTL)
			require.Equal(t, "session_id", s.cookieName)
		})
	})

	t.Run("no cookie is anonymous", func(t *testing.T) {
		withService(t, func(s *AuthService, _ models.User) {
			r := httptest.NewRequest(http.MethodPost, "/api/v1/recovery", nil)

			got, err := s.Auth(t.Context(), r)

			require.NoError(t, err)
			require.Equal(t, Anonymous(), got)
			require.False(t, got.Can(models.FeatureCreateRecoveryTokenUsername))
		})
	})

	t.Run("valid session resolves user", func(t *testing.T) {
		withService(t, func(s *AuthService, user models.User) {
			session, err := s.CreateSession(t.Context(), user.ID)
			require.NoError(t, err)
			require.Len(t, session.Token, 96)
			r := httptest.NewRequest(http.MethodPost, "/api/v1/recovery", nil)
			r.AddCookie(s.Cookie(session))

			got, err := s.Auth(t.Context(), r)

			require.NoError(t, err)
			require.Equal(t, user.ID, got.ID)
			require.True(t, got.Can(models.FeatureCreateRecoveryTokenUsername))
		})
	})

	t.Run("unknown session is unauthorized", func(t *testing.T) {
		withService(t, func(s *AuthService, _ models.User) {
			r := httptest.NewRequest(http.MethodPost, "/api/v1/recovery", nil)
			r.AddCookie(&http.Cookie{Name: "session_id", Value: "not-a-session"})

			_, err := s.Auth(t.Context(), r)

			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			require.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
			require.Equal(t, LocationSessionNotFound, appErr.ErrorLocationCode)
		})
	})

	t.Run("expired session is unauthorized", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			users := &postgres.UserRepo{DB: tx}
			user, err := users.CreateUser(t.Context(), models.User{Username: "Expirado", Email: "expirado@example.com"})
			require.NoError(t, err)

			past := time.Now().Add(-time.Hour)
			s, err := NewService(Config{Now: func() time.Time { return past }, SessionTTL: time.Minute}, &postgres.SessionRepo{DB: tx}, users)
			require.NoError(t, err)
			session, err := s.CreateSession(t.Context(), user.ID)
			require.NoError(t, err)

			s.now = time.Now
			r := httptest.NewRequest(http.MethodPost, "/api/v1/recovery", nil)
			r.AddCookie(s.Cookie(session))

			_, err = s.Auth(t.Context(), r)

			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			require.Equal(t, apperrors.UnauthorizedErrorName, appErr.Name)
		})
	})

	t.Run("clear cookie", func(t *testing.T) {
		withService(t, func(s *AuthService, _ models.User) {
			w := httptest.NewRecorder()

			s.ClearCookie(w)

			cookies := w.Result().Cookies()
			require.Len(t, cookies, 1)
			require.Equal(t, "session_id", cookies[0].Name)
			require.Equal(t, -1, cookies[0].MaxAge)
		})
	})
}

func TestNewService(t *testing.T) {
	_, err := NewService(Config{}, nil, nil)

	require.Error(t, err)
}
