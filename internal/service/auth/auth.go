package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/matheusdealcantara/tabnews.com.br/internal/apperrors"
	"github.com/matheusdealcantara/tabnews.com.br/internal/models"
)

const (
	defaultSessionTTL        = 30 * 24 * time.Hour
	defaultSessionCookieName = "session_id"

	// 48 random bytes, 96 hex chars
	sessionTokenBytes = 48
)

const (
	LocationSessionNotFound = "MODEL:SESSION:FIND_ONE_VALID_BY_TOKEN:NOT_FOUND"
	LocationSessionStorage  = "MODEL:SESSION:FIND_ONE_VALID_BY_TOKEN:STORAGE"
)

// Features of caller without session
var anonymousFeatures = []string{
	"read:activation_token",
	"create:session",
	"create:user",
	"read:content",
	"read:user",
}

type sessionRepo interface {
	Create(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (models.Session, error)
	GetValidByToken(ctx context.Context, token string, now time.Time) (models.Session, error)
}

type userRepo interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
}

type Config struct {
	// Lifetime of created sessions
	SessionTTL time.Duration

	CookieName string

	// time.Now if nil
	Now func() time.Time
}

// AuthService resolves caller of request from session cookie
type AuthService struct {
	sessions sessionRepo
	users    userRepo

	sessionTTL time.Duration
	cookieName string
	now        func() time.Time
}

func NewService(cfg Config, sessions sessionRepo, users userRepo) (*AuthService, error) {
	if sessions == nil || users == nil {
		return nil, errors.New("repos must not be nil")
	}

	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaultSessionCookieName
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &AuthService{
		sessions:   sessions,
		users:      users,
		sessionTTL: cfg.SessionTTL,
		cookieName: cfg.CookieName,
		now:        cfg.Now,
	}, nil
}

// Anonymous is the caller of request without session
func Anonymous() models.User {
	return models.User{Features: append([]string(nil), anonymousFeatures...)}
}

// Auth returns session owner, or anonymous user when request has no session cookie
// Cookie that does not resolve to live session is UnauthorizedError
func (s *AuthService) Auth(ctx context.Context, r *http.Request) (models.User, error) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return Anonymous(), nil
	}

	session, err := s.sessions.GetValidByToken(ctx, cookie.Value, s.now())
	switch {
	case errors.Is(err, apperrors.ErrSessionNotFound):
		return models.User{}, unauthorized()
	case err != nil:
		return models.User{}, apperrors.NewInternalServerError(err, LocationSessionStorage)
	}

	user, err := s.users.GetUserByID(ctx, session.UserID)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.User{}, unauthorized()
	case err != nil:
		return models.User{}, apperrors.NewInternalServerError(err, LocationSessionStorage)
	}

	return user, nil
}

// CreateSession opens session for user
func (s *AuthService) CreateSession(ctx context.Context, userID uuid.UUID) (models.Session, error) {
	token, err := newSessionToken()
	if err != nil {
		return models.Session{}, err
	}

	session, err := s.sessions.Create(ctx, userID, token, s.now().Add(s.sessionTTL))
	if err != nil {
		return models.Session{}, fmt.Errorf("can't create session: %w", err)
	}

	return session, nil
}

// ClearCookie asks client to drop session cookie
func (s *AuthService) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Cookie that authenticates request as session owner
func (s *AuthService) Cookie(session models.Session) *http.Cookie {
	return &http.Cookie{Name: s.cookieName, Value: session.Token}
}

func unauthorized() error {
	return apperrors.NewUnauthorizedError(
		"Usuário não possui sessão ativa.",
		"Verifique se este usuário está logado.",
		LocationSessionNotFound,
	)
}

func newSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("error while generating session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
