package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matheusdealcantara/tabnews.com.br/internal/models"
)

// User repository interface
// Username and email lookups are case-insensitive
type UserRepo interface {
	// Create user
	// If user with username or email exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, user models.User) (models.User, error)

	// Get user by it's id, username or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Replace user features
	SetFeatures(ctx context.Context, userID uuid.UUID, features []string) (models.User, error)
}

// Session repository interface
type SessionRepo interface {
	Create(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (models.Session, error)

	// Return session only if it is not expired at 'now'
	// Otherwise must return apperrors.ErrSessionNotFound
	GetValidByToken(ctx context.Context, token string, now time.Time) (models.Session, error)
}

// RecoveryToken repository interface
type RecoveryTokenRepo interface {
	// Create unused token for user, expiring after ttl
	// If user does not exist must return error wrapping apperrors.ErrStorage
	Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (models.RecoveryToken, error)

	// Return most recently created token that is not used and not expired
	// If there is no such token must return apperrors.ErrRecoveryTokenNotFound
	FindOneValidByUserID(ctx context.Context, userID uuid.UUID) (models.RecoveryToken, error)

	// Return most recently created token whatever its state
	// If user has no tokens must return apperrors.ErrRecoveryTokenNotFound
	FindOneByUserID(ctx context.Context, userID uuid.UUID) (models.RecoveryToken, error)

	FindOneByID(ctx context.Context, id uuid.UUID) (models.RecoveryToken, error)

	// Apply patch to token. UpdatedAt is bumped to now unless patch sets it
	// If token not found must return apperrors.ErrRecoveryTokenNotFound
	Update(ctx context.Context, id uuid.UUID, patch models.RecoveryTokenPatch) (models.RecoveryToken, error)
}

// Storage gives access to all repositories over the same connection
type Storage interface {
	User() UserRepo
	Session() SessionRepo
	RecoveryToken() RecoveryTokenRepo
}
