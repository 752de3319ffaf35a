package models

import (
	"time"

	"github.com/google/uuid"
)

type RecoveryToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Used      bool
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRecoveryToken builds unused token that expires after ttl
// Persisted and ephemeral tokens both come from here, so ExpiresAt is always after CreatedAt for positive ttl.
// Timestamps are UTC with microsecond precision, the most postgres keeps
func NewRecoveryToken(userID uuid.UUID, now time.Time, ttl time.Duration) RecoveryToken {
	now = now.UTC().Truncate(time.Microsecond)

	return RecoveryToken{
		ID:        uuid.New(),
		UserID:    userID,
		Used:      false,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsValid means the token may still be used to recover the account
func (t RecoveryToken) IsValid(now time.Time) bool {
	return !t.Used && t.ExpiresAt.After(now)
}

// Partial update of token, nil fields are left untouched
type RecoveryTokenPatch struct {
	Used      *bool
	ExpiresAt *time.Time
	CreatedAt *time.Time
	UpdatedAt *time.Time
}
