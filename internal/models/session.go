package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is a login session, the cookie carries Token as is
type Session struct {
	ID        uuid.UUID
	Token     string
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
