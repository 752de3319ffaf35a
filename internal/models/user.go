package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Feature flags stored on the user row
const (
	FeatureNuked                       = "nuked"
	FeatureCreateRecoveryTokenUsername = "create:recovery_token:username"
)

type User struct {
	ID        uuid.UUID
	Username  string
	Email     string
	Features  []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Can reports whether the user holds the feature
func (u User) Can(feature string) bool {
	return slices.Contains(u.Features, feature)
}

func (u User) IsNuked() bool {
	return u.Can(FeatureNuked)
}
