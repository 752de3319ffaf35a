// Package fixtures creates rows tests depend on through production repositories
package fixtures

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/matheusdealcantara/tabnews.com.br/internal/models"
	"github.com/matheusdealcantara/tabnews.com.br/internal/repository/postgres"
	"github.com/matheusdealcantara/tabnews.com.br/internal/service/recovery"
)

type Fixtures struct {
	t       *testing.T
	storage *postgres.Storage
}

func New(t *testing.T, db postgres.DBTX) *Fixtures {
	return &Fixtures{t: t, storage: postgres.NewStorage(db, postgres.Config{})}
}

type UserOption func(*models.User)

func WithUsername(username string) UserOption {
	return func(u *models.User) { u.Username = username }
}

func WithEmail(email string) UserOption {
	return func(u *models.User) { u.Email = email }
}

func WithFeatures(features ...string) UserOption {
	return func(u *models.User) { u.Features = append(u.Features, features...) }
}

func Nuked() UserOption {
	return WithFeatures(models.FeatureNuked)
}

// User with random username and email unless options set them
func (f *Fixtures) User(opts ...UserOption) models.User {
	f.t.Helper()

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	u := models.User{
		Username: "user" + suffix,
		Email:    "user" + suffix + "@example.com",
	}
	for _, opt := range opts {
		opt(&u)
	}

	created, err := f.storage.User().CreateUser(f.t.Context(), u)
	require.NoError(f.t, err, "fixture user should be created")
	return created
}

// Session that stays valid for an hour
func (f *Fixtures) Session(user models.User) models.Session {
	f.t.Helper()

	b := make([]byte, 48)
	_, err := rand.Read(b)
	require.NoError(f.t, err)

	session, err := f.storage.Session().Create(f.t.Context(), user.ID, hex.EncodeToString(b), time.Now().Add(time.Hour))
	require.NoError(f.t, err, "fixture session should be created")
	return session
}

// Recovery token with the default lifetime of the recovery engine
func (f *Fixtures) RecoveryToken(user models.User) models.RecoveryToken {
	f.t.Helper()

	token, err := f.storage.RecoveryToken().Create(f.t.Context(), user.ID, recovery.DefaultTTL)
	require.NoError(f.t, err, "fixture recovery token should be created")
	return token
}

// Newest recovery token of user, valid or not
func (f *Fixtures) LastRecoveryToken(user models.User) models.RecoveryToken {
	f.t.Helper()

	token, err := f.storage.RecoveryToken().FindOneByUserID(f.t.Context(), user.ID)
	require.NoError(f.t, err, "user should have recovery token")
	return token
}

func (f *Fixtures) UpdateRecoveryToken(id uuid.UUID, patch models.RecoveryTokenPatch) models.RecoveryToken {
	f.t.Helper()

	token, err := f.storage.RecoveryToken().Update(f.t.Context(), id, patch)
	require.NoError(f.t, err, "recovery token should be updated")
	return token
}
