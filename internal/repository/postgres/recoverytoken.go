package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/matheusdealcantara/tabnews.com.br/internal/apperrors"
	"github.com/matheusdealcantara/tabnews.com.br/internal/models"
)

type RecoveryTokenRepo struct {
	DB  DBTX
	Now func() time.Time
}

const recoveryTokenColumns = `id, user_id, used, expires_at, created_at, updated_at`

const createRecoveryToken = `-- name: CreateRecoveryToken
INSERT INTO user_recovery_tokens (id, user_id, used, expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + recoveryTokenColumns

func (r *RecoveryTokenRepo) Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (models.RecoveryToken, error) {
	if ttl <= 0 {
		return models.RecoveryToken{}, fmt.Errorf("recovery token ttl must be positive, got %s", ttl)
	}
	t := models.NewRecoveryToken(userID, dbNow(r.Now), ttl)

	rows, _ := r.DB.Query(ctx, createRecoveryToken, t.ID, t.UserID, t.Used, t.ExpiresAt, t.CreatedAt, t.UpdatedAt)
	token, err := pgx.CollectOneRow(rows, rowToRecoveryToken)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return token, fmt.Errorf("repo error: %w: %w", apperrors.ErrStorage, err)
		}

		return token, fmt.Errorf("db error: %w", err)
	}

	return token, nil
}

const findValidRecoveryToken = `-- name: FindOneValidRecoveryTokenByUserID
SELECT ` + recoveryTokenColumns + `
FROM user_recovery_tokens
WHERE user_id = $1 AND used = FALSE AND expires_at > $2
ORDER BY created_at DESC, id DESC
LIMIT 1
`

func (r *RecoveryTokenRepo) FindOneValidByUserID(ctx context.Context, userID uuid.UUID) (models.RecoveryToken, error) {
	return r.getOne(ctx, findValidRecoveryToken, userID, dbNow(r.Now))
}

const findRecoveryTokenByUserID = `-- name: FindOneRecoveryTokenByUserID
SELECT ` + recoveryTokenColumns + `
FROM user_recovery_tokens
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT 1
`

func (r *RecoveryTokenRepo) FindOneByUserID(ctx context.Context, userID uuid.UUID) (models.RecoveryToken, error) {
	return r.getOne(ctx, findRecoveryTokenByUserID, userID)
}

const findRecoveryTokenByID = `-- name: FindOneRecoveryTokenByID
SELECT ` + recoveryTokenColumns + `
FROM user_recovery_tokens
WHERE id = $1
`

func (r *RecoveryTokenRepo) FindOneByID(ctx context.Context, id uuid.UUID) (models.RecoveryToken, error) {
	return r.getOne(ctx, findRecoveryTokenByID, id)
}

// Params are cast explicitly: NULL means 'keep current value'
const updateRecoveryToken = `-- name: UpdateRecoveryToken
UPDATE user_recovery_tokens
SET
    used       = COALESCE($2::boolean, used),
    expires_at = COALESCE($3::timestamptz, expires_at),
    created_at = COALESCE($4::timestamptz, created_at),
    updated_at = COALESCE($5::timestamptz, $6::timestamptz)
WHERE id = $1
RETURNING ` + recoveryTokenColumns

func (r *RecoveryTokenRepo) Update(ctx context.Context, id uuid.UUID, patch models.RecoveryTokenPatch) (models.RecoveryToken, error) {
	return r.getOne(ctx, updateRecoveryToken, id, patch.Used, patch.ExpiresAt, patch.CreatedAt, patch.UpdatedAt, dbNow(r.Now))
}

func (r *RecoveryTokenRepo) getOne(ctx context.Context, query string, args ...any) (models.RecoveryToken, error) {
	rows, _ := r.DB.Query(ctx, query, args...)
	token, err := pgx.CollectOneRow(rows, rowToRecoveryToken)

	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, pgx.ErrNoRows):
		return token, fmt.Errorf("repo error: %w", apperrors.ErrRecoveryTokenNotFound)
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}

// pgx scans timestamptz in local zone, tokens always leave the repo in UTC
func rowToRecoveryToken(row pgx.CollectableRow) (models.RecoveryToken, error) {
	var t models.RecoveryToken
	err := row.Scan(&t.ID, &t.UserID, &t.Used, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt)

	t.ExpiresAt = t.ExpiresAt.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, err
}
