package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/matheusdealcantara/tabnews.com.br/internal/apperrors"
	"github.com/matheusdealcantara/tabnews.com.br/internal/models"
)

type SessionRepo struct {
	DB DBTX
}

const sessionColumns = `id, token, user_id, expires_at, created_at, updated_at`

const createSession = `-- name: CreateSession
INSERT INTO sessions (id, token, user_id, expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
RETURNING ` + sessionColumns

func (r *SessionRepo) Create(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (models.Session, error) {
	rows, _ := r.DB.Query(ctx, createSession, uuid.New(), token, userID, expiresAt, dbNow(time.Now))
	session, err := pgx.CollectOneRow(rows, rowToSession)
	if err != nil {
		return session, fmt.Errorf("db error: %w", err)
	}

	return session, nil
}

const getValidSession = `-- name: GetValidSessionByToken
SELECT ` + sessionColumns + `
FROM sessions
WHERE token = $1 AND expires_at > $2
LIMIT 1
`

func (r *SessionRepo) GetValidByToken(ctx context.Context, token string, now time.Time) (models.Session, error) {
	rows, _ := r.DB.Query(ctx, getValidSession, token, now)
	session, err := pgx.CollectOneRow(rows, rowToSession)

	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, pgx.ErrNoRows):
		return session, fmt.Errorf("repo error: %w", apperrors.ErrSessionNotFound)
	default:
		return session, fmt.Errorf("db error: %w", err)
	}
}

func rowToSession(row pgx.CollectableRow) (models.Session, error) {
	var s models.Session
	err := row.Scan(&s.ID, &s.Token, &s.UserID, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}
