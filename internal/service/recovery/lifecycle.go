package recovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matheusdealcantara/tabnews.com.br/internal/apperrors"
	"github.com/matheusdealcantara/tabnews.com.br/internal/models"
)

const DefaultTTL = 15 * time.Minute

type Config struct {
	// Lifetime of tokens, both stored and ephemeral ones
	TTL time.Duration

	// time.Now if nil
	Now func() time.Time
}

type tokenRepo interface {
	Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (models.RecoveryToken, error)
	FindOneValidByUserID(ctx context.Context, userID uuid.UUID) (models.RecoveryToken, error)
}

// Issued token and whether user has to be emailed about it
type Issue struct {
	Token        models.RecoveryToken
	ShouldNotify bool
}

// Engine reuses the valid token of user or mints a new one
//
// Lookup and creation are not atomic: two concurrent requests may both create a token
// and both send email. Both tokens stay valid, which is tolerated.
type Engine struct {
	tokens tokenRepo
	ttl    time.Duration
	now    func() time.Time
}

func NewEngine(cfg Config, tokens tokenRepo) *Engine {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Engine{tokens: tokens, ttl: cfg.TTL, now: cfg.Now}
}

func (e *Engine) Issue(ctx context.Context, target Target) (Issue, error) {
	switch t := target.(type) {
	case ActiveUser:
		return e.reuseOrCreate(ctx, t.User.ID)
	case NukedUser:
		return Issue{Token: e.ephemeral(t.User.ID)}, nil
	case NoSuchUser:
		return Issue{Token: e.ephemeral(uuid.Nil)}, nil
	default:
		return Issue{}, fmt.Errorf("unknown recovery target %T", target)
	}
}

func (e *Engine) reuseOrCreate(ctx context.Context, userID uuid.UUID) (Issue, error) {
	token, err := e.tokens.FindOneValidByUserID(ctx, userID)

	switch {
	case err == nil:
		return Issue{Token: token, ShouldNotify: false}, nil
	case !errors.Is(err, apperrors.ErrRecoveryTokenNotFound):
		return Issue{}, fmt.Errorf("looking up valid token: %w", err)
	}

	token, err = e.tokens.Create(ctx, userID, e.ttl)
	if err != nil {
		return Issue{}, fmt.Errorf("creating token: %w", err)
	}

	return Issue{Token: token, ShouldNotify: true}, nil
}

// ephemeral token is never stored, it only shapes response
func (e *Engine) ephemeral(userID uuid.UUID) models.RecoveryToken {
	return models.NewRecoveryToken(userID, e.now(), e.ttl)
}
