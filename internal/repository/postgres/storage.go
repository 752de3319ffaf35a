package postgres

import (
	"time"

	"github.com/matheusdealcantara/tabnews.com.br/internal/repository"
)

type Config struct {
	// Clock used to stamp rows and to check expiration. time.Now if nil
	Now func() time.Time
}

var _ repository.Storage = (*Storage)(nil)

type Storage struct {
	db  DBTX
	cfg Config
}

func NewStorage(db DBTX, cfg Config) *Storage {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Storage{db: db, cfg: cfg}
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{DB: s.db, Now: s.cfg.Now}
}

func (s *Storage) Session() repository.SessionRepo {
	return &SessionRepo{DB: s.db}
}

func (s *Storage) RecoveryToken() repository.RecoveryTokenRepo {
	return &RecoveryTokenRepo{DB: s.db, Now: s.cfg.Now}
}

// Postgres keeps microseconds only, so round here to get back exactly what was written
func dbNow(now func() time.Time) time.Time {
	if now == nil {
		now = time.Now
	}
	return now().UTC().Truncate(time.Microsecond)
}
