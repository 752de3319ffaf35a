package recovery

import (
	"context"
	"errors"
	"fmt"

	"github.com/matheusdealcantara/tabnews.com.br/internal/apperrors"
	"github.com/matheusdealcantara/tabnews.com.br/internal/logger"
	"github.com/matheusdealcantara/tabnews.com.br/internal/metrics"
	"github.com/matheusdealcantara/tabnews.com.br/internal/models"
)

// Lookup modes, used as metric label
const (
	ModeUsername = "username"
	ModeEmail    = "email"
)

const (
	LocationForbidden        = "CONTROLLER:RECOVERY:POST_HANDLER:CAN_NOT_CREATE_RECOVERY_TOKEN_USERNAME"
	LocationUsernameNotFound = "MODEL:USER:FIND_ONE_BY_USERNAME:NOT_FOUND"
	LocationFindUser         = "MODEL:USER:FIND_ONE:STORAGE"
	LocationIssueToken       = "MODEL:RECOVERY:CREATE_AND_SEND_RECOVERY_EMAIL:STORAGE"
)

type userRepo interface {
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

type notifier interface {
	SendRecoveryEmail(ctx context.Context, user models.User, token models.RecoveryToken)
}

// Input carries exactly one of Username or Email, already validated
type Input struct {
	Username string
	Email    string
}

type Service struct {
	users    userRepo
	engine   *Engine
	notifier notifier
	log      logger.Logger
	metrics  *metrics.Recorder
}

func NewService(users userRepo, engine *Engine, n notifier, l logger.Logger, m *metrics.Recorder) (*Service, error) {
	if users == nil || engine == nil || n == nil || l == nil {
		return nil, errors.New("users, engine, notifier and logger must not be nil")
	}

	return &Service{
		users:    users,
		engine:   engine,
		notifier: n,
		log:      l.WithGroup("recovery"),
		metrics:  m,
	}, nil
}

// Request issues recovery token on behalf of caller
//
// Email lookups always succeed so they tell nothing about registered addresses.
// Username lookups need the create:recovery_token:username feature, and answer
// the same NotFoundError for absent and nuked users.
func (s *Service) Request(ctx context.Context, caller models.User, in Input) (models.RecoveryToken, error) {
	if in.Username != "" {
		return s.byUsername(ctx, caller, in.Username)
	}
	return s.byEmail(ctx, in.Email)
}

func (s *Service) byUsername(ctx context.Context, caller models.User, username string) (models.RecoveryToken, error) {
	if !caller.Can(models.FeatureCreateRecoveryTokenUsername) {
		s.metrics.RecoveryRequested(ModeUsername, metrics.OutcomeForbidden)
		return models.RecoveryToken{}, apperrors.NewForbiddenError(
			"Você não possui permissão para executar esta ação.",
			fmt.Sprintf(`Verifique se este usuário possui a feature "%s".`, models.FeatureCreateRecoveryTokenUsername),
			LocationForbidden,
		)
	}

	target, err := s.resolve(ctx, s.users.GetUserByUsername, username)
	if err != nil {
		s.metrics.RecoveryRequested(ModeUsername, metrics.OutcomeError)
		return models.RecoveryToken{}, err
	}

	switch t := target.(type) {
	case NoSuchUser, NukedUser:
		s.metrics.RecoveryRequested(ModeUsername, metrics.OutcomeNotFound)
		return models.RecoveryToken{}, apperrors.NewNotFoundError(
			`O "username" informado não foi encontrado no sistema.`,
			`Verifique se o "username" está digitado corretamente.`,
			"username",
			LocationUsernameNotFound,
		)
	case ActiveUser:
		return s.issue(ctx, ModeUsername, t)
	default:
		return models.RecoveryToken{}, apperrors.NewInternalServerError(fmt.Errorf("unknown recovery target %T", target), LocationFindUser)
	}
}

func (s *Service) byEmail(ctx context.Context, email string) (models.RecoveryToken, error) {
	target, err := s.resolve(ctx, s.users.GetUserByEmail, email)
	if err != nil {
		s.metrics.RecoveryRequested(ModeEmail, metrics.OutcomeError)
		return models.RecoveryToken{}, err
	}

	return s.issue(ctx, ModeEmail, target)
}

func (s *Service) resolve(ctx context.Context, find func(context.Context, string) (models.User, error), value string) (Target, error) {
	user, err := find(ctx, value)

	switch {
	case err == nil:
		return targetOf(user), nil
	case errors.Is(err, apperrors.ErrUserNotFound):
		return NoSuchUser{}, nil
	default:
		return nil, apperrors.NewInternalServerError(err, LocationFindUser)
	}
}

func (s *Service) issue(ctx context.Context, mode string, target Target) (models.RecoveryToken, error) {
	issued, err := s.engine.Issue(ctx, target)
	if err != nil {
		s.metrics.RecoveryRequested(mode, metrics.OutcomeError)
		return models.RecoveryToken{}, apperrors.NewInternalServerError(err, LocationIssueToken)
	}

	active, isActive := target.(ActiveUser)

	switch {
	case !isActive:
		s.log.Debug("ephemeral recovery token issued", "mode", mode)
		s.metrics.RecoveryRequested(mode, metrics.OutcomeEphemeral)
	case issued.ShouldNotify:
		s.log.Info("recovery token created", "mode", mode, "user_id", active.User.ID, "token_id", issued.Token.ID)
		s.metrics.RecoveryRequested(mode, metrics.OutcomeCreated)
		s.notifier.SendRecoveryEmail(ctx, active.User, issued.Token)
	default:
		s.log.Info("valid recovery token reused", "mode", mode, "user_id", active.User.ID, "token_id", issued.Token.ID)
		s.metrics.RecoveryRequested(mode, metrics.OutcomeReused)
	}

	return issued.Token, nil
}
