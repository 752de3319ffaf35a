package handlers

import (
	"context"
	"net/http"

	"golang.org/x/text/language"

	"github.com/matheusdealcantara/tabnews.com.br/internal/handlers/middleware"
	"github.com/matheusdealcantara/tabnews.com.br/internal/logger"
	"github.com/matheusdealcantara/tabnews.com.br/internal/metrics"
	"github.com/matheusdealcantara/tabnews.com.br/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

type authService interface {
	// Get request and return caller, anonymous user if request has no session
	Auth(ctx context.Context, r *http.Request) (models.User, error)

	// Drop session cookie of rejected session
	ClearCookie(w http.ResponseWriter)
}

type localeMatcher interface {
	Match(acceptLanguage string) language.Tag
}

type Router struct {
	Auth     authService
	Recovery recoveryService
	DB       pinger
	Locale   localeMatcher

	// Optional, requests are not observed if nil
	Metrics        *metrics.Recorder
	MetricsHandler http.Handler

	Logger logger.Logger
}

func (rt Router) Handler() http.Handler {
	recovery := chain(NewRecovery(rt.Recovery, rt.Logger).Handler(),
		middleware.LocaleMiddleware(rt.Locale),
		middleware.AuthMiddleware(rt.Auth, rt.Logger),
	)

	root := http.NewServeMux()
	root.Handle(RecoveryPath, rt.Metrics.Instrument(RecoveryPath, recovery))
	root.Handle(StatusPath, rt.Metrics.Instrument(StatusPath, NewStatus(rt.DB, rt.Logger).Handler()))
	if rt.MetricsHandler != nil {
		root.Handle("GET /metrics", rt.MetricsHandler)
	}

	return chain(root,
		middleware.RequestIDMiddleware(),
		middleware.LoggerMiddleware(rt.Logger),
	)
}
