package middleware

import (
	"context"
	"net/http"

	"github.com/matheusdealcantara/tabnews.com.br/internal/apperrors"
	"github.com/matheusdealcantara/tabnews.com.br/internal/handlers/reqctx"
	"github.com/matheusdealcantara/tabnews.com.br/internal/handlers/render"
	"github.com/matheusdealcantara/tabnews.com.br/internal/models"
)

type authService interface {
	// Has to return anonymous user for request without session
	Auth(ctx context.Context, r *http.Request) (models.User, error)

	ClearCookie(w http.ResponseWriter)
}

type errorLogger interface {
	Error(msg string, args ...any)
}

// AuthMiddleware puts caller of request into context
// Rejected sessions drop the cookie so client falls back to anonymous
func AuthMiddleware(as authService, l errorLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := as.Auth(r.Context(), r)
			if err != nil {
				if appErr, ok := apperrors.As(err); ok && appErr.StatusCode == http.StatusUnauthorized {
					as.ClearCookie(w)
				}

				rendered := render.Error(w, r, err)
				if rendered.StatusCode >= http.StatusInternalServerError {
					l.Error("can't resolve session", "request_id", rendered.RequestID, "error_id", rendered.ErrorID, "error", err)
				}
				return
			}

			ctx := reqctx.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
