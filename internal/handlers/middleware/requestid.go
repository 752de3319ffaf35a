package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/matheusdealcantara/tabnews.com.br/internal/handlers/reqctx"
)

const RequestIDHeader = "X-Request-Id"

// RequestIDMiddleware tags every request with fresh UUID v4
// Id is stored in request context and returned in response header
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.NewString()

			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(reqctx.WithRequestID(r.Context(), id)))
		})
	}
}
