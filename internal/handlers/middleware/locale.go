package middleware

import (
	"net/http"

	"golang.org/x/text/language"

	"github.com/matheusdealcantara/tabnews.com.br/internal/i18n"
)

type localeMatcher interface {
	Match(acceptLanguage string) language.Tag
}

// LocaleMiddleware stores language negotiated from Accept-Language in request context
func LocaleMiddleware(m localeMatcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := m.Match(r.Header.Get("Accept-Language"))
			next.ServeHTTP(w, r.WithContext(i18n.WithLocale(r.Context(), lang)))
		})
	}
}
