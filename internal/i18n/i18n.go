package i18n

import (
	"context"
	"embed"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed translations/*.toml
var translationFS embed.FS

var translationFiles = []string{
	"translations/active.pt-BR.toml",
	"translations/active.en.toml",
}

// Languages there are translations for, first one is the fallback
var supported = []language.Tag{
	language.BrazilianPortuguese,
	language.English,
}

type localeContextKey struct{}

// Translator resolves messages for the locale stored in context
type Translator struct {
	bundle  *i18n.Bundle
	matcher language.Matcher
	def     language.Tag
}

// New loads embedded translations. defaultLocale is used when context carries no locale
func New(defaultLocale string) (*Translator, error) {
	def, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("invalid default locale %q: %w", defaultLocale, err)
	}

	bundle := i18n.NewBundle(supported[0])
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range translationFiles {
		if _, err := bundle.LoadMessageFileFS(translationFS, file); err != nil {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	tr := &Translator{
		bundle:  bundle,
		matcher: language.NewMatcher(supported),
	}
	tr.def = tr.Match(def.String())

	return tr, nil
}

// Match picks the best supported language for Accept-Language header value
func (tr *Translator) Match(acceptLanguage string) language.Tag {
	if acceptLanguage == "" && tr.def != language.Und {
		return tr.def
	}

	_, index, confidence := tr.matcher.Match(parseAccept(acceptLanguage)...)
	if confidence == language.No {
		if tr.def != language.Und {
			return tr.def
		}
		return supported[0]
	}
	return supported[index]
}

// Default is the locale used when context carries none
func (tr *Translator) Default() language.Tag {
	return tr.def
}

// T translates message by ID, data fills message template
// Unknown message IDs are returned as is
func (tr *Translator) T(ctx context.Context, messageID string, data map[string]any) string {
	localizer := i18n.NewLocalizer(tr.bundle, Locale(ctx, tr.def).String())

	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}
	return msg
}

// WithLocale adds the locale to the context
func WithLocale(ctx context.Context, lang language.Tag) context.Context {
	return context.WithValue(ctx, localeContextKey{}, lang)
}

// Locale returns locale from context or fallback when it was never set
func Locale(ctx context.Context, fallback language.Tag) language.Tag {
	if lang, ok := ctx.Value(localeContextKey{}).(language.Tag); ok {
		return lang
	}
	return fallback
}

func parseAccept(acceptLanguage string) []language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil {
		return nil
	}
	return tags
}
