package classifier

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Locale selects the language of caller-visible messages.
type Locale string

const (
	LocaleZH Locale = "zh"
	LocaleEN Locale = "en"
)

var (
	supportedLocales = []Locale{LocaleZH, LocaleEN}
	localeMatcher    = language.NewMatcher([]language.Tag{language.Chinese, language.English})
)

type localeKey struct{}

// WithLocale returns a context carrying the message locale.
func WithLocale(ctx context.Context, locale Locale) context.Context {
	return context.WithValue(ctx, localeKey{}, locale)
}

// LocaleFromContext returns the locale stored in ctx, or fallback.
func LocaleFromContext(ctx context.Context, fallback Locale) Locale {
	if ctx == nil {
		return fallback
	}
	if l, ok := ctx.Value(localeKey{}).(Locale); ok {
		return l
	}
	return fallback
}

// ParseLocale accepts "zh" or "en" in any case.
func ParseLocale(s string) (Locale, error) {
	l := Locale(strings.ToLower(strings.TrimSpace(s)))
	for _, supported := range supportedLocales {
		if l == supported {
			return l, nil
		}
	}
	return LocaleZH, fmt.Errorf("unsupported locale %q", s)
}

// LocaleFromAcceptLanguage picks the best supported locale for an
// Accept-Language header value. Empty or unmatched headers yield fallback.
func LocaleFromAcceptLanguage(header string, fallback Locale) Locale {
	if strings.TrimSpace(header) == "" {
		return fallback
	}

	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return fallback
	}

	_, index, confidence := localeMatcher.Match(tags...)
	if confidence == language.No {
		return fallback
	}
	return supportedLocales[index]
}
