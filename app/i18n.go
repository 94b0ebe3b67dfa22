package app

import (
	"fmt"
	"strconv"
	"strings"
)

// catalogs maps a locale to its translations, keyed by the English message id.
var catalogs = map[string]map[string]string{
	"en": {},
	"de": {
		"%1 min ago":  "vor %1 Min.",
		"%1 hrs ago":  "vor %1 Std.",
		"%1 days ago": "vor %1 Tagen",
		"long ago":    "vor langer Zeit",
	},
}

// Localizer translates widget messages for one locale
type Localizer struct {
	locale   string
	messages map[string]string
}

// NewLocalizer returns a localizer for the given locale, falling back to English
func NewLocalizer(locale string) *Localizer {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "_-"); i > 0 {
		locale = locale[:i]
	}
	messages, ok := catalogs[locale]
	if !ok {
		locale = "en"
		messages = catalogs[locale]
	}
	return &Localizer{locale: locale, messages: messages}
}

// Locale returns the resolved locale name
func (l *Localizer) Locale() string {
	return l.locale
}

// i18n translates msgid and substitutes the positional placeholders %1, %2, ...
func (l *Localizer) i18n(msgid string, args ...any) string {
	text := msgid
	if translated, ok := l.messages[msgid]; ok && translated != "" {
		text = translated
	}

	// Replace higher placeholders first so %1 does not eat the prefix of %10
	for i := len(args); i >= 1; i-- {
		text = strings.ReplaceAll(text, "%"+strconv.Itoa(i), fmt.Sprint(args[i-1]))
	}
	return text
}
