package translator

import (
	"os"
	"strings"

	"github.com/starford/lngkit/internal/langs"
)

// DetectLanguage reads the system locale from LC_ALL, LANG and LANGUAGE, in
// that order, and returns it as a normalized code such as "de_DE". It
// returns "" when no usable locale is set.
func DetectLanguage() string {
	for _, env := range []string{"LC_ALL", "LANG", "LANGUAGE"} {
		if code := parseLocale(os.Getenv(env)); code != "" {
			return code
		}
	}
	return ""
}

// parseLocale turns a locale string like "de_DE.UTF-8@euro" into "de_DE".
// LANGUAGE lists are colon separated; the first entry wins.
func parseLocale(locale string) string {
	locale, _, _ = strings.Cut(locale, ":")
	locale, _, _ = strings.Cut(locale, ".")
	locale, _, _ = strings.Cut(locale, "@")
	locale = langs.Normalize(locale)
	switch locale {
	case "", "C", "POSIX":
		return ""
	}
	return locale
}
