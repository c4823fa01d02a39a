package web

import (
	"net/http"
	"strings"
	"time"
)

// Theme is the visitor's color scheme
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Where a resolved theme came from
const (
	ThemeSourceCookie  = "cookie"
	ThemeSourceHint    = "hint"
	ThemeSourceDefault = "default"
)

const (
	colorSchemeHint = "Sec-CH-Prefers-Color-Scheme"
	themeCookieAge  = 365 * 24 * time.Hour
)

// ParseTheme accepts "light" or "dark" in any case
func ParseTheme(s string) (Theme, bool) {
	t := Theme(strings.ToLower(strings.Trim(strings.TrimSpace(s), `"`)))
	return t, t == ThemeLight || t == ThemeDark
}

// Toggle returns the opposite theme
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ResolveTheme picks the theme for a request: the theme cookie, then the
// color-scheme client hint, then fallback.
func ResolveTheme(r *http.Request, cookieName string, fallback Theme) (Theme, string) {
	if c, err := r.Cookie(cookieName); err == nil {
		if t, ok := ParseTheme(c.Value); ok {
			return t, ThemeSourceCookie
		}
	}
	if t, ok := ParseTheme(r.Header.Get(colorSchemeHint)); ok {
		return t, ThemeSourceHint
	}
	if _, ok := ParseTheme(string(fallback)); !ok {
		fallback = ThemeLight
	}
	return fallback, ThemeSourceDefault
}

func themeCookie(name string, t Theme, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    string(t),
		Path:     "/",
		MaxAge:   int(themeCookieAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
}

// safeRedirect keeps redirects on this site
func safeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return "/"
	}
	return target
}
