package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/diewo77/gleeful/i18n"
)

type ctxKey string

const (
	ctxLang ctxKey = "pref_lang"

	langCookie  = "lang"
	flashCookie = "flash"
)

// Prefs resolves the language (query > cookie > Accept-Language) and stores
// it in the context. A language chosen via ?lang= is kept in a cookie for
// ~30 days.
func Prefs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := ""
		if c, err := r.Cookie(langCookie); err == nil {
			lang = c.Value
		}
		if ql := strings.ToLower(r.URL.Query().Get("lang")); i18n.Supported(ql) {
			lang = ql
			http.SetCookie(w, &http.Cookie{Name: langCookie, Value: lang, Path: "/", MaxAge: 86400 * 30, SameSite: http.SameSiteLaxMode})
		}
		if !i18n.Supported(lang) {
			lang = i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		}
		next.ServeHTTP(w, r.WithContext(WithLang(r.Context(), lang)))
	})
}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxLang, lang)
}

// LangFrom returns the language preference from context or the fallback.
func LangFrom(r *http.Request) string {
	if v, ok := r.Context().Value(ctxLang).(string); ok && v != "" {
		return v
	}
	return i18n.Fallback
}

// Flash kinds, used as CSS modifiers.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashError   = "error"
)

// FlashMessage is a one-shot message shown on the next rendered page.
type FlashMessage struct {
	Kind string
	Text string
}

// Flash sets a translated flash cookie. code is looked up with i18n.Tf.
func Flash(w http.ResponseWriter, r *http.Request, kind, code string, args ...any) {
	msg := i18n.Tf(LangFrom(r), code, args...)
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(kind + "|" + msg),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash reads and clears the flash cookie.
func PopFlash(w http.ResponseWriter, r *http.Request) (FlashMessage, bool) {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return FlashMessage{}, false
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})
	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return FlashMessage{}, false
	}
	kind, text, ok := strings.Cut(raw, "|")
	if !ok {
		return FlashMessage{Kind: FlashInfo, Text: raw}, true
	}
	return FlashMessage{Kind: kind, Text: text}, true
}
