package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func langOf(t *testing.T, req *http.Request) (string, *httptest.ResponseRecorder) {
	t.Helper()
	var got string
	rec := httptest.NewRecorder()
	Prefs(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = LangFrom(r)
	})).ServeHTTP(rec, req)
	return got, rec
}

func TestPrefsLanguageResolution(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	lang, _ := langOf(t, req)
	assert.Equal(t, "ru", lang)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	lang, _ = langOf(t, req)
	assert.Equal(t, "en", lang)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "lang", Value: "ru"})
	req.Header.Set("Accept-Language", "en")
	lang, _ = langOf(t, req)
	assert.Equal(t, "ru", lang, "cookie wins over header")

	req = httptest.NewRequest(http.MethodGet, "/?lang=EN", nil)
	req.AddCookie(&http.Cookie{Name: "lang", Value: "ru"})
	lang, rec := langOf(t, req)
	assert.Equal(t, "en", lang, "query wins over cookie")
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, "en", rec.Result().Cookies()[0].Value)

	req = httptest.NewRequest(http.MethodGet, "/?lang=de", nil)
	lang, rec = langOf(t, req)
	assert.Equal(t, "ru", lang)
	assert.Empty(t, rec.Result().Cookies())
}

func TestFlashRoundTrip(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/cart/add/1", nil)
	req = req.WithContext(WithLang(req.Context(), "en"))
	rec := httptest.NewRecorder()
	Flash(rec, req, FlashSuccess, "flash.welcome_merged", "anna", 2)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()
	msg, ok := PopFlash(rec2, next)
	require.True(t, ok)
	assert.Equal(t, FlashSuccess, msg.Kind)
	assert.Equal(t, "Welcome, anna! Services moved to your cart: 2", msg.Text)
	require.Len(t, rec2.Result().Cookies(), 1)
	assert.Equal(t, -1, rec2.Result().Cookies()[0].MaxAge)

	_, ok = PopFlash(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	h := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.getLimiter("10.0.0.1")

	now = now.Add(11 * time.Minute)
	rl.getLimiter("10.0.0.2")
	rl.Cleanup()

	assert.NotContains(t, rl.visitors, "10.0.0.1")
	assert.Contains(t, rl.visitors, "10.0.0.2")
}
