package view

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplates(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"layout.html":          `<html lang="{{lang}}">{{template "nav" .}}{{template "content" .}}</html>`,
		"partials/nav.html":    `{{define "nav"}}<nav>{{t "nav.cart"}} ({{cartCount}}){{if isAdmin}} admin{{end}}</nav>{{end}}`,
		"page.html":            `{{define "content"}}<p>{{.Title}} {{money .Price}}</p>{{end}}`,
		"broken.html":          `{{define "content"}}{{.Missing.Field}}{{end}}`,
		"partials/footer.html": `{{define "footer"}}{{year}}{{end}}`,
	}
	for name, body := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return dir
}

func TestRender(t *testing.T) {
	SetBaseDir(writeTemplates(t))
	SetLangResolver(func(r *http.Request) string { return r.URL.Query().Get("l") })
	SetCartCountResolver(func(*http.Request) int { return 3 })
	SetIsAdminResolver(func(r *http.Request) bool { return r.URL.Query().Get("admin") == "1" })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?l=en", nil)
	require.NoError(t, Render(rec, req, "page.html", map[string]any{"Title": "Квест", "Price": decimal.NewFromInt(1500)}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `<html lang="en"><nav>Cart (3)</nav><p>Квест 1500.00 ₽</p></html>`, rec.Body.String())

	// Cached template, different request bindings.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/?l=ru&admin=1", nil)
	require.NoError(t, RenderStatus(rec, req, http.StatusUnprocessableEntity, "page.html", map[string]any{"Title": "A", "Price": decimal.NewFromInt(1)}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `lang="ru"`)
	assert.Contains(t, rec.Body.String(), "Корзина (3) admin")
}

func TestRenderErrorWritesNothing(t *testing.T) {
	SetBaseDir(writeTemplates(t))
	rec := httptest.NewRecorder()
	err := Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), "broken.html", map[string]any{"Missing": 1})
	assert.Error(t, err)
	assert.Zero(t, rec.Body.Len())

	err = Render(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "absent.html", nil)
	assert.Error(t, err)
}
