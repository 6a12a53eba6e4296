package view

import (
	"bytes"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/diewo77/gleeful/auth"
	"github.com/diewo77/gleeful/i18n"
	"github.com/diewo77/gleeful/internal/models"
	"github.com/shopspring/decimal"
)

var (
	baseDir  string
	once     sync.Once
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}

	devMode bool

	langResolver      = func(_ *http.Request) string { return i18n.Fallback }
	isAdminResolver   = func(_ *http.Request) bool { return false }
	cartCountResolver = func(_ *http.Request) int { return 0 }
)

// SetLangResolver sets how templates learn the request language.
func SetLangResolver(f func(*http.Request) string) {
	if f != nil {
		langResolver = f
	}
}

// SetIsAdminResolver sets the callback behind the isAdmin template func.
func SetIsAdminResolver(f func(*http.Request) bool) {
	if f != nil {
		isAdminResolver = f
	}
}

// SetCartCountResolver sets the callback behind the cartCount template func.
func SetCartCountResolver(f func(*http.Request) int) {
	if f != nil {
		cartCountResolver = f
	}
}

// SetDevMode disables the template cache so edits show up on reload.
func SetDevMode(dev bool) { devMode = dev }

func detectBase() {
	for _, c := range []string{"templates", "../templates", "../../templates", "../../../templates"} {
		if fi, err := os.Stat(filepath.Clean(c)); err == nil && fi.IsDir() {
			baseDir = filepath.Clean(c)
			return
		}
	}
	baseDir = "templates"
}

// SetBaseDir overrides the template base directory.
func SetBaseDir(path string) {
	if path == "" {
		return
	}
	baseDir = filepath.Clean(path)
	ResetCache()
}

// ResetCache drops parsed templates.
func ResetCache() {
	tplCache.Lock()
	tplCache.m = map[string]*template.Template{}
	tplCache.Unlock()
}

// Funcs returns the func map bound to r.
func Funcs(r *http.Request) template.FuncMap {
	lang := langResolver(r)
	return template.FuncMap{
		"t":         func(code string) string { return i18n.T(lang, code) },
		"tf":        func(code string, args ...any) string { return i18n.Tf(lang, code, args...) },
		"lang":      func() string { return lang },
		"isAdmin":   func() bool { return isAdminResolver(r) },
		"loggedIn":  func() bool { _, ok := auth.UserIDFromContext(r.Context()); return ok },
		"cartCount": func() int { return cartCountResolver(r) },
		"money":     func(d decimal.Decimal) string { return models.FormatMoney(d) },
		"date":      func(t time.Time) string { return t.Format("02.01.2006") },
		"datetime":  func(t time.Time) string { return t.Format("02.01.2006 15:04") },
		"isoDate":   func(t time.Time) string { return t.Format("2006-01-02") },
		"year":      func() int { return time.Now().Year() },
		"path":      func() string { return r.URL.Path },
		// categories and statuses feed filter bars and admin selects.
		"categories": func() []models.Category { return models.Categories },
		"statuses":   func() []models.OrderStatus { return models.OrderStatuses },
		// dict builds a map for sub-templates:
		// {{ template "partial" (dict "Key1" val1 "Key2" val2) }}
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

func parse(r *http.Request, name string) (*template.Template, error) {
	layout := filepath.Join(baseDir, "layout.html")
	partials, _ := filepath.Glob(filepath.Join(baseDir, "partials", "*.html"))
	files := append([]string{layout, filepath.Join(baseDir, name)}, partials...)
	return template.New("layout.html").Funcs(Funcs(r)).ParseFiles(files...)
}

// Render executes templates/<name> inside layout.html with status 200.
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	return RenderStatus(w, r, http.StatusOK, name, data)
}

// RenderStatus is Render with an explicit status code. The page is rendered
// into a buffer first so a template error never leaves half a page.
func RenderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) error {
	once.Do(func() {
		if baseDir == "" {
			detectBase()
		}
	})
	if data == nil {
		data = map[string]any{}
	}

	// Funcs close over the request, so cached templates are cloned and
	// rebound for every render.
	tplCache.RLock()
	t, ok := tplCache.m[name]
	tplCache.RUnlock()
	if !ok || devMode {
		parsed, err := parse(r, name)
		if err != nil {
			return err
		}
		t = parsed
		if !devMode {
			tplCache.Lock()
			tplCache.m[name] = parsed
			tplCache.Unlock()
		}
	}
	bound, err := t.Clone()
	if err != nil {
		return err
	}
	bound.Funcs(Funcs(r))

	var buf bytes.Buffer
	if err := bound.Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}
