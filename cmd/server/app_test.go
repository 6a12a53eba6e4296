package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/gleeful/internal/config"
	"github.com/diewo77/gleeful/internal/db"
	"github.com/diewo77/gleeful/internal/models"
	"github.com/diewo77/gleeful/internal/services"
	"github.com/diewo77/gleeful/internal/session"
	"github.com/diewo77/gleeful/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	srv *httptest.Server
	db  *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(conn))
	require.NoError(t, db.Seed(conn))

	view.SetBaseDir("../../templates")
	cfg := &config.Config{
		Server: config.Server{
			CORSOrigins:    []string{"*"},
			RateLimitRPS:   100,
			RateLimitBurst: 100,
		},
		Session: config.Session{Secret: "test-secret", TTL: time.Hour, CacheTTL: time.Minute},
	}
	app := NewApp(conn, session.NewMemoryStore(time.Hour), cfg)
	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, db: conn}
}

// client returns a cookie-keeping client that does not follow redirects.
func (e *testEnv) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (e *testEnv) do(t *testing.T, c *http.Client, method, path string, form url.Values, xhr bool) *http.Response {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, e.srv.URL+path, body)
	require.NoError(t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if xhr {
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
	}
	resp, err := c.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) register(t *testing.T, name string) models.User {
	t.Helper()
	res, err := services.NewAccountService(e.db).Register(t.Context(), services.RegisterInput{
		Username: name, Email: name + "@example.com", Password: "secret1", PasswordConfirm: "secret1",
	})
	require.NoError(t, err)
	return res.User
}

func (e *testEnv) login(t *testing.T, c *http.Client, email, password string) *http.Response {
	t.Helper()
	return e.do(t, c, http.MethodPost, "/login", url.Values{"email": {email}, "password": {password}}, false)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type cartBody struct {
	Outcome string `json:"outcome"`
	Count   int    `json:"count"`
	Total   string `json:"total"`
}

func firstService(t *testing.T, conn *gorm.DB) models.Service {
	t.Helper()
	var s models.Service
	require.NoError(t, conn.Order("id").First(&s).Error)
	return s
}

func TestPublicPages(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)
	for _, path := range []string{"/", "/services", "/services?category=child", "/portfolio", "/news", "/about", "/contacts", "/login", "/register", "/cart"} {
		resp := e.do(t, c, http.MethodGet, path, nil, false)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp := e.do(t, c, http.MethodGet, "/nope", nil, false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = e.do(t, c, http.MethodGet, "/services/99999", nil, false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAnonymousCartMergesAtLogin(t *testing.T) {
	e := newTestEnv(t)
	u := e.register(t, "olga")
	svc := firstService(t, e.db)
	c := e.client(t)

	resp := e.do(t, c, http.MethodPost, fmt.Sprintf("/cart/add/%d", svc.ID), url.Values{}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[cartBody](t, resp)
	assert.Equal(t, "added", body.Outcome)
	assert.Equal(t, 1, body.Count)

	resp = e.do(t, c, http.MethodPost, fmt.Sprintf("/cart/add/%d", svc.ID), url.Values{}, true)
	body = decode[cartBody](t, resp)
	assert.Equal(t, "already_in_cart", body.Outcome)
	assert.Equal(t, 1, body.Count)

	resp = e.login(t, c, u.Email, "secret1")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	var rows int64
	require.NoError(t, e.db.Model(&models.CartItem{}).Where("user_id = ?", u.ID).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)

	resp = e.do(t, c, http.MethodGet, "/api/cart", nil, false)
	body = decode[cartBody](t, resp)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, svc.Price.StringFixed(2), body.Total)
}

func TestLoginWrongPassword(t *testing.T) {
	e := newTestEnv(t)
	u := e.register(t, "olga")
	resp := e.login(t, e.client(t), u.Email, "wrong-pass")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCheckoutFlow(t *testing.T) {
	e := newTestEnv(t)
	u := e.register(t, "olga")
	svc := firstService(t, e.db)
	c := e.client(t)

	resp := e.do(t, c, http.MethodGet, "/checkout", nil, false)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/login?next="))

	e.login(t, c, u.Email, "secret1")
	e.do(t, c, http.MethodPost, fmt.Sprintf("/cart/add/%d", svc.ID), url.Values{}, false)

	resp = e.do(t, c, http.MethodGet, "/checkout", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, c, http.MethodPost, "/checkout", url.Values{"phone": {"123"}, "event_date": {"2001-01-01"}}, false)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	eventDate := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	resp = e.do(t, c, http.MethodPost, "/checkout", url.Values{"phone": {"+79991234567"}, "event_date": {eventDate}}, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	placed := decode[struct {
		OrderID uint   `json:"order_id"`
		Total   string `json:"total"`
	}](t, resp)
	assert.NotZero(t, placed.OrderID)
	assert.Equal(t, svc.Price.StringFixed(2), placed.Total)

	var order models.Order
	require.NoError(t, e.db.Preload("Items").First(&order, placed.OrderID).Error)
	assert.Equal(t, models.OrderStatusNew, order.Status)
	assert.Len(t, order.Items, 1)

	resp = e.do(t, c, http.MethodPost, "/checkout", url.Values{"phone": {"+79991234567"}, "event_date": {eventDate}}, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.do(t, c, http.MethodGet, "/orders", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, c, http.MethodGet, fmt.Sprintf("/orders/%d/receipt.pdf", order.ID), nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	// Another customer may not read the receipt.
	other := e.register(t, "ivan")
	oc := e.client(t)
	e.login(t, oc, other.Email, "secret1")
	resp = e.do(t, oc, http.MethodGet, fmt.Sprintf("/orders/%d/receipt.pdf", order.ID), nil, true)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminAccess(t *testing.T) {
	e := newTestEnv(t)
	u := e.register(t, "olga")

	anon := e.client(t)
	resp := e.do(t, anon, http.MethodGet, "/admin", nil, false)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	customer := e.client(t)
	e.login(t, customer, u.Email, "secret1")
	resp = e.do(t, customer, http.MethodGet, "/admin", nil, false)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = e.do(t, customer, http.MethodPost, "/admin/news", url.Values{"title": {"x"}, "content": {"y"}}, true)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	admin := e.client(t)
	resp = e.login(t, admin, db.AdminEmail, "admin")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))

	resp = e.do(t, admin, http.MethodGet, "/admin", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, admin, http.MethodPost, "/admin/news", url.Values{"title": {"Открытие"}, "content": {"Мы открылись"}}, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	news := decode[models.News](t, resp)
	assert.Equal(t, "Открытие", news.Title)

	resp = e.do(t, admin, http.MethodPost, "/admin/services", url.Values{"title": {"x"}, "price": {"-1"}}, true)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = e.do(t, admin, http.MethodGet, fmt.Sprintf("/admin/news/%d/edit", news.ID), nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, admin, http.MethodPost, fmt.Sprintf("/admin/news/%d/delete", news.ID), url.Values{}, false)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))
}

func TestAPIServicesCORS(t *testing.T) {
	e := newTestEnv(t)
	req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/api/services", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://example.org")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	list := decode[[]models.Service](t, resp)
	var n int64
	require.NoError(t, e.db.Model(&models.Service{}).Count(&n).Error)
	assert.Len(t, list, int(n))

	resp = e.do(t, e.client(t), http.MethodGet, "/api/services?category=weddings", nil, false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
