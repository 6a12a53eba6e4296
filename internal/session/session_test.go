package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx := context.Background()

	ids, err := s.Load(ctx, "v1")
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, s.Save(ctx, "v1", []uint{3, 1, 3}))
	ids, _ = s.Load(ctx, "v1")
	assert.Equal(t, []uint{3, 1, 3}, ids)

	ids[0] = 99
	again, _ := s.Load(ctx, "v1")
	assert.Equal(t, uint(3), again[0], "Load must return a copy")

	require.NoError(t, s.Clear(ctx, "v1"))
	ids, _ = s.Load(ctx, "v1")
	assert.Empty(t, ids)
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "v1", []uint{1}))
	now = now.Add(2 * time.Minute)
	ids, _ := s.Load(ctx, "v1")
	assert.Empty(t, ids)
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 0, s.Sweep())
}

func TestRedisStoreLoad(t *testing.T) {
	client, mock := redismock.NewClientMock()
	s := NewRedisStore(client, time.Hour)

	mock.ExpectGet("gleeful:cart:v1").SetVal(`[2,5]`)
	ids, err := s.Load(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 5}, ids)

	mock.ExpectGet("gleeful:cart:v2").RedisNil()
	ids, err = s.Load(context.Background(), "v2")
	require.NoError(t, err)
	assert.Nil(t, ids)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreSaveAndClear(t *testing.T) {
	client, mock := redismock.NewClientMock()
	s := NewRedisStore(client, time.Hour)
	ctx := context.Background()

	mock.ExpectSet("gleeful:cart:v1", `[1,2]`, time.Hour).SetVal("OK")
	require.NoError(t, s.Save(ctx, "v1", []uint{1, 2}))

	mock.ExpectDel("gleeful:cart:v1").SetVal(1)
	require.NoError(t, s.Save(ctx, "v1", nil))

	mock.ExpectDel("gleeful:cart:v1").SetErr(errors.New("down"))
	assert.Error(t, s.Clear(ctx, "v1"))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreLoadError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	s := NewRedisStore(client, time.Hour)
	mock.ExpectGet("gleeful:cart:v1").SetErr(errors.New("timeout"))
	_, err := s.Load(context.Background(), "v1")
	assert.Error(t, err)
}

func TestMiddlewareIssuesVisitorID(t *testing.T) {
	var seen string
	h := Middleware(time.Hour)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = VisitorIDFromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, seen, cookies[0].Value)

	// existing cookie is reused
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "visitor", Value: seen})
	w = httptest.NewRecorder()
	first := seen
	h.ServeHTTP(w, req)
	assert.Equal(t, first, seen)
	assert.Empty(t, w.Result().Cookies())

	// garbage is replaced
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "visitor", Value: "../../etc"})
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.NotEqual(t, "../../etc", seen)
	assert.Len(t, w.Result().Cookies(), 1)
}
