package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"service-dispatch/internal/logx"
	testlog "service-dispatch/internal/testutil"
)

type stubLimiter struct {
	allow bool
	keys  []string
}

func (s *stubLimiter) Allow(key string) bool {
	s.keys = append(s.keys, key)
	return s.allow
}

func TestMiddleware_Allows_RequestPassesToNext(t *testing.T) {
	t.Parallel()

	nextCalled := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled++
		w.WriteHeader(http.StatusOK)
	})

	lim := &stubLimiter{allow: true}
	h := New(logx.Nop(), nil, lim).Handler()(next)

	r := httptest.NewRequest(http.MethodGet, "http://example/test", nil)
	r.RemoteAddr = "1.2.3.4:5678"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, nextCalled)
	require.Equal(t, []string{"ip:1.2.3.4"}, lim.keys)
}

func TestMiddleware_Blocks_Returns429AndIncrementsCounter(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next must not be called")
	})

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "ratelimit_denied_total", Help: "denied requests"})
	rec := testlog.New()
	h := New(rec.Logger(), counter, &stubLimiter{allow: false}).Handler()(next)

	r := httptest.NewRequest(http.MethodGet, "http://example/test", nil)
	r.RemoteAddr = "1.2.3.4:5678"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))
	require.Equal(t, "1", w.Header().Get("Retry-After"))
	require.Equal(t, `{"error":"too many requests"}`, w.Body.String())
	require.Equal(t, float64(1), testutil.ToFloat64(counter))

	e, ok := rec.Find("warn", "rate limit exceeded")
	require.True(t, ok)
	key, _ := e.Field("key")
	require.Equal(t, "ip:1.2.3.4", key)
}

func TestMiddleware_DriverKeyPerDriverBuckets(t *testing.T) {
	t.Parallel()

	lim := NewTokenBucketLimiter(newFakeClock(time.Unix(0, 0)), Config{Rate: 1, Burst: 1})
	mw := New(nil, nil, lim).WithKey(DriverKey("driverID"))

	r := chi.NewRouter()
	r.With(mw.Handler()).Post("/drivers/{driverID}/location", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	call := func(id string) int {
		req := httptest.NewRequest(http.MethodPost, "/drivers/"+id+"/location", nil)
		req.RemoteAddr = "10.0.0.1:1000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusNoContent, call("d1"))
	require.Equal(t, http.StatusTooManyRequests, call("d1"))
	// same IP, different driver
	require.Equal(t, http.StatusNoContent, call("d2"))
}

func TestClientIP_Fallbacks(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "not-a-hostport"
	require.Equal(t, "ip:not-a-hostport", ClientIP(r))

	r.RemoteAddr = ""
	require.Equal(t, "ip:unknown", ClientIP(r))
}
