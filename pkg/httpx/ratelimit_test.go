package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newLimitedHandler(cfg RateLimitConfig) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return Chain(ok, NewRateLimiter(cfg).Middleware())
}

func doFrom(handler http.Handler, addr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = addr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_EnforcesBudget(t *testing.T) {
	t.Parallel()

	handler := newLimitedHandler(RateLimitConfig{
		RequestsPerWindow: 3,
		Window:            time.Minute,
		Burst:             3,
	})

	for i := 0; i < 3; i++ {
		rec := doFrom(handler, "10.0.0.1:1234")
		require.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i)
	}

	rec := doFrom(handler, "10.0.0.1:1234")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimiter_PerClientBuckets(t *testing.T) {
	t.Parallel()

	handler := newLimitedHandler(RateLimitConfig{
		RequestsPerWindow: 1,
		Window:            time.Minute,
		Burst:             1,
	})

	require.Equal(t, http.StatusOK, doFrom(handler, "10.0.0.1:1234").Code)
	require.Equal(t, http.StatusTooManyRequests, doFrom(handler, "10.0.0.1:9999").Code)

	// A different client has its own bucket.
	require.Equal(t, http.StatusOK, doFrom(handler, "10.0.0.2:1234").Code)
}

func TestRateLimiter_ZeroConfigIsUnlimited(t *testing.T) {
	t.Parallel()

	handler := newLimitedHandler(RateLimitConfig{})
	for i := 0; i < 100; i++ {
		require.Equal(t, http.StatusOK, doFrom(handler, "10.0.0.1:1234").Code)
	}
}
