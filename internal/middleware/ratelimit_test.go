package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maelig/balade-reservation/internal/config"
)

func rateTestConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       10,
		RefillTokens:   1,
		RefillInterval: 5 * time.Second,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
}

func newRateContext(e *echo.Echo) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/reservations")
	return c, rec
}

// expectBucketRun registers the limiter script call on the mock.  The
// timestamp argument changes every run, so the expectation matches it
// by pattern.
func expectBucketRun(mock redismock.ClientMock, key string) *redismock.ExpectedCmd {
	return mock.Regexp().ExpectEvalSha(limiterScript.Hash(), []string{regexp.QuoteMeta(key)},
		`\d+`, "10", "1", "5000", "600")
}

func TestNewTokenBucket_Allowed(t *testing.T) {
	e := echo.New()
	cfg := rateTestConfig()
	rdb, mock := redismock.NewClientMock()

	c, rec := newRateContext(e)
	key := buildRateKey(cfg, c)
	expectBucketRun(mock, key).SetVal([]interface{}{int64(1), int64(9), int64(0)})

	nextCalled := false
	h := NewTokenBucket(cfg, rdb)(func(c echo.Context) error {
		nextCalled = true
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, h(c))
	assert.True(t, nextCalled, "an allowed request must reach the handler")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "9", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewTokenBucket_Denied(t *testing.T) {
	e := echo.New()
	cfg := rateTestConfig()
	rdb, mock := redismock.NewClientMock()

	c, rec := newRateContext(e)
	key := buildRateKey(cfg, c)
	expectBucketRun(mock, key).SetVal([]interface{}{int64(0), int64(0), int64(2500)})

	nextCalled := false
	h := NewTokenBucket(cfg, rdb)(func(c echo.Context) error {
		nextCalled = true
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, h(c))
	assert.False(t, nextCalled, "an exhausted bucket must not reach the handler")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	// 2500ms rounds up to the next whole second
	assert.Equal(t, "3", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, rec.Body.String(), `"too_many_requests"`)
	assert.Contains(t, rec.Body.String(), `"retry_after":3`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewTokenBucket_RedisErrorFailsOpen(t *testing.T) {
	e := echo.New()
	cfg := rateTestConfig()
	rdb, mock := redismock.NewClientMock()

	c, rec := newRateContext(e)
	key := buildRateKey(cfg, c)
	expectBucketRun(mock, key).SetErr(errors.New("connection refused"))

	nextCalled := false
	h := NewTokenBucket(cfg, rdb)(func(c echo.Context) error {
		nextCalled = true
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, h(c))
	assert.True(t, nextCalled, "a Redis outage must not block bookings")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewTokenBucket_DisabledIsPassThrough(t *testing.T) {
	e := echo.New()
	cfg := rateTestConfig()
	cfg.Enabled = false

	c, rec := newRateContext(e)
	nextCalled := false
	h := NewTokenBucket(cfg, nil)(func(c echo.Context) error {
		nextCalled = true
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, h(c))
	assert.True(t, nextCalled)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	c, _ := newRateContext(e)

	cfg := rateTestConfig()
	assert.Equal(t, "rl:ip:192.0.2.1:route:POST /v1/reservations", buildRateKey(cfg, c))

	cfg.KeyStrategy = "ip"
	assert.Equal(t, "rl:ip:192.0.2.1", buildRateKey(cfg, c))

	cfg.KeyStrategy = "route"
	assert.Equal(t, "rl:route:POST /v1/reservations", buildRateKey(cfg, c))
}
