package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimitPerSecond(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tb := NewTokenBucket(2)
	tb.now = func() time.Time { return now }
	tb.lastSec = now.Unix()
	h := Limit(tb, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	codes := func() int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/refresh", nil))
		return rec.Code
	}
	assert.Equal(t, http.StatusNoContent, codes())
	assert.Equal(t, http.StatusNoContent, codes())
	assert.Equal(t, http.StatusTooManyRequests, codes())

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusNoContent, codes())
}

func TestWrapDisabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "")
	t.Setenv("PREVIEW_ALLOW_IPS", "")
	t.Setenv("PREVIEW_ALLOW_CIDRS", "")
	t.Setenv("PREVIEW_ALLOW_LOCAL", "")
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := Wrap(inner)
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
