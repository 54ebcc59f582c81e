package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterRefills(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 2)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))

	now = now.Add(time.Hour)
	assert.Equal(t, 2, rl.Evict(now.Add(-10*time.Minute)))
}

func callback(phone string) *http.Request {
	form := url.Values{"sessionId": {"ATUid_1"}, "phoneNumber": {phone}, "text": {"1"}}
	req := httptest.NewRequest(http.MethodPost, "/ussd", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "10.0.0.7:5000"
	return req
}

func TestRateLimitByPhoneNumber(t *testing.T) {
	rl := NewRateLimiter(0, 1)
	var gotPhone string
	h := rl.Middleware(ByFormField("phoneNumber"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotPhone = r.Form.Get("phoneNumber")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, callback("+254711001122"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "+254711001122", gotPhone)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, callback("+254711001122"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// Same gateway address, different handset.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, callback("+254722334455"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestByClientIPPrefersRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.7:5000"
	assert.Equal(t, "10.0.0.7:5000", ByClientIP(req))
	req.Header.Set("X-Real-Ip", "196.201.214.200")
	assert.Equal(t, "196.201.214.200", ByClientIP(req))
	assert.Equal(t, "196.201.214.200", ByFormField("phoneNumber")(req))
}
