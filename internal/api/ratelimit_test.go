package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRateLimiter_Burst(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rps   float64
		burst int
		want  int
	}{
		{name: "explicit burst", rps: 5, burst: 10, want: 10},
		{name: "burst from rate", rps: 2.5, want: 3},
		{name: "slow rate", rps: 0.1, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NewRateLimiter(tt.rps, tt.burst).burst)
		})
	}
}

func TestRateLimiter_RefillAndSweep(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1, 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("a"))

	assert.True(t, l.Allow("b"))
	assert.Len(t, l.clients, 2)

	now = now.Add(idleLimiterTTL + time.Second)
	assert.True(t, l.Allow("c"))
	assert.Len(t, l.clients, 1)
}

func TestClientAddress(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	r.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", clientAddress(r))

	// RealIP leaves a bare address
	r.RemoteAddr = "203.0.113.9"
	assert.Equal(t, "203.0.113.9", clientAddress(r))
}

func TestRetryAfter(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1, retryAfter(10))
	assert.Equal(t, 4, retryAfter(0.25))
	assert.Equal(t, 1, retryAfter(0))
}
