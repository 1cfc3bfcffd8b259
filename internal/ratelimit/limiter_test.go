package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryLimiter_Check(t *testing.T) {
	l := NewMemory()
	defer l.Stop()

	for i := 0; i < 5; i++ {
		assert.True(t, l.Check("login_1.2.3.4", 5, 15*time.Minute), "attempt %d", i+1)
	}
	assert.False(t, l.Check("login_1.2.3.4", 5, 15*time.Minute), "6th attempt must be denied")

	// другой идентификатор не делит бюджет
	assert.True(t, l.Check("pin_login_1.2.3.4", 5, 15*time.Minute))
}

func TestMemoryLimiter_WindowExpiry(t *testing.T) {
	l := NewMemory()
	defer l.Stop()

	window := 50 * time.Millisecond
	for i := 0; i < 5; i++ {
		assert.True(t, l.Check("login_1.2.3.4", 5, window))
	}
	assert.False(t, l.Check("login_1.2.3.4", 5, window))

	time.Sleep(window + 20*time.Millisecond)
	assert.True(t, l.Check("login_1.2.3.4", 5, window), "new window must allow again")
}

func TestMemoryLimiter_ResetTime(t *testing.T) {
	l := NewMemory()
	defer l.Stop()

	assert.Zero(t, l.ResetTime("unknown-id"))

	l.Check("login_1.2.3.4", 5, 15*time.Minute)
	remaining := l.ResetTime("login_1.2.3.4")
	assert.Greater(t, remaining, 14*time.Minute)
	assert.LessOrEqual(t, remaining, 15*time.Minute)
}

func TestMemoryLimiter_Reset(t *testing.T) {
	l := NewMemory()
	defer l.Stop()

	for i := 0; i < 5; i++ {
		l.Check("login_1.2.3.4", 5, 15*time.Minute)
	}
	assert.False(t, l.Check("login_1.2.3.4", 5, 15*time.Minute))

	l.Reset("login_1.2.3.4")
	assert.True(t, l.Check("login_1.2.3.4", 5, 15*time.Minute))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		want       string
	}{
		{
			name:       "x-forwarded-for first entry wins",
			forwarded:  "10.0.0.1, 10.0.0.2",
			realIP:     "10.0.0.3",
			remoteAddr: "10.0.0.4:5555",
			want:       "10.0.0.1",
		},
		{
			name:       "x-real-ip next",
			realIP:     "10.0.0.3",
			remoteAddr: "10.0.0.4:5555",
			want:       "10.0.0.3",
		},
		{
			name:       "socket address last",
			remoteAddr: "10.0.0.4:5555",
			want:       "10.0.0.4",
		},
		{
			name: "unknown fallback",
			want: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/login", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}
