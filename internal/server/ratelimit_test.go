package server

import (
	"net/http/httptest"
	"testing"

	"talentscout/internal/errors"
)

func newTestRateLimiter(t *testing.T, requestsPerMin, burst int) *RateLimiter {
	t.Helper()

	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	m := NewRateLimiter(requestsPerMin, burst, logger)
	t.Cleanup(m.Close)
	return m
}

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	m := newTestRateLimiter(t, 60, 3)

	for i := range 3 {
		if !m.Allow("client-a") {
			t.Fatalf("request %d within burst was denied", i+1)
		}
	}
	if m.Allow("client-a") {
		t.Error("request beyond burst capacity was allowed")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	m := newTestRateLimiter(t, 60, 1)

	if !m.Allow("client-a") {
		t.Fatal("first request for client-a was denied")
	}
	if m.Allow("client-a") {
		t.Error("second request for client-a exceeded burst but was allowed")
	}
	if !m.Allow("client-b") {
		t.Error("client-b was throttled by client-a's usage")
	}
}

func TestRateLimiterGetStats(t *testing.T) {
	m := newTestRateLimiter(t, 120, 5)

	m.Allow("client-a")
	m.Allow("client-b")

	stats := m.GetStats()
	if stats["active_limiters"] != 2 {
		t.Errorf("active_limiters = %v, expected 2", stats["active_limiters"])
	}
	if stats["burst_capacity"] != 5 {
		t.Errorf("burst_capacity = %v, expected 5", stats["burst_capacity"])
	}
	if stats["rate_per_minute"] != 120.0 {
		t.Errorf("rate_per_minute = %v, expected 120", stats["rate_per_minute"])
	}
}

func TestGetRateLimitKey(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		byAPIKey bool
		byIP     bool
		expected string
	}{
		{
			name:     "api key header preferred",
			headers:  map[string]string{"X-API-Key": "abc123"},
			byAPIKey: true,
			byIP:     true,
			expected: "api:abc123",
		},
		{
			name:     "bearer token fallback",
			headers:  map[string]string{"Authorization": "Bearer xyz789"},
			byAPIKey: true,
			byIP:     false,
			expected: "api:xyz789",
		},
		{
			name:     "ip fallback when no api key",
			headers:  map[string]string{},
			byAPIKey: true,
			byIP:     true,
			expected: "ip:192.0.2.1",
		},
		{
			name:     "no keying configured",
			headers:  map[string]string{"X-API-Key": "abc123"},
			byAPIKey: false,
			byIP:     false,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/chat", nil)
			r.RemoteAddr = "192.0.2.1:52341"
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			if got := getRateLimitKey(r, tt.byAPIKey, tt.byIP); got != tt.expected {
				t.Errorf("getRateLimitKey() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{
			name:       "x-forwarded-for first valid ip",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 192.0.2.1"},
			remoteAddr: "10.0.0.1:1234",
			expected:   "203.0.113.7",
		},
		{
			name:       "x-forwarded-for with garbage falls through",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip", "X-Real-IP": "198.51.100.2"},
			remoteAddr: "10.0.0.1:1234",
			expected:   "198.51.100.2",
		},
		{
			name:       "remote addr fallback",
			headers:    map[string]string{},
			remoteAddr: "10.0.0.1:1234",
			expected:   "10.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/chat", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			if got := getClientIP(r); got != tt.expected {
				t.Errorf("getClientIP() = %q, expected %q", got, tt.expected)
			}
		})
	}
}
