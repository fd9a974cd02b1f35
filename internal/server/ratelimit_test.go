package server

import (
	"log/slog"
	"net/http/httptest"
	"testing"

	"salaryscope/internal/errors"
)

func TestParseFirstIP(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"single ip", "192.168.1.1", "192.168.1.1"},
		{"comma separated list", "203.0.113.5, 192.168.1.1", "203.0.113.5"},
		{"list with spaces", "  203.0.113.5 , 10.0.0.1", "203.0.113.5"},
		{"first entry invalid", "not-an-ip, 203.0.113.5", "203.0.113.5"},
		{"ipv6", "2001:db8::1", "2001:db8::1"},
		{"all invalid", "foo, bar", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFirstIP(tt.input); got != tt.expected {
				t.Errorf("parseFirstIP(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expected   string
	}{
		{
			name:       "x-forwarded-for wins",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"},
			expected:   "203.0.113.5",
		},
		{
			name:       "x-real-ip second",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			expected:   "203.0.113.9",
		},
		{
			name:       "invalid x-real-ip ignored",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "not-an-ip"},
			expected:   "10.0.0.1",
		},
		{
			name:       "remote addr fallback",
			remoteAddr: "10.0.0.1:1234",
			expected:   "10.0.0.1",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "10.0.0.1",
			expected:   "10.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/analyze", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := getClientIP(r); got != tt.expected {
				t.Errorf("getClientIP = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestGetRateLimitKey(t *testing.T) {
	tests := []struct {
		name     string
		byAPIKey bool
		byIP     bool
		headers  map[string]string
		expected string
	}{
		{
			name:     "api key preferred",
			byAPIKey: true,
			byIP:     true,
			headers:  map[string]string{"X-API-Key": "secret-key-123"},
			expected: "api:secret-key-123",
		},
		{
			name:     "bearer token as api key",
			byAPIKey: true,
			byIP:     false,
			headers:  map[string]string{"Authorization": "Bearer token-456"},
			expected: "api:token-456",
		},
		{
			name:     "falls back to ip without api key",
			byAPIKey: true,
			byIP:     true,
			expected: "ip:10.0.0.1",
		},
		{
			name:     "ip only",
			byAPIKey: false,
			byIP:     true,
			headers:  map[string]string{"X-API-Key": "secret-key-123"},
			expected: "ip:10.0.0.1",
		},
		{
			name:     "neither dimension yields no key",
			byAPIKey: false,
			byIP:     false,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/analyze", nil)
			r.RemoteAddr = "10.0.0.1:1234"
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := getRateLimitKey(r, tt.byAPIKey, tt.byIP); got != tt.expected {
				t.Errorf("getRateLimitKey = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestExtractAPIKey(t *testing.T) {
	r := httptest.NewRequest("GET", "/health", nil)
	if extractAPIKey(r) != "" {
		t.Error("expected empty key without headers")
	}

	r.Header.Set("Authorization", "Bearer bearer-key")
	if got := extractAPIKey(r); got != "bearer-key" {
		t.Errorf("expected bearer key, got %q", got)
	}

	// X-API-Key wins over the Authorization header
	r.Header.Set("X-API-Key", "header-key")
	if got := extractAPIKey(r); got != "header-key" {
		t.Errorf("expected header key, got %q", got)
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "****"},
		{"short", "****"},
		{"12345678", "****"},
		{"123456789", "12345678****"},
		{"sk-abcdef123456", "sk-abcde****"},
	}

	for _, tt := range tests {
		if got := maskAPIKey(tt.input); got != tt.expected {
			t.Errorf("maskAPIKey(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestRateLimiterAllow(t *testing.T) {
	limiter := NewRateLimiter(60, 2, errors.NewLogger(slog.LevelError))
	defer limiter.Close()

	// Burst capacity allows the first two, then the bucket is empty
	if !limiter.Allow("ip:10.0.0.1") {
		t.Error("first request should be allowed")
	}
	if !limiter.Allow("ip:10.0.0.1") {
		t.Error("second request should be allowed within burst")
	}
	if limiter.Allow("ip:10.0.0.1") {
		t.Error("third immediate request should be rejected")
	}

	// Keys are independent buckets
	if !limiter.Allow("ip:10.0.0.2") {
		t.Error("a different key should have its own bucket")
	}

	stats := limiter.GetStats()
	if stats["active_limiters"].(int) != 2 {
		t.Errorf("expected 2 active limiters, got %v", stats["active_limiters"])
	}
	if stats["burst_capacity"].(int) != 2 {
		t.Errorf("expected burst capacity 2, got %v", stats["burst_capacity"])
	}
}
