package http_test

import (
	"net/http/httptest"
	"testing"

	pkghttp "github.com/BradenHooton/scribe/pkg/http"
	"github.com/stretchr/testify/assert"
)

// Forwarding headers must only be trusted from configured proxies, otherwise a
// client can rotate its lockout key at will.
func TestExtractClientIP(t *testing.T) {
	internal := &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.0/8", "127.0.0.1/32"}}

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		config     *pkghttp.IPConfig
		want       string
	}{
		{
			name:       "direct client ignores spoofed headers",
			remoteAddr: "203.0.113.10:54321",
			headers:    map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8", "X-Real-IP": "192.168.1.1"},
			config:     internal,
			want:       "203.0.113.10",
		},
		{
			name:       "trusted proxy uses first forwarded entry",
			remoteAddr: "10.0.0.5:54321",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.42, 203.0.113.43, 10.0.0.5"},
			config:     internal,
			want:       "203.0.113.42",
		},
		{
			name:       "trusted proxy skips invalid forwarded entries",
			remoteAddr: "10.0.0.5:54321",
			headers:    map[string]string{"X-Forwarded-For": "unknown, 198.51.100.3"},
			config:     internal,
			want:       "198.51.100.3",
		},
		{
			name:       "trusted proxy falls back to X-Real-IP",
			remoteAddr: "10.0.0.5:54321",
			headers:    map[string]string{"X-Real-IP": "203.0.113.99"},
			config:     internal,
			want:       "203.0.113.99",
		},
		{
			name:       "ipv6 proxy range",
			remoteAddr: "[::1]:54321",
			headers:    map[string]string{"X-Forwarded-For": "2001:db8::1"},
			config:     &pkghttp.IPConfig{TrustedProxies: []string{"::1/128"}},
			want:       "2001:db8::1",
		},
		{
			name:       "nil config trusts only the peer",
			remoteAddr: "203.0.113.10:54321",
			headers:    map[string]string{"X-Forwarded-For": "1.2.3.4"},
			want:       "203.0.113.10",
		},
		{
			name:       "empty proxy list trusts only the peer",
			remoteAddr: "203.0.113.10:54321",
			headers:    map[string]string{"X-Forwarded-For": "1.2.3.4"},
			config:     &pkghttp.IPConfig{TrustedProxies: []string{}},
			want:       "203.0.113.10",
		},
		{
			name:       "invalid CIDR entries are skipped",
			remoteAddr: "203.0.113.10:54321",
			headers:    map[string]string{"X-Forwarded-For": "1.2.3.4"},
			config:     &pkghttp.IPConfig{TrustedProxies: []string{"invalid-cidr-range", "10.0.0.0/99"}},
			want:       "203.0.113.10",
		},
		{
			name:       "claiming localhost from outside does not help",
			remoteAddr: "203.0.113.10:54321",
			headers:    map[string]string{"X-Forwarded-For": "127.0.0.1, 203.0.113.10"},
			config:     &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.0/8"}},
			want:       "203.0.113.10",
		},
		{
			name:       "mapped ipv4 peer is reported as ipv4",
			remoteAddr: "[::ffff:127.0.0.1]:40000",
			want:       "127.0.0.1",
		},
		{
			name:       "mapped ipv4 in forwarded header",
			remoteAddr: "10.0.0.5:54321",
			headers:    map[string]string{"X-Forwarded-For": "::ffff:198.51.100.7"},
			config:     internal,
			want:       "198.51.100.7",
		},
		{
			name:       "bare proxy address is trusted",
			remoteAddr: "10.0.0.5:54321",
			headers:    map[string]string{"X-Real-IP": "203.0.113.99"},
			config:     &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.5"}},
			want:       "203.0.113.99",
		},
		{
			name:       "other bare proxy address is not",
			remoteAddr: "10.0.0.5:54321",
			headers:    map[string]string{"X-Real-IP": "203.0.113.99"},
			config:     &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.6"}},
			want:       "10.0.0.5",
		},
		{
			name:       "remote address without port",
			remoteAddr: "198.51.100.20",
			want:       "198.51.100.20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tt.want, pkghttp.ExtractClientIP(req, tt.config))
		})
	}
}
