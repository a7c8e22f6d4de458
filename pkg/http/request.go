package http

import (
	"net"
	"net/http"
	"strings"
)

// IPConfig holds configuration for IP extraction
type IPConfig struct {
	TrustedProxies []string // CIDR ranges or single addresses of trusted proxies
}

// ExtractClientIP returns the address a request should be attributed to.
// Forwarding headers are honoured only when the direct peer is a trusted
// proxy; otherwise a client could pick its own lockout key.
//
// Flow:
// 1. If request is from trusted proxy, take the first valid X-Forwarded-For entry
// 2. If request is from trusted proxy, check X-Real-IP header
// 3. Fall back to RemoteAddr
//
// IPv4-mapped IPv6 addresses (::ffff:1.2.3.4) are reported in IPv4 form.
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	remoteIP := getRemoteAddr(r)

	if config != nil && isTrustedProxy(remoteIP, config.TrustedProxies) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			for _, ip := range strings.Split(xff, ",") {
				ip = strings.TrimSpace(ip)
				if isValidIP(ip) {
					return normalizeIP(ip)
				}
			}
		}

		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" && isValidIP(xri) {
			return normalizeIP(xri)
		}
	}

	return normalizeIP(remoteIP)
}

// getRemoteAddr extracts the IP address from RemoteAddr (removing port if present)
func getRemoteAddr(r *http.Request) string {
	if r.RemoteAddr != "" {
		if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return ip
		}
		return r.RemoteAddr
	}
	return "unknown"
}

func normalizeIP(ip string) string {
	if rest, ok := strings.CutPrefix(ip, "::ffff:"); ok && net.ParseIP(rest).To4() != nil {
		return rest
	}
	return ip
}

// isTrustedProxy checks if an IP address matches any trusted proxy entry
func isTrustedProxy(ip string, trustedProxies []string) bool {
	if len(trustedProxies) == 0 {
		return false
	}

	clientIP := net.ParseIP(ip)
	if clientIP == nil {
		return false
	}

	for _, entry := range trustedProxies {
		if !strings.Contains(entry, "/") {
			if proxyIP := net.ParseIP(entry); proxyIP != nil && proxyIP.Equal(clientIP) {
				return true
			}
			continue
		}
		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			continue // Skip invalid CIDR ranges
		}
		if ipNet.Contains(clientIP) {
			return true
		}
	}

	return false
}

func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
