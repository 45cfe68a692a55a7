// Package utils provides common utility functions for HTTP operations,
// including IP address extraction behind proxies and load balancers.
package utils

import (
	"net/http"
	"strings"
)

// ExtractClientIP extracts the real client IP address from HTTP request headers.
// It checks headers in the following priority order:
//  1. X-Forwarded-For (takes the first IP if multiple are present)
//  2. X-Real-IP
//  3. RemoteAddr (strips port if present)
//
// Used by the rate limiter to key per-client buckets and by the request
// logger for correlation.
func ExtractClientIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs: "client, proxy1, proxy2"
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		xff = strings.TrimSpace(xff)
		if idx := strings.IndexAny(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	remoteAddr := r.RemoteAddr

	// IPv6 with port: [::1]:8080
	if strings.HasPrefix(remoteAddr, "[") {
		if idx := strings.LastIndex(remoteAddr, "]"); idx != -1 {
			return remoteAddr[1:idx]
		}
	}

	// IPv4 with port: 127.0.0.1:8080
	if idx := strings.LastIndex(remoteAddr, ":"); idx != -1 {
		return remoteAddr[:idx]
	}

	return remoteAddr
}
