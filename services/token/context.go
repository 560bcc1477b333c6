package token

import (
	"net"
	"net/http"
	"strings"
)

// DeviceContextFromRequest captures the device fingerprint for a token
// issuance. The IP resolution order is: first entry of X-Forwarded-For,
// then the connection's remote address, then "unknown".
func DeviceContextFromRequest(r *http.Request) DeviceContext {
	userAgent := r.Header.Get("User-Agent")
	if userAgent == "" {
		userAgent = "unknown"
	}

	ipAddress := ""
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		ipAddress = strings.TrimSpace(first)
	}
	if ipAddress == "" && r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ipAddress = host
		} else {
			ipAddress = r.RemoteAddr
		}
	}
	if ipAddress == "" {
		ipAddress = "unknown"
	}

	return DeviceContext{
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}
}
