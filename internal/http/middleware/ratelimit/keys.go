package ratelimit

import (
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ClientIP charges the request to the caller address.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return "ip:" + host
	}
	if r.RemoteAddr != "" {
		return "ip:" + r.RemoteAddr
	}
	return "ip:unknown"
}

// DriverKey charges the request to the driver named by the chi URL param,
// falling back to the caller address. Must run after routing (r.With).
func DriverKey(param string) KeyFunc {
	return func(r *http.Request) string {
		if id := strings.TrimSpace(chi.URLParam(r, param)); id != "" {
			return "driver:" + id
		}
		return ClientIP(r)
	}
}
