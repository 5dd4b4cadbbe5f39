package util

import (
	"net"
	"net/http"
	"strings"

	"github.com/sessiongate/sessiongate/log"
)

//nolint:gochecknoglobals
var (
	// Version of the application, set with ldflags
	Version = "undefined"

	// BuildTime of the application, set with ldflags
	BuildTime = "undefined"
)

// FatalOnError logs the error and exits the process if err is not nil
func FatalOnError(message string, err error) {
	if err != nil {
		log.Log().Fatal(message, err)
	}
}

// NewHTTPTransport returns a new Transport with the same defaults as net/http.
func NewHTTPTransport() *http.Transport {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return &http.Transport{}
	}

	return base.Clone()
}

// HTTPClientIP returns the client IP of the request. The leftmost address of
// X-Forwarded-For wins over RemoteAddr.
func HTTPClientIP(r *http.Request) net.IP {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without port
		return net.ParseIP(r.RemoteAddr)
	}

	return net.ParseIP(ip)
}
