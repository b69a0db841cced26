// Package endpoint resolves "host[:port]" strings into endpoint values
// used by the provider records and the update engine.
package endpoint

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultHTTPPort is substituted whenever a server string carries no
// usable port suffix.
const DefaultHTTPPort = 80

// MaxHostLen is the maximum accepted host name length. Server strings
// with longer hosts are rejected rather than truncated.
const MaxHostLen = 255

// Endpoint is a resolved server address. The host stays a name; no DNS
// resolution happens at parse time.
type Endpoint struct {
	Host string
	Port int
}

// IsZero reports whether the endpoint has not been set.
func (e Endpoint) IsZero() bool {
	return e.Host == ""
}

// HostPort returns the endpoint in "host:port" form for dialing.
func (e Endpoint) HostPort() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

func (e Endpoint) String() string {
	return e.HostPort()
}

// Parse resolves a "host" or "host:port" string against a default port.
//
// A missing or malformed port is not an error; the default port is used
// instead. Parse fails only when the host component exceeds MaxHostLen,
// which is a capacity guard rather than a semantic check.
func Parse(s string, defaultPort int) (Endpoint, error) {
	host := s
	port := defaultPort

	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		host = s[:idx]
		if p, err := strconv.Atoi(s[idx+1:]); err == nil && p >= 0 {
			port = p
		}
	}

	if len(host) > MaxHostLen {
		return Endpoint{}, fmt.Errorf("server host %q exceeds %d characters", host, MaxHostLen)
	}

	return Endpoint{Host: host, Port: port}, nil
}
