// Package ddns holds the resolved provider records consumed by the
// update engine, the catalog that owns them, and the builder that merges
// plugin defaults with per-provider configuration.
package ddns

import (
	"encoding/base64"
	"strings"

	"gitlab.bluewillows.net/root/dynup/pkg/endpoint"
	"gitlab.bluewillows.net/root/dynup/pkg/plugin"
)

// Fixed capacities for record fields. Values over capacity are never
// truncated; they are rejected during validation or dropped with a
// warning during construction.
const (
	// MaxHostnameLen is the maximum length of a single update target.
	MaxHostnameLen = 255

	// MaxUsernameLen and MaxPasswordLen bound the credential strings.
	MaxUsernameLen = 64
	MaxPasswordLen = 128

	// MaxPathLen bounds the check-IP and update URL paths.
	MaxPathLen = 255

	// MaxResponseLen bounds a single response pattern.
	MaxResponseLen = 64

	// MaxResponses bounds the response pattern list.
	MaxResponses = 10
)

// Credentials holds the provider login and its derived encoded form.
// The encoded form is built on first use and released on catalog drain.
type Credentials struct {
	Username string
	Password string

	encoded string
}

// Encoded returns the base64 "username:password" form used for HTTP
// basic authentication, computing it on first call.
func (c *Credentials) Encoded() string {
	if c.encoded == "" && (c.Username != "" || c.Password != "") {
		c.encoded = base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.Password))
	}
	return c.encoded
}

// clear releases the derived credential material.
func (c *Credentials) clear() {
	c.encoded = ""
}

// Record is one fully-resolved DDNS provider: plugin defaults merged
// with per-provider configuration. Records are immutable once inserted
// into a Catalog.
type Record struct {
	// Name is the section title: the provider type name for built-in
	// providers, a free-form label for custom ones.
	Name string

	// Plugin is the backing registry entry. Never nil on a
	// successfully built record; shared with the registry, not owned.
	Plugin *plugin.Plugin

	// CheckIP and Server are the resolved check-IP and update
	// endpoints, with their URL paths alongside.
	CheckIP     endpoint.Endpoint
	CheckIPPath string
	Server      endpoint.Endpoint
	Path        string

	Creds Credentials

	// Hostnames are the update targets, in declaration order.
	Hostnames []string

	Wildcard   bool
	SSL        bool
	AppendMyIP bool // custom providers only

	// ResponsePatterns recognize a successful update reply. Non-empty
	// for custom providers (explicit or default-filled).
	ResponsePatterns []string

	// Custom marks records built from custom sections: credentials are
	// optional and the custom-only fields apply.
	Custom bool
}

// MatchesResponse reports whether an update reply body indicates
// success. Custom providers match any configured pattern as a
// substring; built-in providers accept any non-error reply, which the
// generic response set approximates.
func (r *Record) MatchesResponse(body string) bool {
	patterns := r.ResponsePatterns
	if len(patterns) == 0 {
		patterns = plugin.GenericResponses
	}
	for _, p := range patterns {
		if strings.Contains(body, p) {
			return true
		}
	}
	return false
}
