// Package plugin defines the DDNS service descriptors and the registry
// used to look them up by provider name.
package plugin

// CustomName is the pseudo-plugin name under which freely-titled custom
// provider sections are registered and looked up.
const CustomName = "custom"

// Plugin describes one dynamic-DNS service: where to ask for the current
// address and where to send updates. Built-in providers carry complete
// defaults; the custom pseudo-plugin leaves the update server to the
// configuration.
type Plugin struct {
	// Name is the provider type name, e.g. "default@dyndns.org".
	Name string

	// CheckIPServer and CheckIPPath locate the check-IP service,
	// CheckIPServer in "host[:port]" form.
	CheckIPServer string
	CheckIPPath   string

	// Server and Path locate the update service, Server in
	// "host[:port]" form.
	Server string
	Path   string

	// SSLSupported indicates the service accepts HTTPS updates.
	SSLSupported bool

	// WildcardSupported indicates the service honors wildcard hostnames.
	WildcardSupported bool
}

// GenericResponses is the built-in set of reply substrings that indicate
// a successful update. Custom providers without configured response
// strings fall back to this set.
var GenericResponses = []string{
	"good",
	"OK",
	"true",
	"updated",
	"nochg",
}
