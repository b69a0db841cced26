package plugin

import "sync"

// Registry maps provider type names to their plugin descriptors.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]*Plugin
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]*Plugin),
	}
}

// Register adds a plugin to the registry. Registering the same name
// twice overwrites the previous descriptor.
func (r *Registry) Register(p *Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[p.Name] = p
}

// Find returns the plugin registered under name.
func (r *Registry) Find(name string) (*Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	return p, ok
}

// Names returns the registered plugin names, in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	return names
}

// Builtin returns a registry preloaded with the built-in DDNS service
// descriptors plus the custom pseudo-plugin.
func Builtin() *Registry {
	r := NewRegistry()
	for _, p := range builtinPlugins {
		r.Register(p)
	}
	return r
}

var builtinPlugins = []*Plugin{
	{
		Name:              "default@dyndns.org",
		CheckIPServer:     "checkip.dyndns.org",
		CheckIPPath:       "/",
		Server:            "members.dyndns.org",
		Path:              "/nic/update",
		SSLSupported:      true,
		WildcardSupported: true,
	},
	{
		Name:          "default@freedns.afraid.org",
		CheckIPServer: "freedns.afraid.org",
		CheckIPPath:   "/dynamic/check_ip.php",
		Server:        "freedns.afraid.org",
		Path:          "/dynamic/update.php",
		SSLSupported:  true,
	},
	{
		Name:          "default@no-ip.com",
		CheckIPServer: "ip1.dynupdate.no-ip.com",
		CheckIPPath:   "/",
		Server:        "dynupdate.no-ip.com",
		Path:          "/nic/update",
		SSLSupported:  true,
	},
	{
		Name:          "default@duckdns.org",
		CheckIPServer: "checkip.dyndns.org",
		CheckIPPath:   "/",
		Server:        "www.duckdns.org",
		Path:          "/update",
		SSLSupported:  true,
	},
	{
		Name:              "default@easydns.com",
		CheckIPServer:     "checkip.dyndns.org",
		CheckIPPath:       "/",
		Server:            "api.cp.easydns.com",
		Path:              "/dyn/generic.php",
		SSLSupported:      true,
		WildcardSupported: true,
	},
	{
		// The custom pseudo-plugin carries check-IP defaults only; the
		// update server comes from the custom section itself.
		Name:          CustomName,
		CheckIPServer: "checkip.dyndns.org",
		CheckIPPath:   "/",
	},
}
