// Package config loads the dynup configuration file, validates it, and
// turns it into the provider catalog and runtime settings consumed by
// the update engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileConfig is the configuration file schema. YAML is the primary
// format; a .toml extension selects TOML with the same field names.
type FileConfig struct {
	// Top-level scalar options.
	FakeAddress  bool   `yaml:"fake-address" toml:"fake-address"`
	CacheDir     string `yaml:"cache-dir,omitempty" toml:"cache-dir,omitempty"`
	Period       int    `yaml:"period,omitempty" toml:"period,omitempty"`
	Iterations   int    `yaml:"iterations,omitempty" toml:"iterations,omitempty"`
	ForcedUpdate int    `yaml:"forced-update,omitempty" toml:"forced-update,omitempty"`
	Iface        string `yaml:"iface,omitempty" toml:"iface,omitempty"`

	// Provider sections: built-in providers titled by type name,
	// custom providers titled freely.
	Providers []ProviderSection `yaml:"providers,omitempty" toml:"providers,omitempty"`
	Custom    []CustomSection   `yaml:"custom,omitempty" toml:"custom,omitempty"`
}

// ProviderSection configures one built-in DDNS provider.
type ProviderSection struct {
	// Name selects the plugin, e.g. "default@dyndns.org".
	Name string `yaml:"name" toml:"name"`

	Username string   `yaml:"username,omitempty" toml:"username,omitempty"`
	Password string   `yaml:"password,omitempty" toml:"password,omitempty"`
	Hostname []string `yaml:"hostname,omitempty" toml:"hostname,omitempty"`
	// Alias is the deprecated name for hostname, migrated during
	// validation when hostname is empty.
	Alias    []string `yaml:"alias,omitempty" toml:"alias,omitempty"`
	SSL      bool     `yaml:"ssl" toml:"ssl"`
	Wildcard bool     `yaml:"wildcard" toml:"wildcard"`
}

// CustomSection configures one user-described DDNS endpoint. It carries
// every ProviderSection field plus the custom-only settings.
type CustomSection struct {
	Name string `yaml:"name" toml:"name"`

	Username string   `yaml:"username,omitempty" toml:"username,omitempty"`
	Password string   `yaml:"password,omitempty" toml:"password,omitempty"`
	Hostname []string `yaml:"hostname,omitempty" toml:"hostname,omitempty"`
	Alias    []string `yaml:"alias,omitempty" toml:"alias,omitempty"`
	SSL      bool     `yaml:"ssl" toml:"ssl"`
	Wildcard bool     `yaml:"wildcard" toml:"wildcard"`

	AppendMyIP    bool     `yaml:"append-myip" toml:"append-myip"`
	DDNSServer    string   `yaml:"ddns-server,omitempty" toml:"ddns-server,omitempty"`
	DDNSPath      string   `yaml:"ddns-path,omitempty" toml:"ddns-path,omitempty"`
	DDNSResponse  []string `yaml:"ddns-response,omitempty" toml:"ddns-response,omitempty"`
	CheckIPServer string   `yaml:"checkip-server,omitempty" toml:"checkip-server,omitempty"`
	CheckIPPath   string   `yaml:"checkip-path,omitempty" toml:"checkip-path,omitempty"`
}

// envVarPattern matches ${VAR} or ${VAR:-default} syntax.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// InterpolateEnvVars replaces ${VAR} patterns with environment variable
// values. Supports ${VAR:-default} syntax for default values.
func InterpolateEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultValue := ""
		if len(groups) >= 3 {
			defaultValue = groups[2]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

// interpolateEnvVars interpolates environment variables in every string
// field of the configuration. Credentials in particular are commonly
// injected this way.
func (c *FileConfig) interpolateEnvVars() {
	c.CacheDir = InterpolateEnvVars(c.CacheDir)
	c.Iface = InterpolateEnvVars(c.Iface)

	for i := range c.Providers {
		p := &c.Providers[i]
		p.Username = InterpolateEnvVars(p.Username)
		p.Password = InterpolateEnvVars(p.Password)
		for j := range p.Hostname {
			p.Hostname[j] = InterpolateEnvVars(p.Hostname[j])
		}
		for j := range p.Alias {
			p.Alias[j] = InterpolateEnvVars(p.Alias[j])
		}
	}

	for i := range c.Custom {
		s := &c.Custom[i]
		s.Username = InterpolateEnvVars(s.Username)
		s.Password = InterpolateEnvVars(s.Password)
		for j := range s.Hostname {
			s.Hostname[j] = InterpolateEnvVars(s.Hostname[j])
		}
		for j := range s.Alias {
			s.Alias[j] = InterpolateEnvVars(s.Alias[j])
		}
		s.DDNSServer = InterpolateEnvVars(s.DDNSServer)
		s.DDNSPath = InterpolateEnvVars(s.DDNSPath)
		for j := range s.DDNSResponse {
			s.DDNSResponse[j] = InterpolateEnvVars(s.DDNSResponse[j])
		}
		s.CheckIPServer = InterpolateEnvVars(s.CheckIPServer)
		s.CheckIPPath = InterpolateEnvVars(s.CheckIPPath)
	}
}

// LoadFile reads and decodes a configuration file. The decoder is
// chosen by extension: .toml selects TOML, everything else is parsed as
// YAML. Environment variables in ${VAR} format are interpolated.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg FileConfig
	switch filepath.Ext(path) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing TOML config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
	}

	cfg.interpolateEnvVars()

	return &cfg, nil
}
