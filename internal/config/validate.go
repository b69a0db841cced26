package config

import (
	"fmt"
	"strings"

	"gitlab.bluewillows.net/root/dynup/pkg/ddns"
	"gitlab.bluewillows.net/root/dynup/pkg/plugin"
)

// ValidationError aggregates every configuration validation failure.
// Any validation failure is fatal: no partial catalog is produced.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration error: %s", e.Errors[0])
	}
	return fmt.Sprintf("configuration errors:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// validate runs the validation passes in fixed order: each provider
// section, then each custom section. Global options never fail
// validation (out-of-range values are repaired during extraction).
// Alias migration mutates the sections in place.
func (c *FileConfig) validate(reg *plugin.Registry) error {
	var errs []string

	for i := range c.Providers {
		if err := c.Providers[i].validate(reg); err != nil {
			errs = append(errs, err.Error())
		}
	}
	for i := range c.Custom {
		if err := c.Custom[i].validate(reg); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// validate checks one built-in provider section. The section name is
// mandatory: it selects the plugin.
func (s *ProviderSection) validate(reg *plugin.Registry) error {
	if s.Name == "" {
		return fmt.Errorf("provider section without a name")
	}
	return validateCommon(s.Name, false, s.Username, s.Password, &s.Hostname, &s.Alias, reg)
}

// validate checks one custom section. The update server is mandatory;
// the rest follows the common rules under the custom pseudo-name.
func (s *CustomSection) validate(reg *plugin.Registry) error {
	if s.DDNSServer == "" {
		return fmt.Errorf("custom provider %q: missing 'ddns-server'", s.Name)
	}
	return validateCommon(plugin.CustomName, true, s.Username, s.Password, &s.Hostname, &s.Alias, reg)
}

// validateCommon applies the rules shared by provider and custom
// sections, stopping at the first failure. Custom providers
// authenticate against a server-defined mechanism, so their credentials
// are not required here.
func validateCommon(name string, custom bool, username, password string, hostname, alias *[]string, reg *plugin.Registry) error {
	if _, ok := reg.Find(name); !ok {
		return fmt.Errorf("invalid DDNS provider %q", name)
	}
	if !custom && username == "" {
		return fmt.Errorf("missing username for DDNS provider %q", name)
	}
	if !custom && password == "" {
		return fmt.Errorf("missing password for DDNS provider %q", name)
	}
	if err := migrateAlias(name, hostname, alias); err != nil {
		return err
	}
	return validateHostnames(name, *hostname)
}

// migrateAlias converts the deprecated 'alias' list to 'hostname'.
// Setting both is ambiguous and fails; alias alone is copied over in
// order and discarded.
func migrateAlias(name string, hostname, alias *[]string) error {
	if len(*alias) == 0 {
		return nil
	}
	if len(*hostname) > 0 {
		return fmt.Errorf("provider %q: both 'hostname' and 'alias' set, cannot convert deprecated 'alias'", name)
	}
	*hostname = append(*hostname, *alias...)
	*alias = nil
	return nil
}

// validateHostnames requires at least one update target and rejects any
// name over the fixed capacity rather than truncating it.
func validateHostnames(name string, hostnames []string) error {
	if len(hostnames) == 0 {
		return fmt.Errorf("no hostnames listed for DDNS provider %q", name)
	}
	for _, h := range hostnames {
		if len(h) > ddns.MaxHostnameLen {
			return fmt.Errorf("provider %q: hostname %q exceeds %d characters", name, h, ddns.MaxHostnameLen)
		}
	}
	return nil
}
