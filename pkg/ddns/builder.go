package ddns

import (
	"fmt"
	"log/slog"

	"gitlab.bluewillows.net/root/dynup/pkg/endpoint"
	"gitlab.bluewillows.net/root/dynup/pkg/plugin"
)

// Section carries the already-validated values of one provider or
// custom configuration section, decoupled from the file format.
type Section struct {
	// Name titles the section: the plugin type name for built-in
	// providers, a free label for custom ones.
	Name string

	Username  string
	Password  string
	Hostnames []string
	SSL       bool
	Wildcard  bool

	// Custom-only fields.
	AppendMyIP    bool
	DDNSServer    string
	DDNSPath      string
	DDNSResponses []string
	CheckIPServer string
	CheckIPPath   string
}

// Build produces one provider record from a validated section, merging
// the plugin's default endpoints with the section's overrides.
//
// A Build failure (unknown plugin, oversized plugin default) means this
// provider is skipped; it does not abort the surrounding load. Oversized
// credential or response values are dropped with a warning and the field
// keeps its prior value.
func Build(sec Section, custom bool, reg *plugin.Registry, logger *slog.Logger) (*Record, error) {
	if logger == nil {
		logger = slog.Default()
	}

	name := sec.Name
	if custom {
		name = plugin.CustomName
	}

	plg, ok := reg.Find(name)
	if !ok {
		return nil, fmt.Errorf("no DDNS plugin for provider %q", name)
	}

	rec := &Record{
		Name:     sec.Name,
		Plugin:   plg,
		Custom:   custom,
		Wildcard: sec.Wildcard,
		SSL:      sec.SSL,
	}

	// Seed endpoints and paths from the plugin defaults. These come
	// from trusted plugin data, so an overflow here is a misconfigured
	// plugin, not a user error.
	if err := seedFromPlugin(rec, plg); err != nil {
		return nil, fmt.Errorf("provider %q: %w", sec.Name, err)
	}

	if sec.Username != "" {
		if len(sec.Username) > MaxUsernameLen {
			logger.Warn("username exceeds capacity, ignoring value",
				slog.String("provider", sec.Name),
				slog.Int("limit", MaxUsernameLen))
		} else {
			rec.Creds.Username = sec.Username
		}
	}
	if sec.Password != "" {
		if len(sec.Password) > MaxPasswordLen {
			logger.Warn("password exceeds capacity, ignoring value",
				slog.String("provider", sec.Name),
				slog.Int("limit", MaxPasswordLen))
		} else {
			rec.Creds.Password = sec.Password
		}
	}

	// Declaration order, no deduplication.
	rec.Hostnames = append(rec.Hostnames, sec.Hostnames...)

	if custom {
		applyCustom(rec, sec, logger)
	}

	return rec, nil
}

// seedFromPlugin fills the record's endpoints and paths from the plugin
// defaults, refusing any default that exceeds the record capacities.
func seedFromPlugin(rec *Record, plg *plugin.Plugin) error {
	var err error

	if plg.CheckIPServer != "" {
		rec.CheckIP, err = endpoint.Parse(plg.CheckIPServer, endpoint.DefaultHTTPPort)
		if err != nil {
			return fmt.Errorf("plugin check-IP server: %w", err)
		}
	}
	if len(plg.CheckIPPath) > MaxPathLen {
		return fmt.Errorf("plugin check-IP path exceeds %d characters", MaxPathLen)
	}
	rec.CheckIPPath = plg.CheckIPPath

	if plg.Server != "" {
		rec.Server, err = endpoint.Parse(plg.Server, endpoint.DefaultHTTPPort)
		if err != nil {
			return fmt.Errorf("plugin update server: %w", err)
		}
	}
	if len(plg.Path) > MaxPathLen {
		return fmt.Errorf("plugin update path exceeds %d characters", MaxPathLen)
	}
	rec.Path = plg.Path

	return nil
}

// applyCustom layers the custom-only section fields over the plugin
// defaults and fills the response pattern set.
func applyCustom(rec *Record, sec Section, logger *slog.Logger) {
	rec.AppendMyIP = sec.AppendMyIP

	if sec.CheckIPServer != "" {
		if ep, err := endpoint.Parse(sec.CheckIPServer, endpoint.DefaultHTTPPort); err == nil {
			rec.CheckIP = ep
		} else {
			logger.Warn("check-IP server exceeds capacity, keeping plugin default",
				slog.String("provider", sec.Name))
		}
	}
	if sec.CheckIPPath != "" {
		if len(sec.CheckIPPath) > MaxPathLen {
			logger.Warn("check-IP path exceeds capacity, keeping plugin default",
				slog.String("provider", sec.Name),
				slog.Int("limit", MaxPathLen))
		} else {
			rec.CheckIPPath = sec.CheckIPPath
		}
	}

	if sec.DDNSServer != "" {
		if ep, err := endpoint.Parse(sec.DDNSServer, endpoint.DefaultHTTPPort); err == nil {
			rec.Server = ep
		} else {
			logger.Warn("update server exceeds capacity, keeping plugin default",
				slog.String("provider", sec.Name))
		}
	}
	if sec.DDNSPath != "" {
		if len(sec.DDNSPath) > MaxPathLen {
			logger.Warn("update path exceeds capacity, keeping plugin default",
				slog.String("provider", sec.Name),
				slog.Int("limit", MaxPathLen))
		} else {
			rec.Path = sec.DDNSPath
		}
	}

	for _, resp := range sec.DDNSResponses {
		if resp == "" {
			continue
		}
		if len(rec.ResponsePatterns) >= MaxResponses {
			logger.Warn("skipping response pattern, capacity reached",
				slog.String("provider", sec.Name),
				slog.String("response", resp),
				slog.Int("limit", MaxResponses))
			continue
		}
		if len(resp) > MaxResponseLen {
			logger.Warn("skipping response pattern, exceeds capacity",
				slog.String("provider", sec.Name),
				slog.Int("limit", MaxResponseLen))
			continue
		}
		rec.ResponsePatterns = append(rec.ResponsePatterns, resp)
	}

	// Without configured response strings a custom provider would have
	// no way to recognize a successful reply, so fall back to the
	// generic set, bounded by the record capacity.
	if len(sec.DDNSResponses) == 0 {
		for _, resp := range plugin.GenericResponses {
			if len(rec.ResponsePatterns) >= MaxResponses {
				break
			}
			rec.ResponsePatterns = append(rec.ResponsePatterns, resp)
		}
	}
}
