package config

import (
	"fmt"
	"log/slog"

	"gitlab.bluewillows.net/root/dynup/internal/metrics"
	"gitlab.bluewillows.net/root/dynup/pkg/ddns"
	"gitlab.bluewillows.net/root/dynup/pkg/plugin"
)

// LoadOptions extends the runtime overrides with the collaborators a
// load needs. Zero values select the built-in plugin registry and the
// default logger.
type LoadOptions struct {
	Options

	Registry *plugin.Registry
	Logger   *slog.Logger
}

// Load runs the whole configuration pipeline: read and decode the file,
// validate it, extract the runtime settings, and build one provider
// record per section into a fresh catalog.
//
// File, decode, and validation failures are fatal: no partial catalog
// is returned. A provider that fails to build (unknown plugin,
// oversized plugin default) is skipped with a warning and the load
// continues; the caller gets the reduced but consistent catalog.
func Load(path string, opts LoadOptions) (*ddns.Catalog, *Settings, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := opts.Registry
	if reg == nil {
		reg = plugin.Builtin()
	}

	fileCfg, err := LoadFile(path)
	if err != nil {
		return nil, nil, err
	}

	if err := fileCfg.validate(reg); err != nil {
		return nil, nil, err
	}

	settings := extractSettings(fileCfg, opts.Options)

	catalog := ddns.NewCatalog()

	for i := range fileCfg.Providers {
		buildInto(catalog, fileCfg.Providers[i].section(), false, reg, logger)
	}
	for i := range fileCfg.Custom {
		buildInto(catalog, fileCfg.Custom[i].section(), true, reg, logger)
	}

	metrics.ProvidersLoaded.Set(float64(catalog.Len()))

	logger.Info("configuration loaded",
		slog.String("path", path),
		slog.Int("providers", catalog.Len()),
		slog.Int("period", settings.Period),
	)

	return catalog, settings, nil
}

// buildInto builds one record and inserts it, downgrading construction
// failures to a logged skip.
func buildInto(catalog *ddns.Catalog, sec ddns.Section, custom bool, reg *plugin.Registry, logger *slog.Logger) {
	rec, err := ddns.Build(sec, custom, reg, logger)
	if err != nil {
		metrics.ProvidersSkipped.Inc()
		logger.Warn("skipping DDNS provider",
			slog.String("provider", sec.Name),
			slog.String("error", err.Error()))
		return
	}
	catalog.Insert(rec)
}

// section converts a validated provider section to the builder's input.
func (s *ProviderSection) section() ddns.Section {
	return ddns.Section{
		Name:      s.Name,
		Username:  s.Username,
		Password:  s.Password,
		Hostnames: s.Hostname,
		SSL:       s.SSL,
		Wildcard:  s.Wildcard,
	}
}

// section converts a validated custom section to the builder's input.
func (s *CustomSection) section() ddns.Section {
	return ddns.Section{
		Name:          s.Name,
		Username:      s.Username,
		Password:      s.Password,
		Hostnames:     s.Hostname,
		SSL:           s.SSL,
		Wildcard:      s.Wildcard,
		AppendMyIP:    s.AppendMyIP,
		DDNSServer:    s.DDNSServer,
		DDNSPath:      s.DDNSPath,
		DDNSResponses: s.DDNSResponse,
		CheckIPServer: s.CheckIPServer,
		CheckIPPath:   s.CheckIPPath,
	}
}

// CheckConfig loads and validates a configuration without keeping the
// result, returning a printable summary line per provider.
func CheckConfig(path string, opts LoadOptions) ([]string, error) {
	catalog, settings, err := Load(path, opts)
	if err != nil {
		return nil, err
	}
	defer catalog.Drain()

	lines := []string{
		fmt.Sprintf("period=%ds forced-update=%ds iterations=%d cache-dir=%s",
			settings.Period, settings.ForcedUpdate, settings.Iterations, settings.CacheDir),
	}
	for it := catalog.Iter(); ; {
		rec := it.Next()
		if rec == nil {
			break
		}
		kind := "provider"
		if rec.Custom {
			kind = "custom"
		}
		lines = append(lines, fmt.Sprintf("%s %q: server=%s%s hostnames=%d",
			kind, rec.Name, rec.Server.HostPort(), rec.Path, len(rec.Hostnames)))
	}
	return lines, nil
}
