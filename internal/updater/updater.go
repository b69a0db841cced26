// Package updater drives the DDNS update cycle: detect the current
// address, compare against the per-provider cache, and send updates for
// every hostname that changed or passed the forced-update deadline.
package updater

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"gitlab.bluewillows.net/root/dynup/internal/cache"
	"gitlab.bluewillows.net/root/dynup/internal/config"
	"gitlab.bluewillows.net/root/dynup/internal/ipdetect"
	"gitlab.bluewillows.net/root/dynup/internal/metrics"
	"gitlab.bluewillows.net/root/dynup/pkg/ddns"
	"gitlab.bluewillows.net/root/dynup/pkg/httputil"
)

// maxReplyBytes bounds how much of an update reply is read for
// response-pattern matching.
const maxReplyBytes = 16 * 1024

// Updater owns one update loop over a provider catalog.
type Updater struct {
	catalog  *ddns.Catalog
	settings *config.Settings
	store    *cache.Store
	client   *http.Client
	detector ipdetect.Detector
	observer func(Result)
	logger   *slog.Logger
}

// Option is a functional option for configuring the Updater.
type Option func(*Updater)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(u *Updater) { u.logger = logger }
}

// WithHTTPClient overrides the HTTP client used for check-IP probes and
// updates.
func WithHTTPClient(client *http.Client) Option {
	return func(u *Updater) { u.client = client }
}

// WithDetector overrides address detection for every provider, e.g. to
// use DNS-based detection instead of the per-provider check-IP URL.
func WithDetector(d ipdetect.Detector) Option {
	return func(u *Updater) { u.detector = d }
}

// WithCycleObserver registers a callback invoked with the result of
// every update cycle, e.g. to feed a readiness endpoint.
func WithCycleObserver(fn func(Result)) Option {
	return func(u *Updater) { u.observer = fn }
}

// New creates an Updater over a loaded catalog and its settings.
func New(catalog *ddns.Catalog, settings *config.Settings, opts ...Option) (*Updater, error) {
	u := &Updater{
		catalog:  catalog,
		settings: settings,
		store:    cache.New(settings.CacheDir),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}

	if u.client == nil {
		client, err := httputil.NewClient(&httputil.ClientConfig{
			Iface:  settings.Iface,
			Logger: u.logger,
		})
		if err != nil {
			return nil, err
		}
		u.client = client
	}

	return u, nil
}

// Result summarizes one update cycle.
type Result struct {
	Updated int // updates accepted by the provider
	Skipped int // hostnames whose address was already current
	Failed  int // detection or update failures
}

// RunOnce performs a single update cycle over every catalog record.
func (u *Updater) RunOnce(ctx context.Context) Result {
	start := time.Now()
	var res Result

	for it := u.catalog.Iter(); ; {
		rec := it.Next()
		if rec == nil {
			break
		}
		u.updateProvider(ctx, rec, &res)
	}

	metrics.UpdateDuration.Observe(time.Since(start).Seconds())
	if u.observer != nil {
		u.observer(res)
	}
	return res
}

// Run loops RunOnce honoring the configured period, iteration count,
// and error-retry period, until the context is canceled or the
// iteration budget is spent.
func (u *Updater) Run(ctx context.Context) error {
	for iteration := 1; ; iteration++ {
		res := u.RunOnce(ctx)
		u.logger.Info("update cycle finished",
			slog.Int("iteration", iteration),
			slog.Int("updated", res.Updated),
			slog.Int("skipped", res.Skipped),
			slog.Int("failed", res.Failed),
		)

		if u.settings.Iterations > 0 && iteration >= u.settings.Iterations {
			return nil
		}

		wait := time.Duration(u.settings.Period) * time.Second
		if res.Failed > 0 {
			wait = time.Duration(u.settings.ErrorRetryPeriod) * time.Second
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// updateProvider runs detection and per-hostname updates for one record.
func (u *Updater) updateProvider(ctx context.Context, rec *ddns.Record, res *Result) {
	ip, err := u.detect(ctx, rec)
	if err != nil {
		res.Failed++
		metrics.UpdatesTotal.WithLabelValues(rec.Name, "error").Inc()
		u.logger.Warn("address detection failed",
			slog.String("provider", rec.Name),
			slog.String("error", err.Error()))
		return
	}

	forcedAfter := time.Duration(u.settings.ForcedUpdate) * time.Second

	for _, hostname := range rec.Hostnames {
		cached, when, ok := u.store.Get(rec.Name, hostname)
		changed := !ok || cached != ip.String()
		forced := ok && time.Since(when) >= forcedAfter

		if !changed && !forced {
			res.Skipped++
			continue
		}

		if changed {
			metrics.AddressChanges.WithLabelValues(rec.Name).Inc()
		}

		// A forced update with fake-address first reports a throwaway
		// address so the provider registers the follow-up as a change.
		if forced && !changed && u.settings.FakeAddress {
			if err := u.sendUpdate(ctx, rec, hostname, ipdetect.FakeAddress); err != nil {
				u.logger.Warn("fake-address update failed",
					slog.String("provider", rec.Name),
					slog.String("hostname", hostname),
					slog.String("error", err.Error()))
			}
		}

		if err := u.sendUpdate(ctx, rec, hostname, ip); err != nil {
			res.Failed++
			metrics.UpdatesTotal.WithLabelValues(rec.Name, "error").Inc()
			u.logger.Warn("update failed",
				slog.String("provider", rec.Name),
				slog.String("hostname", hostname),
				slog.String("error", err.Error()))
			continue
		}

		if err := u.store.Put(rec.Name, hostname, ip.String()); err != nil {
			u.logger.Warn("cache write failed",
				slog.String("provider", rec.Name),
				slog.String("hostname", hostname),
				slog.String("error", err.Error()))
		}

		res.Updated++
		metrics.UpdatesTotal.WithLabelValues(rec.Name, "success").Inc()
		u.logger.Info("hostname updated",
			slog.String("provider", rec.Name),
			slog.String("hostname", hostname),
			slog.String("address", ip.String()))
	}
}

// detect finds the current address for one record.
func (u *Updater) detect(ctx context.Context, rec *ddns.Record) (net.IP, error) {
	if u.detector != nil {
		return u.detector.Detect(ctx)
	}
	d := &ipdetect.HTTPDetector{Client: u.client, URL: checkIPURL(rec)}
	return d.Detect(ctx)
}

// sendUpdate performs one update request and matches the reply against
// the record's response patterns.
func (u *Updater) sendUpdate(ctx context.Context, rec *ddns.Record, hostname string, ip net.IP) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, updateURL(rec, hostname, ip), nil)
	if err != nil {
		return fmt.Errorf("building update request: %w", err)
	}
	if rec.Creds.Username != "" || rec.Creds.Password != "" {
		req.Header.Set("Authorization", "Basic "+rec.Creds.Encoded())
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return fmt.Errorf("reading update reply: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("update server returned status %d", resp.StatusCode)
	}
	if !rec.MatchesResponse(string(body)) {
		return fmt.Errorf("update reply %q did not match any response pattern", firstLine(string(body)))
	}
	return nil
}

// checkIPURL builds the check-IP URL for a record.
func checkIPURL(rec *ddns.Record) string {
	return scheme(rec) + "://" + rec.CheckIP.HostPort() + rec.CheckIPPath
}

// updateURL builds the DynDNS-style update URL for one hostname. The
// address is appended for built-in providers and for custom providers
// that asked for it.
func updateURL(rec *ddns.Record, hostname string, ip net.IP) string {
	var b strings.Builder
	b.WriteString(scheme(rec))
	b.WriteString("://")
	b.WriteString(rec.Server.HostPort())
	b.WriteString(rec.Path)

	sep := "?"
	if strings.Contains(rec.Path, "?") {
		sep = "&"
	}
	b.WriteString(sep)
	b.WriteString("hostname=")
	b.WriteString(hostname)

	if !rec.Custom || rec.AppendMyIP {
		b.WriteString("&myip=")
		b.WriteString(ip.String())
	}
	return b.String()
}

func scheme(rec *ddns.Record) string {
	if rec.SSL {
		return "https"
	}
	return "http"
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return strings.TrimSpace(s)
}
