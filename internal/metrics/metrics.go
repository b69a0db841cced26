// Package metrics provides Prometheus metrics for dynup.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every dynup metric name.
const Namespace = "dynup"

var (
	// BuildInfo exposes version information as a constant gauge.
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "build_info",
		Help:      "Build information (value is always 1).",
	}, []string{"version", "go_version"})

	// ProvidersLoaded is the number of provider records in the catalog
	// after the last configuration load.
	ProvidersLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "providers_loaded",
		Help:      "Provider records built from the last configuration load.",
	})

	// ProvidersSkipped counts providers dropped during construction
	// (unknown plugin, oversized plugin defaults).
	ProvidersSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "providers_skipped_total",
		Help:      "Providers skipped during configuration load.",
	})

	// UpdatesTotal counts update attempts per provider and outcome.
	UpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "updates_total",
		Help:      "DDNS update attempts by provider and result.",
	}, []string{"provider", "result"})

	// UpdateDuration observes the wall time of one update cycle.
	UpdateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "update_duration_seconds",
		Help:      "Duration of a full update cycle.",
		Buckets:   prometheus.DefBuckets,
	})

	// AddressChanges counts detected address changes per provider.
	AddressChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "address_changes_total",
		Help:      "Detected public address changes by provider.",
	}, []string{"provider"})
)

// SetBuildInfo records the build version gauge.
func SetBuildInfo(version, goVersion string) {
	BuildInfo.WithLabelValues(version, goVersion).Set(1)
}
