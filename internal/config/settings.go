package config

// Runtime setting defaults and bounds, in seconds where applicable.
const (
	// DefaultPeriod is the update check interval when none is
	// configured. MinPeriod and MaxPeriod bound the configured value;
	// out-of-range periods are clamped, never rejected.
	DefaultPeriod = 600
	MinPeriod     = 30
	MaxPeriod     = 864000

	// DefaultForcedUpdate is the interval after which an update is
	// sent even when the address did not change.
	DefaultForcedUpdate = 604800

	// ErrorRetryPeriod is the fixed wait after a failed update cycle.
	ErrorRetryPeriod = 300

	// DefaultIterations of 0 means run until stopped.
	DefaultIterations = 0

	// DefaultCacheDir stores the last-known-address cache files.
	DefaultCacheDir = "/var/cache/dynup"
)

// Settings are the process-wide tunables extracted from the top-level
// configuration. Single writer at load time, read-only afterwards.
type Settings struct {
	Period           int // seconds between update checks
	ErrorRetryPeriod int // seconds to wait after a failed cycle
	ForcedUpdate     int // seconds between forced updates
	Iterations       int // total update cycles, 0 = forever
	CacheDir         string
	FakeAddress      bool // report a fake address on forced updates
	Iface            string
}

// Options carry the externally supplied overrides that take precedence
// over the configuration file.
type Options struct {
	// Once forces exactly one update iteration regardless of the
	// configured iteration count.
	Once bool

	// Iface, when set (typically from the command line), wins over the
	// configured interface name.
	Iface string
}

// extractSettings copies the top-level options into a Settings record,
// applying defaults, the period clamp, and the external overrides.
func extractSettings(c *FileConfig, opts Options) *Settings {
	s := &Settings{
		Period:           DefaultPeriod,
		ErrorRetryPeriod: ErrorRetryPeriod,
		ForcedUpdate:     DefaultForcedUpdate,
		Iterations:       DefaultIterations,
		CacheDir:         DefaultCacheDir,
		FakeAddress:      c.FakeAddress,
	}

	if c.Period != 0 {
		s.Period = clampPeriod(c.Period)
	}
	if c.ForcedUpdate != 0 {
		s.ForcedUpdate = c.ForcedUpdate
	}
	if c.Iterations != 0 {
		s.Iterations = c.Iterations
	}
	if c.CacheDir != "" {
		s.CacheDir = c.CacheDir
	}

	if opts.Once {
		s.Iterations = 1
	}

	// An externally supplied interface wins over the configured one.
	if opts.Iface != "" {
		s.Iface = opts.Iface
	} else {
		s.Iface = c.Iface
	}

	return s
}

// clampPeriod repairs an out-of-range update period silently instead of
// rejecting the configuration.
func clampPeriod(v int) int {
	if v < MinPeriod {
		return MinPeriod
	}
	if v > MaxPeriod {
		return MaxPeriod
	}
	return v
}
