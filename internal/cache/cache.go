// Package cache persists the last address sent to each provider so
// unchanged addresses do not trigger redundant updates across restarts.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store reads and writes per-hostname cache files under one directory.
// One file per provider/hostname pair, containing the address last
// accepted by the provider. The file modification time doubles as the
// last-update timestamp for the forced-update policy.
type Store struct {
	dir string
}

// New returns a store rooted at dir. The directory is created on the
// first write, not here, so a read-only run never touches the disk.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Get returns the cached address and the time it was written. ok is
// false when no cache entry exists or it cannot be read.
func (s *Store) Get(provider, hostname string) (addr string, when time.Time, ok bool) {
	path := s.path(provider, hostname)

	fi, err := os.Stat(path)
	if err != nil {
		return "", time.Time{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", time.Time{}, false
	}
	return strings.TrimSpace(string(data)), fi.ModTime(), true
}

// Put records the address for a provider/hostname pair, creating the
// cache directory if needed.
func (s *Store) Put(provider, hostname, addr string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	path := s.path(provider, hostname)
	if err := os.WriteFile(path, []byte(addr+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	return nil
}

// path maps a provider/hostname pair to its cache file.
func (s *Store) path(provider, hostname string) string {
	name := sanitize(provider) + "-" + sanitize(hostname) + ".cache"
	return filepath.Join(s.dir, name)
}

// sanitize keeps cache file names to a safe character set.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
