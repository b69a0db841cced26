package config

import (
	"io"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"testing"

	"gitlab.bluewillows.net/root/dynup/pkg/ddns"
	"gitlab.bluewillows.net/root/dynup/pkg/plugin"
)

func testLoadOptions() LoadOptions {
	return LoadOptions{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

const validConfig = `
period: 300

providers:
  - name: default@dyndns.org
    username: admin
    password: secret
    hostname: [one.example.org]
  - name: default@no-ip.com
    username: admin
    password: secret
    hostname: [two.example.org]

custom:
  - name: my-server
    ddns-server: update.example.org
    hostname: [three.example.org]
`

func TestLoad_BuildsAllSections(t *testing.T) {
	path := writeConfig(t, "dynup.yaml", validConfig)

	catalog, settings, err := Load(path, testLoadOptions())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer catalog.Drain()

	// Two built-in providers and one custom section.
	if catalog.Len() != 3 {
		t.Errorf("catalog has %d records, want 3", catalog.Len())
	}
	if settings.Period != 300 {
		t.Errorf("period = %d, want 300", settings.Period)
	}

	var customs, builtins int
	for it := catalog.Iter(); ; {
		rec := it.Next()
		if rec == nil {
			break
		}
		if rec.Plugin == nil {
			t.Errorf("record %q has no plugin reference", rec.Name)
		}
		if len(rec.Hostnames) == 0 {
			t.Errorf("record %q has no hostnames", rec.Name)
		}
		if rec.Custom {
			customs++
		} else {
			builtins++
		}
	}
	if builtins != 2 || customs != 1 {
		t.Errorf("got %d built-in and %d custom records, want 2/1", builtins, customs)
	}
}

func TestLoad_ValidatorFailureIsFatal(t *testing.T) {
	path := writeConfig(t, "dynup.yaml", `
providers:
  - name: default@dyndns.org
    username: admin
    password: secret
    hostname: [h.example.org]
    alias: [legacy.example.org]
`)

	catalog, _, err := Load(path, testLoadOptions())
	if err == nil {
		t.Fatal("both hostname and alias set must abort the load")
	}
	if catalog != nil {
		t.Error("no partial catalog may be returned on a fatal load error")
	}
	var verr *ValidationError
	if ok := errorsAs(err, &verr); !ok {
		t.Errorf("error should be *ValidationError, got %T", err)
	}
}

// errorsAs avoids importing errors just for one assertion helper.
func errorsAs(err error, target **ValidationError) bool {
	v, ok := err.(*ValidationError)
	if ok {
		*target = v
	}
	return ok
}

func TestLoad_MissingFileIsFatal(t *testing.T) {
	if _, _, err := Load("/nonexistent/dynup.yaml", testLoadOptions()); err == nil {
		t.Fatal("unreadable file must abort the load")
	}
}

func TestLoad_BuilderFailureSkipsProvider(t *testing.T) {
	// A registry whose plugin carries an oversized default path: the
	// section validates (the plugin exists) but construction fails.
	reg := plugin.NewRegistry()
	reg.Register(&plugin.Plugin{
		Name:          "default@broken.example",
		CheckIPServer: "checkip.example.org",
		CheckIPPath:   "/" + strings.Repeat("x", ddns.MaxPathLen),
		Server:        "update.example.org",
		Path:          "/update",
	})
	reg.Register(&plugin.Plugin{
		Name:          "default@working.example",
		CheckIPServer: "checkip.example.org",
		CheckIPPath:   "/",
		Server:        "update.example.org",
		Path:          "/update",
	})

	path := writeConfig(t, "dynup.yaml", `
providers:
  - name: default@broken.example
    username: u
    password: p
    hostname: [a.example.org]
  - name: default@working.example
    username: u
    password: p
    hostname: [b.example.org]
`)

	opts := testLoadOptions()
	opts.Registry = reg
	catalog, _, err := Load(path, opts)
	if err != nil {
		t.Fatalf("a per-provider construction failure must not abort the load: %v", err)
	}
	defer catalog.Drain()

	if catalog.Len() != 1 {
		t.Fatalf("catalog has %d records, want 1 (broken provider skipped)", catalog.Len())
	}
	if rec := catalog.Iter().Next(); rec.Name != "default@working.example" {
		t.Errorf("surviving record = %q, want default@working.example", rec.Name)
	}
}

func TestLoad_AliasMigration(t *testing.T) {
	path := writeConfig(t, "dynup.yaml", `
providers:
  - name: default@dyndns.org
    username: admin
    password: secret
    alias: [first.example.org, second.example.org]
`)

	catalog, _, err := Load(path, testLoadOptions())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer catalog.Drain()

	rec := catalog.Iter().Next()
	want := []string{"first.example.org", "second.example.org"}
	if !reflect.DeepEqual(rec.Hostnames, want) {
		t.Errorf("hostnames = %v, want migrated alias values %v", rec.Hostnames, want)
	}
}

func TestLoad_CustomResponseDefaulting(t *testing.T) {
	path := writeConfig(t, "dynup.yaml", `
custom:
  - name: with-responses
    ddns-server: update.example.org
    ddns-response: [all good, splendid]
    hostname: [a.example.org]
  - name: without-responses
    ddns-server: update.example.org
    hostname: [b.example.org]
`)

	catalog, _, err := Load(path, testLoadOptions())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer catalog.Drain()

	byName := map[string]*ddns.Record{}
	for it := catalog.Iter(); ; {
		rec := it.Next()
		if rec == nil {
			break
		}
		byName[rec.Name] = rec
	}

	explicit := byName["with-responses"].ResponsePatterns
	if !reflect.DeepEqual(explicit, []string{"all good", "splendid"}) {
		t.Errorf("explicit responses = %v, want exactly the configured values", explicit)
	}

	defaulted := byName["without-responses"].ResponsePatterns
	if !reflect.DeepEqual(defaulted, plugin.GenericResponses) {
		t.Errorf("defaulted responses = %v, want generic set %v", defaulted, plugin.GenericResponses)
	}
}

func TestLoad_Idempotent(t *testing.T) {
	path := writeConfig(t, "dynup.yaml", validConfig)

	first, _, err := Load(path, testLoadOptions())
	if err != nil {
		t.Fatalf("first Load failed: %v", err)
	}
	names1 := recordNames(first)
	first.Drain()

	second, _, err := Load(path, testLoadOptions())
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	defer second.Drain()
	names2 := recordNames(second)

	// Contents must match; order is not contractual, so compare sorted.
	sort.Strings(names1)
	sort.Strings(names2)
	if !reflect.DeepEqual(names1, names2) {
		t.Errorf("reload yielded %v, want %v", names2, names1)
	}
}

func recordNames(c *ddns.Catalog) []string {
	var names []string
	for it := c.Iter(); ; {
		rec := it.Next()
		if rec == nil {
			return names
		}
		names = append(names, rec.Name)
	}
}

func TestCheckConfig(t *testing.T) {
	path := writeConfig(t, "dynup.yaml", validConfig)

	lines, err := CheckConfig(path, testLoadOptions())
	if err != nil {
		t.Fatalf("CheckConfig failed: %v", err)
	}
	// One summary line plus one line per record.
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "period=300s") {
		t.Errorf("summary line = %q", lines[0])
	}
}
