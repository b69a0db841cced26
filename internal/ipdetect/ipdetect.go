// Package ipdetect discovers the current public address, either by
// querying a provider's check-IP endpoint over HTTP or by asking a
// what-is-my-ip DNS resolver.
package ipdetect

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
)

// maxBodyBytes bounds how much of a check-IP reply is read. These
// replies are one line; anything larger is garbage.
const maxBodyBytes = 8 * 1024

// FakeAddress is reported instead of the detected address when a forced
// update runs with the fake-address option, guaranteeing the provider
// sees a change.
var FakeAddress = net.IPv4(10, 0, 0, 1)

var ipv4Pattern = regexp.MustCompile(`(\d{1,3}\.){3}\d{1,3}`)

// Detector yields the current public address.
type Detector interface {
	Detect(ctx context.Context) (net.IP, error)
}

// HTTPDetector fetches a check-IP URL and extracts the first IPv4
// address from the reply body.
type HTTPDetector struct {
	Client *http.Client
	URL    string
}

// Detect implements Detector.
func (d *HTTPDetector) Detect(ctx context.Context) (net.IP, error) {
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("building check-IP request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("check-IP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("check-IP server returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading check-IP reply: %w", err)
	}

	return parseAddress(string(body))
}

// parseAddress extracts the first valid IPv4 address from a reply body.
// Check-IP services wrap the address in prose or HTML, so a plain
// ParseIP of the whole body is not enough.
func parseAddress(body string) (net.IP, error) {
	for _, candidate := range ipv4Pattern.FindAllString(body, -1) {
		if ip := net.ParseIP(candidate); ip != nil {
			return ip, nil
		}
	}
	return nil, fmt.Errorf("no address found in check-IP reply")
}
