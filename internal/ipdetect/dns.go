package ipdetect

import (
	"context"
	"fmt"
	"net"

	"github.com/miekg/dns"
)

// Default what-is-my-ip resolver. OpenDNS answers queries for
// myip.opendns.com with the address the query came from.
const (
	DefaultDNSResolver = "resolver1.opendns.com:53"
	DefaultDNSName     = "myip.opendns.com."
)

// DNSDetector resolves a magic hostname against a resolver that echoes
// the querier's address. Cheaper than HTTP and immune to HTML-wrapped
// replies.
type DNSDetector struct {
	// Resolver is the DNS server to ask, in "host:port" form.
	// Defaults to the OpenDNS resolver.
	Resolver string

	// Name is the magic hostname to resolve. Defaults to
	// myip.opendns.com.
	Name string
}

// Detect implements Detector.
func (d *DNSDetector) Detect(ctx context.Context) (net.IP, error) {
	resolver := d.Resolver
	if resolver == "" {
		resolver = DefaultDNSResolver
	}
	name := d.Name
	if name == "" {
		name = DefaultDNSName
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), dns.TypeA)

	client := new(dns.Client)
	reply, _, err := client.ExchangeContext(ctx, msg, resolver)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", resolver, err)
	}
	if reply.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("resolver returned %s for %s", dns.RcodeToString[reply.Rcode], name)
	}

	for _, rr := range reply.Answer {
		if a, ok := rr.(*dns.A); ok {
			return a.A, nil
		}
	}
	return nil, fmt.Errorf("no A record in reply for %s", name)
}
