package azddns

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/miekg/dns"
)

const (
	DefaultDNSLookupServer = "resolver1.opendns.com:53"
	DefaultDNSLookupName   = "myip.opendns.com."
)

// DNSResolver constructs a resolver that learns our address from a DNS server
// which answers a special name with the address of the client asking.
// OpenDNS does this for myip.opendns.com when queried directly at resolver1.opendns.com.
//
// server is a host:port pair; empty values select DefaultDNSLookupServer and DefaultDNSLookupName.
func DNSResolver(server, name string) Resolver {
	if server == "" {
		server = DefaultDNSLookupServer
	}
	if name == "" {
		name = DefaultDNSLookupName
	}
	return &dnsResolver{
		client: &dns.Client{Net: "udp", Timeout: 5 * time.Second},
		server: server,
		name:   dns.Fqdn(name),
	}
}

type dnsResolver struct {
	client *dns.Client
	server string
	name   string
}

// Resolve implements azddns.Resolver.
func (r *dnsResolver) Resolve(ctx context.Context) (netip.Addr, error) {
	m := new(dns.Msg)
	m.SetQuestion(r.name, dns.TypeA)

	in, err := r.exchange(ctx, m)
	if err != nil {
		return netip.Addr{}, &LookupError{Resolver: "dns", Err: fmt.Errorf("query for %s at %s failed: %w", r.name, r.server, withCancel(ctx, err))}
	}
	if in.Rcode != dns.RcodeSuccess {
		return netip.Addr{}, &LookupError{Resolver: "dns", Err: fmt.Errorf("query for %s at %s returned %s", r.name, r.server, dns.RcodeToString[in.Rcode])}
	}

	for _, rr := range in.Answer {
		a, ok := rr.(*dns.A)
		if !ok {
			continue
		}
		if addr, ok := netip.AddrFromSlice(a.A.To4()); ok {
			return addr, nil
		}
	}
	return netip.Addr{}, &LookupError{Resolver: "dns", Err: fmt.Errorf("no A record in answer for %s from %s", r.name, r.server)}
}

// exchange sends m over a connection that is closed as soon as ctx is done.
// Client.ExchangeContext only honours the deadline of ctx.
func (r *dnsResolver) exchange(ctx context.Context, m *dns.Msg) (*dns.Msg, error) {
	co, err := r.client.DialContext(ctx, r.server)
	if err != nil {
		return nil, err
	}
	defer co.Close()
	stop := context.AfterFunc(ctx, func() { co.Close() })
	defer stop()

	in, _, err := r.client.ExchangeWithConnContext(ctx, m, co)
	return in, err
}
