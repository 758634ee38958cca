package azddns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
)

// InterfaceResolver constructs a resolver that returns the first global unicast IPv4 address
// assigned to the named interface.
// It only finds the public address when the host holds it directly, e.g. on a PPPoE link;
// behind NAT use WebResolver or DNSResolver instead.
func InterfaceResolver(name string) Resolver {
	return interfaceResolver{
		name:  name,
		addrs: interfaceAddrs,
	}
}

type interfaceResolver struct {
	name  string
	addrs func(name string) ([]net.Addr, error)
}

func interfaceAddrs(name string) ([]net.Addr, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, fmt.Errorf("error getting interface %s by name: %w", name, err)
	}
	return iface.Addrs()
}

// Resolve implements azddns.Resolver.
func (r interfaceResolver) Resolve(ctx context.Context) (netip.Addr, error) {
	if err := ctx.Err(); err != nil {
		return netip.Addr{}, err
	}
	addrs, err := r.addrs(r.name)
	if err != nil {
		return netip.Addr{}, &LookupError{Resolver: "interface", Err: err}
	}
	// addr: ip+net:192.168.86.253/24
	// addr: ip+net:fe80::2cc9:801b:3551:9a43/64
	var parseErrors []error
	for _, addr := range addrs {
		p, err := netip.ParsePrefix(addr.String())
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("error parsing local ip %s: %w", addr.String(), err))
			continue
		}
		if ip := p.Addr().Unmap(); ip.Is4() && ip.IsGlobalUnicast() && !ip.IsPrivate() {
			return ip, nil
		}
	}
	return netip.Addr{}, &LookupError{
		Resolver: "interface",
		Err:      errors.Join(append([]error{fmt.Errorf("no public IPv4 address on interface %s", r.name)}, parseErrors...)...),
	}
}
