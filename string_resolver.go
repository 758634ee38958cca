package azddns

import (
	"context"
	"net/netip"
)

// FromString constructs a resolver that always returns the address in addr.
// The address is checked with ParseIPv4 when the resolver is constructed.
func FromString(addr string) (Resolver, error) {
	if _, err := ParseIPv4(addr); err != nil {
		return nil, err
	}
	return stringResolver(addr), nil
}

type stringResolver string

func (s stringResolver) Resolve(context.Context) (netip.Addr, error) {
	return ParseIPv4(string(s))
}
