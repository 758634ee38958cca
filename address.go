package azddns

import (
	"net/netip"
	"strconv"
	"strings"
)

// ParseIPv4 parses a single IPv4 address in strict dotted-decimal form.
//
// Unlike netip.ParseAddr it reports which rule the input broke
// (see ErrEmptyInput, ErrFormat and ErrRange),
// and it ignores surrounding whitespace so that response bodies ending in a newline can be passed directly.
func ParseIPv4(raw string) (netip.Addr, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return netip.Addr{}, &ParseError{Input: raw, Err: ErrEmptyInput}
	}

	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return netip.Addr{}, &ParseError{Input: raw, Err: ErrFormat}
	}

	var octets [4]byte
	for i, p := range parts {
		// overflowing the integer type is a format error, not a range error
		n, err := strconv.Atoi(p)
		if err != nil {
			return netip.Addr{}, &ParseError{Input: raw, Err: ErrFormat}
		}
		if n < 0 || n > 255 {
			return netip.Addr{}, &ParseError{Input: raw, Err: ErrRange}
		}
		octets[i] = byte(n)
	}
	return netip.AddrFrom4(octets), nil
}
