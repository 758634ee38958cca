package azddns

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrEmptyInput = errors.New("input is empty")
	ErrFormat     = errors.New("not in dotted-decimal \"a.b.c.d\" format")
	ErrRange      = errors.New("octet not within [0,255]")
)

// ParseError is returned by ParseIPv4.
// Err is one of ErrEmptyInput, ErrFormat or ErrRange.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %q as an IPv4 address: %s", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LookupError is returned when a Resolver fails to discover the public address,
// either because the request failed or because the response could not be understood.
type LookupError struct {
	Resolver string
	Err      error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s lookup failed: %s", e.Resolver, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// DNSError is returned when the DNS API rejects a read or write.
// A missing record on read is not a DNSError.
type DNSError struct {
	Op     string
	Record string
	Err    error
}

func (e *DNSError) Error() string {
	return fmt.Sprintf("dns %s %s: %s", e.Op, e.Record, e.Err)
}

func (e *DNSError) Unwrap() error { return e.Err }

// withCancel makes a failure caused by cancellation match context.Canceled,
// even when the client library does not wrap the context error.
func withCancel(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		return errors.Join(ctxErr, err)
	}
	return err
}
