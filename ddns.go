package azddns

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/sirupsen/logrus"
)

// DefaultTTL is the TTL in seconds given to a record-set that does not exist yet.
const DefaultTTL = 3600

// DefaultInterval is the time between update cycles when WithInterval is not used.
const DefaultInterval = 5 * time.Minute

// DefaultLookupURL echoes the caller's IPv4 address as plain text.
const DefaultLookupURL = "https://ipv4.icanhazip.com/"

// Resolver discovers the address that should be published.
type Resolver interface {
	Resolve(context.Context) (netip.Addr, error)
}

// ResolverFunc adapts an ordinary function to the Resolver interface.
type ResolverFunc func(context.Context) (netip.Addr, error)

func (f ResolverFunc) Resolve(ctx context.Context) (netip.Addr, error) { return f(ctx) }

// Provider publishes addr as the only A record of the record-set identified by target.
type Provider interface {
	SetARecord(ctx context.Context, target RecordTarget, addr netip.Addr) (RecordSet, error)
}

// RecordTarget identifies the record-set to reconcile.
// The record type is always A.
type RecordTarget struct {
	ResourceGroup string // Azure only
	Zone          string
	Name          string // relative record-set name; "@" is the zone apex

	// Host is only used for log output.
	Host string
}

func (t RecordTarget) String() string {
	host := t.Host
	if host == "" {
		host = t.Zone
	}
	return t.Name + "." + host
}

// RecordSet is the state of an A record-set as submitted to or read from a provider.
type RecordSet struct {
	TTL       int64
	Addresses []netip.Addr
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

// New constructs a Client for target.
//
// A Provider must be registered with one of the Using* options for DNS updates,
// e.g. UsingAzure or UsingCloudflare.
// The resolver defaults to a WebResolver for DefaultLookupURL.
func New(target RecordTarget, options ...Option) (*Client, error) {
	if target.Zone == "" {
		return nil, errors.New("azddns.New: zone cannot be empty")
	}
	if target.Name == "" {
		return nil, errors.New("azddns.New: record name cannot be empty")
	}
	c := &Client{
		target:   target,
		interval: DefaultInterval,
		minute:   time.Minute,
	}
	for i, opt := range options {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("azddns.New: option %d returned an error: %w", i, err)
		}
	}

	if c.Provider == nil {
		return nil, errors.New("azddns.New: no DNS provider was registered and there is no default option - use azddns.UsingAzure or similar")
	}
	if c.Resolver == nil {
		c.Resolver = WebResolver(DefaultLookupURL)
	}
	if c.httpClient == nil {
		c.httpClient = cleanhttp.DefaultPooledClient()
	}

	// dependencies registered before WithLogger or UsingHTTPClient still receive them
	withLogger(c.logger)(c)
	withHTTPClient(c.httpClient)(c)
	c.metrics.setInterval(c.interval)
	return c, nil
}

// Option configures a Client.
type Option func(*Client) error

// UsingProvider registers an arbitrary DNS provider.
func UsingProvider(p Provider) Option {
	return func(c *Client) error {
		if p == nil {
			return errors.New("azddns.UsingProvider: provider cannot be nil")
		}
		c.Provider = p
		return nil
	}
}

// UsingResolver replaces the default resolver.
func UsingResolver(resolver Resolver) Option {
	return func(c *Client) error {
		c.Resolver = resolver
		return nil
	}
}

// UsingWebResolver is shorthand for UsingResolver(WebResolver(serviceURL)).
func UsingWebResolver(serviceURL string) Option {
	return func(c *Client) error {
		if serviceURL == "" {
			serviceURL = DefaultLookupURL
		}
		c.Resolver = WebResolver(serviceURL)
		return nil
	}
}

// WithLogger sets the logger used by the client and by any dependency that accepts one.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

func withLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = discardLogger()
		}
		c.logger = logger
		type setLogger interface {
			SetLogger(logrus.FieldLogger)
		}

		if p, ok := c.Provider.(setLogger); ok {
			p.SetLogger(logger)
		}
		if r, ok := c.Resolver.(setLogger); ok {
			r.SetLogger(logger)
		}
		return nil
	}
}

// UsingHTTPClient sets the client used by resolvers that make HTTP requests.
func UsingHTTPClient(httpclient *http.Client) Option {
	return func(c *Client) error {
		c.httpClient = httpclient
		return nil
	}
}

func withHTTPClient(httpclient *http.Client) Option {
	return func(c *Client) error {
		type setHTTPClient interface {
			SetHTTPClient(*http.Client)
		}
		if r, ok := c.Resolver.(setHTTPClient); ok {
			r.SetHTTPClient(httpclient)
		}
		return nil
	}
}

// WithInterval sets the time between update cycles.
// The interval is counted down in whole minutes, so it must be at least one minute.
func WithInterval(interval time.Duration) Option {
	return func(c *Client) error {
		if interval < time.Minute {
			return fmt.Errorf("interval %s is shorter than one minute", interval)
		}
		c.interval = interval.Truncate(time.Minute)
		return nil
	}
}

// Client runs the update cycle for a single record-set.
type Client struct {
	Resolver
	Provider
	logger     logrus.FieldLogger
	httpClient *http.Client
	metrics    *Metrics
	target     RecordTarget
	interval   time.Duration

	// length of one countdown step; tests shorten it
	minute time.Duration
}

// RunDDNS performs a single update cycle: it resolves the current address and publishes it.
func (c *Client) RunDDNS(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr, err := c.Resolve(ctx)
	if err != nil {
		c.metrics.failed("lookup")
		return fmt.Errorf("error getting public IP: %w", err)
	}
	c.logger.Debugf("resolved public IP %s", addr)

	if _, err := c.SetARecord(ctx, c.target, addr); err != nil {
		c.metrics.failed("update")
		return fmt.Errorf("error updating %s to %s: %w", c.target, addr, err)
	}
	c.metrics.succeeded()
	c.logger.Infof("successfully updated %s to %s", c.target, addr)
	return nil
}

// Run calls RunDDNS, waits for the configured interval and repeats until ctx is done.
//
// The first error from RunDDNS ends the loop and is returned; failed cycles are not retried.
// When ctx is cancelled Run returns ctx.Err().
func (c *Client) Run(ctx context.Context) error {
	c.logger.Infof("update interval set to %d min", int(c.interval/time.Minute))

	for ctx.Err() == nil {
		if err := c.RunDDNS(ctx); err != nil {
			return err
		}
		if err := c.wait(ctx); err != nil {
			return err
		}
	}
	return ctx.Err()
}

func (c *Client) wait(ctx context.Context) error {
	for i := int(c.interval / time.Minute); i > 0; i-- {
		c.logger.Infof("%d min to next update cycle...", i)
		timer := time.NewTimer(c.minute)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}
