package azddns

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// WebResolver constructs a resolver which asks an external web service for our public IPv4 address.
//
// The service must speak http and return a 2xx status with the address as the response body.
// Surrounding whitespace is ignored.
// All other responses are considered an error.
//
// The recommended approach is to run your own service over https,
// or to use one that only listens on IPv4, e.g. https://ipv4.icanhazip.com/.
func WebResolver(serviceURL string) Resolver {
	return &webResolver{serviceURL: serviceURL}
}

type webResolver struct {
	httpClient *http.Client
	serviceURL string
}

func (wr *webResolver) SetHTTPClient(c *http.Client) { wr.httpClient = c }

// maximum body we are willing to read; an address is at most 15 bytes plus a newline
const maxLookupBody = 256

// Resolve implements azddns.Resolver.
func (wr *webResolver) Resolve(ctx context.Context) (netip.Addr, error) {
	// 15 seconds is an eternity for the size of the request we're making,
	// but this ensures that all calls to resolve will eventually complete even if the user supplied context.Background
	// using a client with no timeout.
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wr.serviceURL, nil)
	if err != nil {
		return netip.Addr{}, &LookupError{Resolver: "http", Err: fmt.Errorf("error creating request: %w", err)}
	}
	req.Header.Set("Cache-Control", "no-cache")

	httpclient := wr.httpClient
	if httpclient == nil {
		httpclient = cleanhttp.DefaultClient()
	}

	resp, err := httpclient.Do(req)
	if err != nil {
		return netip.Addr{}, &LookupError{Resolver: "http", Err: fmt.Errorf("http request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return netip.Addr{}, &LookupError{Resolver: "http", Err: fmt.Errorf("http request returned %s", resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLookupBody))
	if err != nil {
		return netip.Addr{}, &LookupError{Resolver: "http", Err: fmt.Errorf("error reading response body: %w", err)}
	}
	addr, err := ParseIPv4(string(body))
	if err != nil {
		return netip.Addr{}, &LookupError{Resolver: "http", Err: err}
	}
	return addr, nil
}
