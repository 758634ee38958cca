package azddns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/hashicorp/go-cleanhttp"
)

// DefaultLambdaRegion is used when LambdaOptions.Region is empty.
const DefaultLambdaRegion = "eu-central-1"

// sha256 of an empty body
const emptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// LambdaOptions configures LambdaResolver.
type LambdaOptions struct {
	// FunctionURL is the URL of a Lambda function URL with IAM auth.
	FunctionURL string

	// AccessKeyID and SecretAccessKey are used as static credentials.
	// When both are empty the default AWS credential chain is used instead.
	AccessKeyID     string
	SecretAccessKey string

	Region string
}

// LambdaResolver constructs a resolver that calls an AWS Lambda function URL.
//
// Requests are signed with Signature Version 4 for the "lambda" service.
// The function must answer with a JSON object whose "ip" field holds our IPv4 address, e.g.
//
//	{"ip": "198.51.100.7"}
func LambdaResolver(ctx context.Context, opts LambdaOptions) (Resolver, error) {
	if opts.FunctionURL == "" {
		return nil, errors.New("azddns.LambdaResolver: function URL cannot be empty")
	}
	if _, err := url.Parse(opts.FunctionURL); err != nil {
		return nil, fmt.Errorf("azddns.LambdaResolver: error parsing function URL: %w", err)
	}
	if opts.Region == "" {
		opts.Region = DefaultLambdaRegion
	}

	lr := &lambdaResolver{
		functionURL: opts.FunctionURL,
		region:      opts.Region,
		signer:      v4.NewSigner(),
	}
	if opts.AccessKeyID != "" || opts.SecretAccessKey != "" {
		lr.credentials = credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")
		return lr, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("azddns.LambdaResolver: error loading default AWS config: %w", err)
	}
	lr.credentials = cfg.Credentials
	return lr, nil
}

type lambdaResolver struct {
	httpClient  *http.Client
	credentials aws.CredentialsProvider
	signer      *v4.Signer
	functionURL string
	region      string
}

func (lr *lambdaResolver) SetHTTPClient(c *http.Client) { lr.httpClient = c }

type lambdaResponse struct {
	IP *string `json:"ip"`
}

// Resolve implements azddns.Resolver.
func (lr *lambdaResolver) Resolve(ctx context.Context) (netip.Addr, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	body, err := lr.invoke(ctx)
	if err != nil {
		return netip.Addr{}, &LookupError{Resolver: "lambda", Err: err}
	}

	var r lambdaResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return netip.Addr{}, &LookupError{Resolver: "lambda", Err: fmt.Errorf("error decoding response %q: %w", body, err)}
	}
	if r.IP == nil {
		return netip.Addr{}, &LookupError{Resolver: "lambda", Err: fmt.Errorf("response %q has no \"ip\" field", body)}
	}
	addr, err := netip.ParseAddr(*r.IP)
	if err != nil {
		return netip.Addr{}, &LookupError{Resolver: "lambda", Err: fmt.Errorf("error parsing IP address from response: %w", err)}
	}
	if !addr.Is4() {
		return netip.Addr{}, &LookupError{Resolver: "lambda", Err: fmt.Errorf("%s is not an IPv4 address", addr)}
	}
	return addr, nil
}

func (lr *lambdaResolver) invoke(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lr.functionURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("X-Amz-Content-Sha256", emptyPayloadHash)

	creds, err := lr.credentials.Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving AWS credentials: %w", err)
	}
	if err := lr.signer.SignHTTP(ctx, creds, req, emptyPayloadHash, "lambda", lr.region, time.Now()); err != nil {
		return nil, fmt.Errorf("error signing request: %w", err)
	}

	httpclient := lr.httpClient
	if httpclient == nil {
		httpclient = cleanhttp.DefaultClient()
	}
	resp, err := httpclient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("http request returned %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	return body, nil
}
