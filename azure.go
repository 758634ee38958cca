package azddns

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/netip"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	azlog "github.com/Azure/azure-sdk-for-go/sdk/azcore/log"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/dns/armdns"
	"github.com/sirupsen/logrus"
)

//go:generate go run go.uber.org/mock/mockgen -destination=internal/mocks/armdns/recordsets.go -package=mock_armdns github.com/Travis-Britz/azddns RecordSetsClient

// RecordSetsClient is the subset of *armdns.RecordSetsClient used by AzureProvider.
type RecordSetsClient interface {
	Get(ctx context.Context, resourceGroupName string, zoneName string, relativeRecordSetName string, recordType armdns.RecordType, options *armdns.RecordSetsClientGetOptions) (armdns.RecordSetsClientGetResponse, error)
	CreateOrUpdate(ctx context.Context, resourceGroupName string, zoneName string, relativeRecordSetName string, recordType armdns.RecordType, parameters armdns.RecordSet, options *armdns.RecordSetsClientCreateOrUpdateOptions) (armdns.RecordSetsClientCreateOrUpdateResponse, error)
}

var _ RecordSetsClient = &armdns.RecordSetsClient{}

// AzureOptions holds the service principal and subscription used to reach Azure DNS.
type AzureOptions struct {
	TenantID       string
	ClientID       string
	ClientSecret   string
	SubscriptionID string

	// ClientOptions is passed to the SDK unchanged and may be nil.
	ClientOptions *arm.ClientOptions
}

// NewAzureProvider authenticates with a client secret and returns a provider for Azure DNS zones in the subscription.
// No request is made until the first update.
func NewAzureProvider(opts AzureOptions) (*AzureProvider, error) {
	if opts.SubscriptionID == "" {
		return nil, errors.New("subscription ID cannot be empty")
	}
	cred, err := azidentity.NewClientSecretCredential(opts.TenantID, opts.ClientID, opts.ClientSecret, credentialOptions(opts.ClientOptions))
	if err != nil {
		return nil, fmt.Errorf("error creating client secret credential: %w", err)
	}
	factory, err := armdns.NewClientFactory(opts.SubscriptionID, cred, opts.ClientOptions)
	if err != nil {
		return nil, fmt.Errorf("error creating Azure DNS client: %w", err)
	}
	return NewAzureProviderFromClient(factory.NewRecordSetsClient()), nil
}

// credentialOptions sends token requests through the same pipeline settings as the ARM client.
func credentialOptions(opts *arm.ClientOptions) *azidentity.ClientSecretCredentialOptions {
	if opts == nil {
		return nil
	}
	return &azidentity.ClientSecretCredentialOptions{ClientOptions: opts.ClientOptions}
}

// NewAzureProviderFromClient wraps an existing record-sets client.
func NewAzureProviderFromClient(recordsets RecordSetsClient) *AzureProvider {
	return &AzureProvider{
		recordsets: recordsets,
		logger:     discardLogger(),
	}
}

// UsingAzure registers Azure DNS as the provider.
func UsingAzure(opts AzureOptions) Option {
	return func(c *Client) (err error) {
		if c.Provider, err = NewAzureProvider(opts); err != nil {
			return fmt.Errorf("azddns.UsingAzure: error creating Azure DNS provider: %w", err)
		}
		return nil
	}
}

// AzureProvider implements azddns.Provider for Azure DNS.
type AzureProvider struct {
	recordsets RecordSetsClient
	logger     logrus.FieldLogger
}

func (p *AzureProvider) SetLogger(logger logrus.FieldLogger) { p.logger = logger }

// SetARecord replaces every address in the A record-set target with addr.
// The TTL and metadata of an existing record-set are kept;
// a record-set that does not exist yet is created with DefaultTTL.
func (p *AzureProvider) SetARecord(ctx context.Context, target RecordTarget, addr netip.Addr) (RecordSet, error) {
	record := target.Name + "." + target.Zone
	props := &armdns.RecordSetProperties{
		TTL: to.Ptr[int64](DefaultTTL),
	}

	p.logger.Debugf("looking up A record-set %s in resource group %s...", record, target.ResourceGroup)
	existing, err := p.recordsets.Get(ctx, target.ResourceGroup, target.Zone, target.Name, armdns.RecordTypeA, nil)
	switch {
	case err == nil:
		if e := existing.Properties; e != nil {
			if e.TTL != nil {
				props.TTL = e.TTL
			}
			props.Metadata = e.Metadata
			p.logger.Debugf("found record-set %s with %d A records and TTL %d", record, len(e.ARecords), *props.TTL)
		}
	case isNotFoundError(err):
		p.logger.Debugf("record-set %s does not exist yet", record)
	default:
		return RecordSet{}, &DNSError{Op: "get", Record: record, Err: err}
	}

	props.ARecords = []*armdns.ARecord{
		{IPv4Address: to.Ptr(addr.String())},
	}

	_, err = p.recordsets.CreateOrUpdate(ctx, target.ResourceGroup, target.Zone, target.Name, armdns.RecordTypeA, armdns.RecordSet{
		Properties: props,
	}, nil)
	if err != nil {
		return RecordSet{}, &DNSError{Op: "create or update", Record: record, Err: err}
	}

	return RecordSet{TTL: *props.TTL, Addresses: []netip.Addr{addr}}, nil
}

func isNotFoundError(err error) bool {
	var azErr *azcore.ResponseError
	return errors.As(err, &azErr) && azErr.StatusCode == http.StatusNotFound
}

// ForwardAzureSDKLog sends the Azure SDK's request, response and retry events to logger at debug level.
// The SDK listener is process-wide.
func ForwardAzureSDKLog(logger logrus.FieldLogger) {
	azlog.SetEvents(azlog.EventRequest, azlog.EventResponse, azlog.EventRetryPolicy)
	azlog.SetListener(func(e azlog.Event, msg string) {
		logger.WithField("event", string(e)).Debug(msg)
	})
}
