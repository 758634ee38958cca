package azddns

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/cloudflare/cloudflare-go"
	"github.com/sirupsen/logrus"
)

// cloudflareAPI is the part of *cloudflare.API used by CloudflareProvider.
type cloudflareAPI interface {
	ListZonesContext(ctx context.Context, opts ...cloudflare.ReqOption) (cloudflare.ZonesResponse, error)
	ListDNSRecords(ctx context.Context, rc *cloudflare.ResourceContainer, params cloudflare.ListDNSRecordsParams) ([]cloudflare.DNSRecord, *cloudflare.ResultInfo, error)
	CreateDNSRecord(ctx context.Context, rc *cloudflare.ResourceContainer, params cloudflare.CreateDNSRecordParams) (cloudflare.DNSRecord, error)
	DeleteDNSRecord(ctx context.Context, rc *cloudflare.ResourceContainer, recordID string) error
}

var _ cloudflareAPI = &cloudflare.API{}

// NewCloudflareProvider returns a provider for zones reachable with the API token.
func NewCloudflareProvider(token string) (*CloudflareProvider, error) {
	api, err := cloudflare.NewWithAPIToken(token)
	if err != nil {
		return nil, fmt.Errorf("error creating cloudflare api client: %w", err)
	}
	return newCloudflareProvider(api), nil
}

func newCloudflareProvider(api cloudflareAPI) *CloudflareProvider {
	return &CloudflareProvider{
		api:     api,
		logger:  discardLogger(),
		comment: "managed by azddns",
	}
}

// UsingCloudflare registers Cloudflare as the provider.
// target.ResourceGroup is ignored.
func UsingCloudflare(token string) Option {
	return func(c *Client) (err error) {
		if c.Provider, err = NewCloudflareProvider(token); err != nil {
			return fmt.Errorf("azddns.UsingCloudflare: error creating cloudflare DNS provider: %w", err)
		}
		return nil
	}
}

// CloudflareProvider implements azddns.Provider.
//
// Cloudflare has no record-sets; each address is its own record.
// SetARecord keeps or creates the record for the new address first and then deletes the others,
// so the name always resolves.
type CloudflareProvider struct {
	api     cloudflareAPI
	logger  logrus.FieldLogger
	comment string // attached to each new DNS entry
}

func (cf *CloudflareProvider) SetLogger(logger logrus.FieldLogger) { cf.logger = logger }

func (cf *CloudflareProvider) SetARecord(ctx context.Context, target RecordTarget, addr netip.Addr) (RecordSet, error) {
	domain := target.Zone
	if target.Name != "@" {
		domain = target.Name + "." + target.Zone
	}

	zid, err := cf.zoneID(ctx, target.Zone)
	if err != nil {
		return RecordSet{}, &DNSError{Op: "zone lookup", Record: domain, Err: withCancel(ctx, err)}
	}
	cf.logger.Debugf("got zone ID %s for %s", zid, target.Zone)
	zone := cloudflare.ZoneIdentifier(zid)

	records, _, err := cf.api.ListDNSRecords(ctx, zone, cloudflare.ListDNSRecordsParams{
		Type: "A",
		Name: domain,
	})
	if err != nil {
		return RecordSet{}, &DNSError{Op: "get", Record: domain, Err: withCancel(ctx, err)}
	}
	cf.logger.Debugf("found %d existing A records for %s", len(records), domain)

	ttl := DefaultTTL
	if len(records) > 0 && records[0].TTL > 0 {
		ttl = records[0].TTL
	}

	keep := ""
	for _, r := range records {
		if r.Content == addr.String() {
			keep, ttl = r.ID, r.TTL
			cf.logger.Debugf("record %s already holds %s", r.ID, addr)
			break
		}
	}

	if keep == "" {
		cf.logger.Debugf("creating record for %s...", addr)
		record, err := cf.api.CreateDNSRecord(ctx, zone, cloudflare.CreateDNSRecordParams{
			Type:    "A",
			Name:    domain,
			Content: addr.String(),
			TTL:     ttl,
			Comment: cf.comment,
		})
		if err != nil {
			return RecordSet{}, &DNSError{Op: "create", Record: domain, Err: withCancel(ctx, err)}
		}
		keep = record.ID
		cf.logger.Debugf("successfully added record %s", record.ID)
	}

	for _, r := range records {
		if r.ID == keep {
			continue
		}
		cf.logger.Debugf("deleting record %s for %s...", r.ID, r.Content)
		if err := cf.api.DeleteDNSRecord(ctx, zone, r.ID); err != nil {
			return RecordSet{}, &DNSError{Op: "delete", Record: domain, Err: withCancel(ctx, fmt.Errorf("record %s: %w", r.ID, err))}
		}
	}

	return RecordSet{TTL: int64(ttl), Addresses: []netip.Addr{addr}}, nil
}

// zoneID looks up the zone by exact name.
// ZoneIDByName is not used because it ignores the context.
func (cf *CloudflareProvider) zoneID(ctx context.Context, zone string) (string, error) {
	res, err := cf.api.ListZonesContext(ctx, cloudflare.WithZoneFilters(zone, "", ""))
	if err != nil {
		return "", err
	}
	switch len(res.Result) {
	case 0:
		return "", fmt.Errorf("zone %s could not be found", zone)
	case 1:
		return res.Result[0].ID, nil
	default:
		return "", fmt.Errorf("zone name %s is ambiguous: %d zones match", zone, len(res.Result))
	}
}
