package azddns

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strconv"
	"testing"
	"time"

	"github.com/cloudflare/cloudflare-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloudflare struct {
	zones   []cloudflare.Zone
	records []cloudflare.DNSRecord
	nextID  int

	createErr error
	deleteErr error
	created   []cloudflare.CreateDNSRecordParams
	deleted   []string
}

// zones stands in for the API's name filter
func (f *fakeCloudflare) ListZonesContext(ctx context.Context, opts ...cloudflare.ReqOption) (cloudflare.ZonesResponse, error) {
	return cloudflare.ZonesResponse{Result: f.zones}, nil
}

func (f *fakeCloudflare) ListDNSRecords(ctx context.Context, rc *cloudflare.ResourceContainer, params cloudflare.ListDNSRecordsParams) ([]cloudflare.DNSRecord, *cloudflare.ResultInfo, error) {
	var out []cloudflare.DNSRecord
	for _, r := range f.records {
		if r.Type == params.Type && r.Name == params.Name {
			out = append(out, r)
		}
	}
	return out, &cloudflare.ResultInfo{Count: len(out)}, nil
}

func (f *fakeCloudflare) CreateDNSRecord(ctx context.Context, rc *cloudflare.ResourceContainer, params cloudflare.CreateDNSRecordParams) (cloudflare.DNSRecord, error) {
	if f.createErr != nil {
		return cloudflare.DNSRecord{}, f.createErr
	}
	f.nextID++
	f.created = append(f.created, params)
	r := cloudflare.DNSRecord{ID: "new" + strconv.Itoa(f.nextID), Type: params.Type, Name: params.Name, Content: params.Content, TTL: params.TTL}
	f.records = append(f.records, r)
	return r, nil
}

func (f *fakeCloudflare) DeleteDNSRecord(ctx context.Context, rc *cloudflare.ResourceContainer, recordID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, recordID)
	for i, r := range f.records {
		if r.ID == recordID {
			f.records = append(f.records[:i], f.records[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeCloudflare) contents(name string) []string {
	var out []string
	for _, r := range f.records {
		if r.Name == name {
			out = append(out, r.Content)
		}
	}
	return out
}

func aRecord(id, name, content string, ttl int) cloudflare.DNSRecord {
	return cloudflare.DNSRecord{ID: id, Type: "A", Name: name, Content: content, TTL: ttl}
}

var (
	cfTarget    = RecordTarget{Zone: "example.com", Name: "home"}
	exampleZone = []cloudflare.Zone{{ID: "z1", Name: "example.com"}}
)

func TestCloudflareSetARecordCreates(t *testing.T) {
	api := &fakeCloudflare{zones: exampleZone}

	got, err := newCloudflareProvider(api).SetARecord(context.Background(), cfTarget, netip.MustParseAddr("192.0.2.9"))
	require.NoError(t, err)
	assert.Equal(t, RecordSet{TTL: DefaultTTL, Addresses: []netip.Addr{netip.MustParseAddr("192.0.2.9")}}, got)
	require.Len(t, api.created, 1)
	assert.Equal(t, "managed by azddns", api.created[0].Comment)
	assert.Equal(t, []string{"192.0.2.9"}, api.contents("home.example.com"))
}

func TestCloudflareSetARecordReplaces(t *testing.T) {
	api := &fakeCloudflare{
		zones: exampleZone,
		records: []cloudflare.DNSRecord{
			aRecord("a", "home.example.com", "10.0.0.1", 120),
			aRecord("b", "home.example.com", "10.0.0.2", 120),
			aRecord("c", "other.example.com", "10.0.0.3", 120),
		},
	}

	got, err := newCloudflareProvider(api).SetARecord(context.Background(), cfTarget, netip.MustParseAddr("192.0.2.9"))
	require.NoError(t, err)
	assert.Equal(t, int64(120), got.TTL)
	assert.ElementsMatch(t, []string{"a", "b"}, api.deleted)
	assert.Equal(t, []string{"192.0.2.9"}, api.contents("home.example.com"))
	assert.Equal(t, []string{"10.0.0.3"}, api.contents("other.example.com"))
}

func TestCloudflareSetARecordKeepsMatchingRecord(t *testing.T) {
	api := &fakeCloudflare{
		zones: exampleZone,
		records: []cloudflare.DNSRecord{
			aRecord("a", "example.com", "10.0.0.1", 300),
			aRecord("b", "example.com", "192.0.2.9", 60),
		},
	}

	got, err := newCloudflareProvider(api).SetARecord(context.Background(), RecordTarget{Zone: "example.com", Name: "@"}, netip.MustParseAddr("192.0.2.9"))
	require.NoError(t, err)
	assert.Equal(t, int64(60), got.TTL)
	assert.Empty(t, api.created)
	assert.Equal(t, []string{"a"}, api.deleted)
	assert.Equal(t, []string{"192.0.2.9"}, api.contents("example.com"))
}

func TestCloudflareSetARecordErrors(t *testing.T) {
	for _, tt := range []struct {
		name   string
		api    *fakeCloudflare
		wantOp string
	}{
		{
			name:   "unknown zone",
			api:    &fakeCloudflare{},
			wantOp: "zone lookup",
		},
		{
			name:   "ambiguous zone",
			api:    &fakeCloudflare{zones: []cloudflare.Zone{{ID: "z1", Name: "example.com"}, {ID: "z2", Name: "example.com"}}},
			wantOp: "zone lookup",
		},
		{
			name:   "create fails",
			api:    &fakeCloudflare{zones: exampleZone, createErr: errors.New("forbidden")},
			wantOp: "create",
		},
		{
			name: "delete fails",
			api: &fakeCloudflare{
				zones:     exampleZone,
				records:   []cloudflare.DNSRecord{aRecord("a", "home.example.com", "10.0.0.1", 120)},
				deleteErr: errors.New("forbidden"),
			},
			wantOp: "delete",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newCloudflareProvider(tt.api).SetARecord(context.Background(), cfTarget, netip.MustParseAddr("192.0.2.9"))
			var dnsErr *DNSError
			require.ErrorAs(t, err, &dnsErr)
			assert.Equal(t, tt.wantOp, dnsErr.Op)
			assert.Equal(t, "home.example.com", dnsErr.Record)
		})
	}
}

func newCloudflareTestAPI(t *testing.T, handler http.HandlerFunc) *cloudflare.API {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	api, err := cloudflare.NewWithAPIToken("token", cloudflare.BaseURL(srv.URL))
	require.NoError(t, err)
	return api
}

func TestCloudflareZoneID(t *testing.T) {
	api := newCloudflareTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("name"); got != "example.com" {
			t.Errorf("Expected zone filter %q; got %q", "example.com", got)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success":true,"errors":[],"messages":[],"result":[{"id":"z1","name":"example.com"}],`+
			`"result_info":{"page":1,"per_page":20,"total_pages":1,"count":1,"total_count":1}}`)
	})

	id, err := newCloudflareProvider(api).zoneID(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, "z1", id)
}

func TestCloudflareSetARecordCancel(t *testing.T) {
	api := newCloudflareTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	_, err := newCloudflareProvider(api).SetARecord(ctx, cfTarget, netip.MustParseAddr("192.0.2.9"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled; got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Expected the request to be aborted promptly; took %s", elapsed)
	}
}
