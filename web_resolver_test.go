package azddns_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/Travis-Britz/azddns"
)

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cache-Control") != "no-cache" {
			t.Errorf("Expected Cache-Control: no-cache; got %q", r.Header.Get("Cache-Control"))
		}
		io.WriteString(w, "192.168.2.1\n")
	}))
	defer srv.Close()
	wr := azddns.WebResolver(srv.URL)
	res, err := wr.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Request failed: %s", err)
	}

	if expected, got := netip.MustParseAddr("192.168.2.1"), res; expected != got {
		t.Fatalf("Expected %q; got %q", expected, got)
	}
}

func TestLookupBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "192.168.2.1")
	}))
	defer srv.Close()

	_, err := azddns.WebResolver(srv.URL).Resolve(context.Background())
	var lookupErr *azddns.LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("Expected *azddns.LookupError; got %v", err)
	}
}

func TestLookupInvalidBody(t *testing.T) {
	for body, want := range map[string]error{
		"":            azddns.ErrEmptyInput,
		"invalid ip":  azddns.ErrFormat,
		"300.1.1.1\n": azddns.ErrRange,
		"fd64::1":     azddns.ErrFormat,
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, body)
		}))
		_, err := azddns.WebResolver(srv.URL).Resolve(context.Background())
		srv.Close()
		if !errors.Is(err, want) {
			t.Errorf("body %q: Expected %q; got %v", body, want, err)
		}
	}
}

func TestLookupConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := azddns.WebResolver(url).Resolve(context.Background())
	var lookupErr *azddns.LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("Expected *azddns.LookupError; got %v", err)
	}
	if lookupErr.Resolver != "http" {
		t.Fatalf("Expected resolver %q; got %q", "http", lookupErr.Resolver)
	}
}

func TestLookupCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(25*time.Millisecond, cancel)

	start := time.Now()
	_, err := azddns.WebResolver(srv.URL).Resolve(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled; got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("Expected the request to be aborted promptly; took %s", elapsed)
	}
}
