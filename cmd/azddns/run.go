package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Travis-Britz/azddns"
	"github.com/Travis-Britz/azddns/internal/config"
)

func run(ctx context.Context, log *logrus.Logger, cfg *config.Config, once bool) error {
	log.Printf("starting, git commit %s", gitCommit)
	if log.IsLevelEnabled(logrus.DebugLevel) {
		azddns.ForwardAzureSDKLog(log.WithField("component", "azure-sdk"))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := azddns.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("error registering metrics: %w", err)
	}
	if cfg.Metrics.Port != 0 {
		log.Infof("starting metrics listener on port %d...", cfg.Metrics.Port)
		srv, err := startMetricsServer(log, cfg.Metrics.Port, reg)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	httpClient := cleanhttp.DefaultPooledClient()
	defer httpClient.CloseIdleConnections()

	resolver, err := newResolver(ctx, log, cfg)
	if err != nil {
		return err
	}

	var provider azddns.Option
	switch cfg.DNS.Provider {
	case config.ProviderCloudflare:
		provider = azddns.UsingCloudflare(cfg.Cloudflare.APIToken)
	default:
		provider = azddns.UsingAzure(azddns.AzureOptions{
			TenantID:       cfg.DNS.TenantID,
			ClientID:       cfg.DNS.ClientID,
			ClientSecret:   cfg.DNS.ClientSecret,
			SubscriptionID: cfg.DNS.SubscriptionID,
			ClientOptions: &arm.ClientOptions{
				ClientOptions: azcore.ClientOptions{Transport: httpClient},
			},
		})
	}

	client, err := azddns.New(cfg.Target(),
		provider,
		azddns.UsingResolver(resolver),
		azddns.UsingHTTPClient(httpClient),
		azddns.WithLogger(log),
		azddns.WithInterval(cfg.Interval()),
		azddns.WithMetrics(metrics),
	)
	if err != nil {
		return fmt.Errorf("error creating azddns client: %w", err)
	}

	if once {
		return client.RunDDNS(ctx)
	}
	log.Info("starting update loop")
	return client.Run(ctx)
}

// newResolver picks the one resolver used for the lifetime of the process.
func newResolver(ctx context.Context, log logrus.FieldLogger, cfg *config.Config) (azddns.Resolver, error) {
	switch {
	case cfg.Lookup.Address != "":
		log.Infof("publishing fixed address %s", cfg.Lookup.Address)
		return azddns.FromString(cfg.Lookup.Address)
	case cfg.Lambda.FunctionURL != "":
		log.Infof("looking up public IP with lambda function %s", cfg.Lambda.FunctionURL)
		return azddns.LambdaResolver(ctx, azddns.LambdaOptions{
			FunctionURL:     cfg.Lambda.FunctionURL,
			AccessKeyID:     cfg.Lambda.AccessKeyID,
			SecretAccessKey: cfg.Lambda.SecretAccessKey,
			Region:          cfg.Lambda.Region,
		})
	case cfg.Lookup.Method == config.LookupInterface:
		log.Infof("using public IP assigned to interface %s", cfg.Lookup.Interface)
		return azddns.InterfaceResolver(cfg.Lookup.Interface), nil
	case cfg.Lookup.Method == config.LookupDNS:
		log.Infof("looking up public IP with DNS server %s", cfg.Lookup.DNSServer)
		return azddns.DNSResolver(cfg.Lookup.DNSServer, cfg.Lookup.DNSName), nil
	default:
		log.Infof("looking up public IP with %s", cfg.Lookup.URL)
		return azddns.WebResolver(cfg.Lookup.URL), nil
	}
}

func metricsHandler(g prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok\n")
	})
	return r
}

func startMetricsServer(log logrus.FieldLogger, port int, g prometheus.Gatherer) (*http.Server, error) {
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("error starting metrics listener: %w", err)
	}
	srv := &http.Server{
		Handler:           metricsHandler(g),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("metrics listener stopped")
		}
	}()
	return srv, nil
}
