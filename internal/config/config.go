package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/Travis-Britz/azddns"
)

// EnvPrefix is prepended to every environment variable, e.g. AZDDNS_DNS_CLIENT_SECRET for dns.client_secret.
const EnvPrefix = "AZDDNS"

const (
	ProviderAzure      = "azure"
	ProviderCloudflare = "cloudflare"

	LookupHTTP      = "http"
	LookupDNS       = "dns"
	LookupInterface = "interface"
)

type Config struct {
	UpdateIntervalMinutes int        `mapstructure:"update_interval_minutes"`
	LogLevel              string     `mapstructure:"log_level"`
	DNS                   DNS        `mapstructure:"dns"`
	Cloudflare            Cloudflare `mapstructure:"cloudflare"`
	Lookup                Lookup     `mapstructure:"lookup"`
	Lambda                Lambda     `mapstructure:"lambda"`
	Metrics               Metrics    `mapstructure:"metrics"`
}

type DNS struct {
	Provider       string `mapstructure:"provider"`
	TenantID       string `mapstructure:"tenant_id"`
	ClientID       string `mapstructure:"client_id"`
	ClientSecret   string `mapstructure:"client_secret"`
	SubscriptionID string `mapstructure:"subscription_id"`
	ResourceGroup  string `mapstructure:"resource_group"`
	Zone           string `mapstructure:"zone"`
	Record         string `mapstructure:"record"`
	Host           string `mapstructure:"host"`
}

type Cloudflare struct {
	APIToken string `mapstructure:"api_token"`
}

type Lookup struct {
	Method    string `mapstructure:"method"`
	URL       string `mapstructure:"url"`
	Address   string `mapstructure:"address"`
	DNSServer string `mapstructure:"dns_server"`
	DNSName   string `mapstructure:"dns_name"`
	Interface string `mapstructure:"interface"`
}

type Lambda struct {
	FunctionURL     string `mapstructure:"function_url"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Region          string `mapstructure:"region"`
}

type Metrics struct {
	Port int `mapstructure:"port"`
}

var defaults = map[string]any{
	"update_interval_minutes": 5,
	"log_level":               "info",
	"dns.provider":            ProviderAzure,
	"lookup.method":           LookupHTTP,
	"lookup.url":              azddns.DefaultLookupURL,
	"lookup.dns_server":       azddns.DefaultDNSLookupServer,
	"lookup.dns_name":         azddns.DefaultDNSLookupName,
	"lambda.region":           azddns.DefaultLambdaRegion,
	"metrics.port":            9090,
}

// keys without a default still need an environment binding for Unmarshal to see them
var unset = []string{
	"dns.tenant_id",
	"dns.client_id",
	"dns.client_secret",
	"dns.subscription_id",
	"dns.resource_group",
	"dns.zone",
	"dns.record",
	"dns.host",
	"cloudflare.api_token",
	"lookup.address",
	"lookup.interface",
	"lambda.function_url",
	"lambda.access_key_id",
	"lambda.secret_access_key",
}

// NewViper returns a viper instance holding the defaults and bound to the AZDDNS_* environment.
// Callers may bind command-line flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	for _, k := range unset {
		_ = v.BindEnv(k)
	}
	return v
}

// Load reads the config file at path into v and decodes the result.
// With an empty path, azddns.{json,yaml,toml,...} is looked up in the working directory and in $HOME/.config/azddns,
// and a missing file is not an error.
//
// The returned Config has not been validated.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("azddns")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/azddns")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	return c, nil
}

// FindDotEnv returns the path of the first .env file found in dir or one of its parents,
// or "" when there is none.
func FindDotEnv(dir string) string {
	for {
		p := filepath.Join(dir, ".env")
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// LoadDotEnv loads the nearest .env file into the process environment.
// Variables that are already set are not overwritten.
func LoadDotEnv(log logrus.FieldLogger) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("error getting working directory: %w", err)
	}
	p := FindDotEnv(wd)
	if p == "" {
		log.Info(".env file not found, using environment variables")
		return nil
	}
	if err := godotenv.Load(p); err != nil {
		return fmt.Errorf("error loading %s: %w", p, err)
	}
	log.Infof("loaded environment from %s", p)
	return nil
}

// Validate reports every problem with c at once.
func (c *Config) Validate() error {
	var errs []error

	if c.UpdateIntervalMinutes < 1 {
		errs = append(errs, fmt.Errorf("update_interval_minutes must be a positive integer; got %d", c.UpdateIntervalMinutes))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	if c.DNS.Zone == "" {
		errs = append(errs, errors.New("dns.zone is required"))
	}
	if c.DNS.Record == "" {
		errs = append(errs, errors.New("dns.record is required"))
	}
	switch c.DNS.Provider {
	case ProviderAzure:
		for k, v := range map[string]string{
			"dns.tenant_id":       c.DNS.TenantID,
			"dns.client_id":       c.DNS.ClientID,
			"dns.client_secret":   c.DNS.ClientSecret,
			"dns.subscription_id": c.DNS.SubscriptionID,
			"dns.resource_group":  c.DNS.ResourceGroup,
		} {
			if v == "" {
				errs = append(errs, fmt.Errorf("%s is required for the azure provider", k))
			}
		}
	case ProviderCloudflare:
		if c.Cloudflare.APIToken == "" {
			errs = append(errs, errors.New("cloudflare.api_token is required for the cloudflare provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("dns.provider must be %q or %q; got %q", ProviderAzure, ProviderCloudflare, c.DNS.Provider))
	}

	switch c.Lookup.Method {
	case LookupHTTP, LookupDNS:
	case LookupInterface:
		if c.Lookup.Interface == "" {
			errs = append(errs, errors.New("lookup.interface is required for the interface lookup method"))
		}
	default:
		errs = append(errs, fmt.Errorf("lookup.method must be %q, %q or %q; got %q", LookupHTTP, LookupDNS, LookupInterface, c.Lookup.Method))
	}
	if c.Lookup.Address != "" {
		if _, err := azddns.ParseIPv4(c.Lookup.Address); err != nil {
			errs = append(errs, fmt.Errorf("lookup.address: %w", err))
		}
	}

	if c.Lambda.FunctionURL != "" {
		u, err := url.Parse(c.Lambda.FunctionURL)
		if err != nil || u.Scheme != "https" || u.Host == "" {
			errs = append(errs, fmt.Errorf("lambda.function_url must be an absolute https URL; got %q", c.Lambda.FunctionURL))
		}
	}
	if (c.Lambda.AccessKeyID == "") != (c.Lambda.SecretAccessKey == "") {
		errs = append(errs, errors.New("lambda.access_key_id and lambda.secret_access_key must be set together"))
	}

	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		errs = append(errs, fmt.Errorf("metrics.port must be within [0,65535]; got %d", c.Metrics.Port))
	}

	return errors.Join(errs...)
}

// Target returns the record-set described by the dns section.
func (c *Config) Target() azddns.RecordTarget {
	return azddns.RecordTarget{
		ResourceGroup: c.DNS.ResourceGroup,
		Zone:          c.DNS.Zone,
		Name:          c.DNS.Record,
		Host:          c.DNS.Host,
	}
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.UpdateIntervalMinutes) * time.Minute
}
