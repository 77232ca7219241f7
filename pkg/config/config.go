package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-yaml"
)

// DefaultFile is read when --config is not given and the file exists in the working directory
const DefaultFile = "neo.yaml"

// Resolver backends for DNS queries
const (
	ResolverDig    = "dig"
	ResolverNative = "native"
)

// Config represents the parsed neo.yaml structure
type Config struct {
	AWS       AWSConfig       `yaml:"aws,omitempty"`
	DNS       DNSConfig       `yaml:"dns,omitempty"`
	Store     StoreConfig     `yaml:"store,omitempty"`
	Notify    NotifyConfig    `yaml:"notify,omitempty"`
	Report    ReportConfig    `yaml:"report,omitempty"`
	Email     EmailConfig     `yaml:"email,omitempty"`
	Health    HealthConfig    `yaml:"health,omitempty"`
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`
}

// AWSConfig selects the account region and an optional endpoint override
type AWSConfig struct {
	Region string `yaml:"region,omitempty"`

	// Endpoint overrides every service endpoint (LocalStack). Static test
	// credentials are used when it is set.
	Endpoint string `yaml:"endpoint,omitempty"`
}

// DNSConfig controls zone comments, resolver choice and propagation polling
type DNSConfig struct {
	// Resolver is "dig" (subprocess) or "native" (in-process)
	Resolver            string   `yaml:"resolver,omitempty"`
	PublicResolver      string   `yaml:"public_resolver,omitempty"`
	QueryTimeout        Duration `yaml:"query_timeout,omitempty"`
	PropagationAttempts int      `yaml:"propagation_attempts,omitempty"`
	PropagationDelay    Duration `yaml:"propagation_delay,omitempty"`
	ZoneComment         string   `yaml:"zone_comment,omitempty"`
}

// StoreConfig names the DynamoDB tables
type StoreConfig struct {
	ZonesTable     string `yaml:"zones_table,omitempty"`
	InstancesTable string `yaml:"instances_table,omitempty"`
}

// NotifyConfig holds SNS topic ARNs. An empty ARN disables that notification.
type NotifyConfig struct {
	DNSTopicARN    string `yaml:"dns_topic_arn,omitempty"`
	AlertsTopicARN string `yaml:"alerts_topic_arn,omitempty"`
}

// ReportConfig controls where DNS reports are written and archived
type ReportConfig struct {
	Dir    string `yaml:"dir,omitempty"`
	Bucket string `yaml:"bucket,omitempty"`
}

// EmailConfig configures the welcome e-mail sender
type EmailConfig struct {
	Region       string `yaml:"region,omitempty"`
	FromEmail    string `yaml:"from_email,omitempty"`
	FromName     string `yaml:"from_name,omitempty"`
	TemplatePath string `yaml:"template_path,omitempty"`
}

// HealthConfig configures the server health check
type HealthConfig struct {
	HTTPTimeout Duration `yaml:"http_timeout,omitempty"`
}

// TelemetryConfig selects the trace exporter; empty values defer to OTEL_* env vars
type TelemetryConfig struct {
	Exporter string `yaml:"exporter,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
}

// Duration is a time.Duration written as a Go duration string ("30s", "1m") in YAML
type Duration time.Duration

// UnmarshalYAML implements yaml.BytesUnmarshaler
func (d *Duration) UnmarshalYAML(b []byte) error {
	var s string
	if err := yaml.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.InterfaceMarshaler
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	setString(&c.AWS.Region, "us-east-1")

	setString(&c.DNS.Resolver, ResolverDig)
	setString(&c.DNS.PublicResolver, "8.8.8.8")
	setDuration(&c.DNS.QueryTimeout, 10*time.Second)
	if c.DNS.PropagationAttempts == 0 {
		c.DNS.PropagationAttempts = 10
	}
	setDuration(&c.DNS.PropagationDelay, 30*time.Second)
	setString(&c.DNS.ZoneComment, "Managed by Neo VPS Platform")

	setString(&c.Store.ZonesTable, "neo-dns-zones")
	setString(&c.Store.InstancesTable, "neo-instances")

	setString(&c.Report.Dir, "/tmp")

	setString(&c.Email.Region, "us-east-1")
	setString(&c.Email.FromEmail, "support@yourhosting.com")
	setString(&c.Email.FromName, "Your Hosting Company")
	setString(&c.Email.TemplatePath, "templates/welcome-email.html")

	setDuration(&c.Health.HTTPTimeout, 10*time.Second)
}

// Validate checks value ranges after defaults and overrides are applied
func (c *Config) Validate() error {
	var errs []error

	if c.AWS.Region == "" {
		errs = append(errs, errors.New("aws.region is required"))
	}
	if c.DNS.Resolver != ResolverDig && c.DNS.Resolver != ResolverNative {
		errs = append(errs, fmt.Errorf("dns.resolver must be %q or %q, got %q", ResolverDig, ResolverNative, c.DNS.Resolver))
	}
	if c.DNS.PropagationAttempts < 1 {
		errs = append(errs, fmt.Errorf("dns.propagation_attempts must be at least 1, got %d", c.DNS.PropagationAttempts))
	}
	if c.DNS.PropagationDelay < 0 {
		errs = append(errs, fmt.Errorf("dns.propagation_delay must not be negative, got %s", c.DNS.PropagationDelay.Std()))
	}
	if c.DNS.QueryTimeout <= 0 {
		errs = append(errs, fmt.Errorf("dns.query_timeout must be positive, got %s", c.DNS.QueryTimeout.Std()))
	}
	if c.Store.ZonesTable == "" || c.Store.InstancesTable == "" {
		errs = append(errs, errors.New("store.zones_table and store.instances_table must not be empty"))
	}
	if c.Report.Dir == "" {
		errs = append(errs, errors.New("report.dir must not be empty"))
	}
	if c.Health.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("health.http_timeout must be positive, got %s", c.Health.HTTPTimeout.Std()))
	}

	return errors.Join(errs...)
}

func setString(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func setDuration(field *Duration, value time.Duration) {
	if *field == 0 {
		*field = Duration(value)
	}
}
