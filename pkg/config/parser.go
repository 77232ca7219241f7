package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-yaml"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// LookupFunc resolves an environment variable; os.LookupEnv in production
type LookupFunc func(key string) (string, bool)

// Load builds the effective configuration: file values, then environment
// overrides, then defaults. An empty path falls back to DefaultFile when it
// exists and to pure defaults otherwise.
func Load(ctx context.Context, path string) (*Config, error) {
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "config.Load")
	defer span.End()

	cfg := &Config{}

	switch {
	case path != "":
		parsed, err := ParseConfig(ctx, path)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		cfg = parsed
	default:
		parsed, err := ParseConfig(ctx, DefaultFile)
		switch {
		case err == nil:
			cfg = parsed
			path = DefaultFile
		case errors.Is(err, fs.ErrNotExist):
		default:
			span.RecordError(err)
			return nil, err
		}
	}

	cfg.ApplyEnv(os.LookupEnv)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	span.SetAttributes(
		attribute.String("config.file", path),
		attribute.String("config.region", cfg.AWS.Region),
		attribute.String("config.resolver", cfg.DNS.Resolver),
	)

	return cfg, nil
}

// ParseConfig parses a neo.yaml file without applying env overrides or defaults
func ParseConfig(ctx context.Context, filePath string) (*Config, error) {
	tracer := otel.Tracer("neo-hosting")
	_, span := tracer.Start(ctx, "config.ParseConfig")
	defer span.End()

	span.SetAttributes(attribute.String("config.file", filePath))

	data, err := os.ReadFile(filePath)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	var cfg Config
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.DisallowUnknownField()); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to parse config file %s: %w", filePath, err)
	}

	return &cfg, nil
}

// ApplyEnv overrides file values with the environment variables the
// provisioning scripts have always honoured
func (c *Config) ApplyEnv(lookup LookupFunc) {
	overrides := []struct {
		key   string
		field *string
	}{
		{"AWS_REGION", &c.AWS.Region},
		{"NEO_AWS_ENDPOINT", &c.AWS.Endpoint},
		{"SES_REGION", &c.Email.Region},
		{"FROM_EMAIL", &c.Email.FromEmail},
		{"FROM_NAME", &c.Email.FromName},
		{"NEO_DNS_TOPIC_ARN", &c.Notify.DNSTopicARN},
		{"NEO_ALERTS_TOPIC_ARN", &c.Notify.AlertsTopicARN},
		{"NEO_REPORT_BUCKET", &c.Report.Bucket},
	}

	for _, o := range overrides {
		if v, ok := lookup(o.key); ok && v != "" {
			*o.field = v
		}
	}
}
