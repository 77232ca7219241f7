package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "neo.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"region", cfg.AWS.Region, "us-east-1"},
		{"resolver", cfg.DNS.Resolver, ResolverDig},
		{"public resolver", cfg.DNS.PublicResolver, "8.8.8.8"},
		{"query timeout", cfg.DNS.QueryTimeout.Std(), 10 * time.Second},
		{"attempts", cfg.DNS.PropagationAttempts, 10},
		{"delay", cfg.DNS.PropagationDelay.Std(), 30 * time.Second},
		{"zones table", cfg.Store.ZonesTable, "neo-dns-zones"},
		{"instances table", cfg.Store.InstancesTable, "neo-instances"},
		{"report dir", cfg.Report.Dir, "/tmp"},
		{"from email", cfg.Email.FromEmail, "support@yourhosting.com"},
		{"from name", cfg.Email.FromName, "Your Hosting Company"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, want nil", err)
	}
}

func TestParseConfig(t *testing.T) {
	path := writeConfig(t, `
aws:
  region: eu-west-1
dns:
  resolver: native
  propagation_attempts: 3
  propagation_delay: 10s
notify:
  dns_topic_arn: arn:aws:sns:eu-west-1:123456789012:neo-dns
report:
  bucket: neo-reports
`)

	cfg, err := ParseConfig(context.Background(), path)
	if err != nil {
		t.Fatalf("ParseConfig() error: %v", err)
	}

	if cfg.AWS.Region != "eu-west-1" {
		t.Errorf("AWS.Region = %q, want eu-west-1", cfg.AWS.Region)
	}
	if cfg.DNS.Resolver != ResolverNative {
		t.Errorf("DNS.Resolver = %q, want native", cfg.DNS.Resolver)
	}
	if cfg.DNS.PropagationAttempts != 3 {
		t.Errorf("DNS.PropagationAttempts = %d, want 3", cfg.DNS.PropagationAttempts)
	}
	if cfg.DNS.PropagationDelay.Std() != 10*time.Second {
		t.Errorf("DNS.PropagationDelay = %v, want 10s", cfg.DNS.PropagationDelay.Std())
	}
	if cfg.Report.Bucket != "neo-reports" {
		t.Errorf("Report.Bucket = %q, want neo-reports", cfg.Report.Bucket)
	}
	// Defaults are not applied by ParseConfig
	if cfg.Store.ZonesTable != "" {
		t.Errorf("Store.ZonesTable = %q, want empty", cfg.Store.ZonesTable)
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown field",
			content: "dns:\n  resolvr: dig\n",
			wantErr: "failed to parse config file",
		},
		{
			name:    "bad duration",
			content: "dns:\n  propagation_delay: soon\n",
			wantErr: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig(context.Background(), writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("ParseConfig() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseConfig_MissingFile(t *testing.T) {
	_, err := ParseConfig(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("ParseConfig() expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"AWS_REGION":           "ap-south-1",
		"NEO_AWS_ENDPOINT":     "http://localhost:4566",
		"SES_REGION":           "eu-central-1",
		"FROM_EMAIL":           "noreply@example.com",
		"NEO_ALERTS_TOPIC_ARN": "arn:aws:sns:ap-south-1:123456789012:neo-alerts",
		"NEO_REPORT_BUCKET":    "",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := &Config{Report: ReportConfig{Bucket: "from-file"}}
	cfg.ApplyEnv(lookup)

	if cfg.AWS.Region != "ap-south-1" {
		t.Errorf("AWS.Region = %q", cfg.AWS.Region)
	}
	if cfg.AWS.Endpoint != "http://localhost:4566" {
		t.Errorf("AWS.Endpoint = %q", cfg.AWS.Endpoint)
	}
	if cfg.Email.Region != "eu-central-1" || cfg.Email.FromEmail != "noreply@example.com" {
		t.Errorf("Email = %+v", cfg.Email)
	}
	if cfg.Notify.AlertsTopicARN == "" {
		t.Error("Notify.AlertsTopicARN not overridden")
	}
	// Empty env values do not clear file values
	if cfg.Report.Bucket != "from-file" {
		t.Errorf("Report.Bucket = %q, want from-file", cfg.Report.Bucket)
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	t.Setenv("AWS_REGION", "")
	t.Setenv("NEO_DNS_TOPIC_ARN", "arn:aws:sns:us-east-1:123456789012:from-env")

	path := writeConfig(t, "notify:\n  dns_topic_arn: arn:aws:sns:us-east-1:123456789012:from-file\n")

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := cfg.Notify.DNSTopicARN; !strings.HasSuffix(got, ":from-env") {
		t.Errorf("DNSTopicARN = %q, want env override", got)
	}
	if cfg.Store.ZonesTable != "neo-dns-zones" {
		t.Errorf("defaults not applied: ZonesTable = %q", cfg.Store.ZonesTable)
	}
}

func TestLoad_NoFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DNS.PropagationAttempts != 10 {
		t.Errorf("PropagationAttempts = %d, want 10", cfg.DNS.PropagationAttempts)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, "dns:\n  resolver: nslookup\n  propagation_attempts: -1\n")

	_, err := Load(context.Background(), path)
	if err == nil {
		t.Fatal("Load() expected validation error")
	}
	for _, want := range []string{"dns.resolver", "dns.propagation_attempts"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "native resolver", mutate: func(c *Config) { c.DNS.Resolver = ResolverNative }},
		{name: "zero delay allowed", mutate: func(c *Config) { c.DNS.PropagationDelay = 0 }},
		{name: "empty region", mutate: func(c *Config) { c.AWS.Region = "" }, wantErr: true},
		{name: "zero attempts", mutate: func(c *Config) { c.DNS.PropagationAttempts = 0 }, wantErr: true},
		{name: "negative delay", mutate: func(c *Config) { c.DNS.PropagationDelay = Duration(-time.Second) }, wantErr: true},
		{name: "zero query timeout", mutate: func(c *Config) { c.DNS.QueryTimeout = 0 }, wantErr: true},
		{name: "empty table", mutate: func(c *Config) { c.Store.ZonesTable = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
