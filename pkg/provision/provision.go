// Package provision runs the DNS zone provisioning workflow for one customer
// domain: zone, records, nameserver probe, propagation check, persistence,
// notification and report.
package provision

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/dnsprovider"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/resolver"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/status"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/store"
)

// Workflow steps, used to tag status updates
const (
	stepZone        = "zone"
	stepRecords     = "records"
	stepProbe       = "probe"
	stepPropagation = "propagation"
	stepPersist     = "persist"
	stepNotify      = "notify"
	stepReport      = "report"
	stepArchive     = "archive"
)

// ZoneWriter persists the provisioning result
type ZoneWriter interface {
	PutZone(ctx context.Context, result store.ProvisioningResult) error
}

// Notifier publishes the completion message
type Notifier interface {
	Publish(ctx context.Context, topicARN, subject, message string) (string, error)
}

// Archiver keeps a copy of the report outside the local machine
type Archiver interface {
	Archive(ctx context.Context, fileName, content string) (string, error)
}

// Deps are the collaborators of a Provisioner. Archiver is optional.
type Deps struct {
	DNS      dnsprovider.DNSProvider
	Resolver resolver.Resolver
	Zones    ZoneWriter
	Notifier Notifier
	Archiver Archiver
	Fs       afero.Fs

	// Now defaults to time.Now
	Now func() time.Time
}

// Options tune a Provisioner
type Options struct {
	// ZoneComment prefixes the hosted zone comment; the date is appended
	ZoneComment string

	// PublicResolver is queried for propagation, e.g. 8.8.8.8
	PublicResolver string

	PropagationAttempts int
	PropagationDelay    time.Duration

	// ReportDir receives dns-report-<domain>-<timestamp>.txt
	ReportDir string

	// TopicARN is the SNS topic for the completion notice; empty skips it
	TopicARN string
}

// Request is one provisioning run
type Request struct {
	Domain   string
	ServerIP string
	NS1IP    string

	// NS2IP is optional
	NS2IP string
}

// Result describes what a run did
type Result struct {
	Zone             *dnsprovider.Zone
	ChangeID         string
	Records          []dnsprovider.Record
	NameserverChecks map[string]bool
	Propagated       bool
	Persisted        bool
	Notified         bool
	Report           string
	ReportPath       string

	// ArchiveURI is empty when no archive is configured or the upload failed
	ArchiveURI string
}

// Provisioner runs the workflow steps in order on the calling goroutine
type Provisioner struct {
	deps Deps
	opts Options
}

// New validates deps and returns a Provisioner
func New(deps Deps, opts Options) (*Provisioner, error) {
	var missing []string
	if deps.DNS == nil {
		missing = append(missing, "DNS")
	}
	if deps.Resolver == nil {
		missing = append(missing, "Resolver")
	}
	if deps.Zones == nil {
		missing = append(missing, "Zones")
	}
	if deps.Notifier == nil {
		missing = append(missing, "Notifier")
	}
	if deps.Fs == nil {
		missing = append(missing, "Fs")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("provisioner is missing dependencies: %v", missing)
	}
	if opts.PropagationAttempts < 1 {
		return nil, fmt.Errorf("propagation attempts must be at least 1, got %d", opts.PropagationAttempts)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Provisioner{deps: deps, opts: opts}, nil
}

// Validate checks the request before any remote call is made
func (r Request) Validate() error {
	var errs []error
	if r.Domain == "" {
		errs = append(errs, errors.New("domain is required"))
	}
	for _, f := range []struct{ name, value string }{
		{"server_ip", r.ServerIP},
		{"ns1_ip", r.NS1IP},
		{"ns2_ip", r.NS2IP},
	} {
		if f.value == "" {
			if f.name != "ns2_ip" {
				errs = append(errs, fmt.Errorf("%s is required", f.name))
			}
			continue
		}
		addr, err := netip.ParseAddr(f.value)
		if err != nil || !addr.Is4() {
			errs = append(errs, fmt.Errorf("%s %q is not an IPv4 address", f.name, f.value))
		}
	}
	return errors.Join(errs...)
}

// nameservers lists the custom nameservers of the request
func (r Request) nameservers() []Nameserver {
	ns := []Nameserver{{Label: "ns1", IP: r.NS1IP}}
	if r.NS2IP != "" {
		ns = append(ns, Nameserver{Label: "ns2", IP: r.NS2IP})
	}
	return ns
}

// Run provisions req. Zone and record failures abort the run; propagation
// and probe failures are warnings; persistence, notification and archive
// failures are best-effort. Cancelling ctx aborts between and during steps.
func (p *Provisioner) Run(ctx context.Context, req Request) (*Result, error) {
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "provision.Run")
	defer span.End()

	span.SetAttributes(
		attribute.String("dns.domain", req.Domain),
		attribute.String("dns.server_ip", req.ServerIP),
		attribute.Bool("dns.has_ns2", req.NS2IP != ""),
	)

	if err := req.Validate(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	setupTime := p.deps.Now()
	result := &Result{}

	// (a) hosted zone
	status.Send(ctx, status.NewUpdate(status.LevelInfo,
		fmt.Sprintf("Creating hosted zone for %s", req.Domain)).WithStep(stepZone))

	comment := fmt.Sprintf("%s - %s", p.opts.ZoneComment, setupTime.Format("2006-01-02"))
	zone, err := p.deps.DNS.EnsureZone(ctx, req.Domain, comment)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to ensure hosted zone: %w", err)
	}
	result.Zone = zone

	switch zone.Outcome {
	case dnsprovider.ZoneCreated:
		status.Send(ctx, status.NewUpdate(status.LevelSuccess,
			fmt.Sprintf("Hosted zone created: %s", zone.ID)).
			WithStep(stepZone).
			WithMetadata("zone_id", zone.ID))
	case dnsprovider.ZoneAlreadyExisted:
		status.Send(ctx, status.NewUpdate(status.LevelSuccess,
			fmt.Sprintf("Using existing hosted zone: %s", zone.ID)).
			WithStep(stepZone).
			WithMetadata("zone_id", zone.ID))
	}
	for _, ns := range zone.NameServers {
		status.Send(ctx, status.NewUpdate(status.LevelInfo, "  "+ns).WithStep(stepZone))
	}

	// (b) records
	result.Records = BuildRecords(req.Domain, req.ServerIP, req.NS1IP, req.NS2IP)
	status.Send(ctx, status.NewUpdate(status.LevelInfo, "Creating DNS records").WithStep(stepRecords))

	changeID, err := p.deps.DNS.ApplyRecords(ctx, zone.ID, result.Records)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create DNS records: %w", err)
	}
	result.ChangeID = changeID

	status.Send(ctx, status.NewUpdate(status.LevelSuccess,
		fmt.Sprintf("Created %d DNS records (change %s)", len(result.Records), changeID)).
		WithStep(stepRecords).
		WithMetadata("change_id", changeID).
		WithMetadata("record_count", len(result.Records)))

	// (c) nameserver probe
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result.NameserverChecks = ProbeNameservers(ctx, p.deps.Resolver, req.Domain, req.ServerIP, req.nameservers())

	// (d) propagation
	verifier := &Verifier{
		Resolver: p.deps.Resolver,
		Server:   p.opts.PublicResolver,
		Attempts: p.opts.PropagationAttempts,
		Delay:    p.opts.PropagationDelay,
	}
	result.Propagated, err = verifier.Verify(ctx, req.Domain, req.ServerIP)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	state := ReportState{
		Domain:      req.Domain,
		ServerIP:    req.ServerIP,
		NS1IP:       req.NS1IP,
		NS2IP:       req.NS2IP,
		ZoneID:      zone.ID,
		NameServers: zone.NameServers,
		Records:     result.Records,
		SetupTime:   setupTime,
	}

	// (e) persistence
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result.Persisted = bestEffort(ctx, stepPersist, "DynamoDB save", p.deps.Zones.PutZone(ctx, provisioningResult(req, zone, setupTime)))
	if result.Persisted {
		status.Send(ctx, status.NewUpdate(status.LevelSuccess, "Saved to DynamoDB").WithStep(stepPersist))
	}

	// (f) notification
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result.Notified = p.notify(ctx, state)

	// (g) report
	result.Report = Report(state)
	result.ReportPath = filepath.Join(p.opts.ReportDir, ReportFileName(req.Domain, setupTime))
	if err := p.writeReport(result.ReportPath, result.Report); err != nil {
		span.RecordError(err)
		return nil, err
	}
	status.Send(ctx, status.NewUpdate(status.LevelInfo,
		fmt.Sprintf("Report saved to: %s", result.ReportPath)).WithStep(stepReport))

	if p.deps.Archiver != nil {
		uri, err := p.deps.Archiver.Archive(ctx, filepath.Base(result.ReportPath), result.Report)
		if bestEffort(ctx, stepArchive, "Report archive", err) {
			result.ArchiveURI = uri
			status.Send(ctx, status.NewUpdate(status.LevelSuccess,
				fmt.Sprintf("Report archived to %s", uri)).WithStep(stepArchive))
		}
	}

	span.SetAttributes(
		attribute.String("dns.zone_id", zone.ID),
		attribute.Bool("dns.propagated", result.Propagated),
		attribute.Bool("dns.persisted", result.Persisted),
		attribute.Bool("dns.notified", result.Notified),
	)

	return result, nil
}

func (p *Provisioner) notify(ctx context.Context, state ReportState) bool {
	if p.opts.TopicARN == "" {
		status.Send(ctx, status.NewUpdate(status.LevelWarning,
			"No DNS notification topic configured, skipping notification").WithStep(stepNotify))
		return false
	}

	status.Send(ctx, status.NewUpdate(status.LevelInfo, "Sending notification").WithStep(stepNotify))

	id, err := p.deps.Notifier.Publish(ctx, p.opts.TopicARN, NotificationSubject(state.Domain), NotificationMessage(state))
	if !bestEffort(ctx, stepNotify, "Notification", err) {
		return false
	}

	status.Send(ctx, status.NewUpdate(status.LevelSuccess, "Notification sent").
		WithStep(stepNotify).
		WithMetadata("message_id", id))
	return true
}

func (p *Provisioner) writeReport(path, content string) error {
	if err := p.deps.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := afero.WriteFile(p.deps.Fs, path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

func provisioningResult(req Request, zone *dnsprovider.Zone, at time.Time) store.ProvisioningResult {
	result := store.ProvisioningResult{
		Domain:      req.Domain,
		ZoneID:      zone.ID,
		ServerIP:    req.ServerIP,
		NS1IP:       req.NS1IP,
		NS1Hostname: "ns1." + req.Domain,
		NameServers: zone.NameServers,
		CreatedAt:   at.UTC().Format(time.RFC3339),
		Status:      store.StatusActive,
	}
	if req.NS2IP != "" {
		result.NS2IP = req.NS2IP
		result.NS2Hostname = "ns2." + req.Domain
	}
	return result
}
