// Package healthcheck probes a hosted instance (EC2 status, control panel,
// public DNS), records the result in the instances table and alerts on failure.
package healthcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/notify"
	awsprovider "github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/provider/aws"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/resolver"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/status"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/store"
)

// InstanceRepository reads an instance and records its health
type InstanceRepository interface {
	Get(ctx context.Context, instanceID string) (*store.Instance, error)
	UpdateHealth(ctx context.Context, instanceID string, health store.HealthStatus) error
}

// Notifier publishes the failure alert
type Notifier interface {
	Publish(ctx context.Context, topicARN, subject, message string) (string, error)
}

// Options tune a Checker
type Options struct {
	// PublicResolver is queried for the DNS check, e.g. 8.8.8.8
	PublicResolver string

	// AlertsTopicARN receives the alert for unhealthy instances; empty skips it
	AlertsTopicARN string

	// HTTPTimeout bounds the control panel probe
	HTTPTimeout time.Duration
}

// Deps are the collaborators of a Checker. HTTPClient and Now are optional.
type Deps struct {
	EC2        awsprovider.EC2ClientAPI
	Instances  InstanceRepository
	Notifier   Notifier
	Resolver   resolver.Resolver
	HTTPClient *http.Client
	Now        func() time.Time
}

// Checker runs the health checks for one instance at a time
type Checker struct {
	ec2        awsprovider.EC2ClientAPI
	instances  InstanceRepository
	notifier   Notifier
	resolver   resolver.Resolver
	http       *http.Client
	panelPorts map[string]int
	now        func() time.Time
	opts       Options
}

// Result is the outcome of one health check run
type Result struct {
	Instance *store.Instance
	Health   store.HealthStatus
	Healthy  bool
	Alerted  bool
}

// NewChecker returns a Checker
func NewChecker(deps Deps, opts Options) *Checker {
	c := &Checker{
		ec2:        deps.EC2,
		instances:  deps.Instances,
		notifier:   deps.Notifier,
		resolver:   deps.Resolver,
		http:       deps.HTTPClient,
		panelPorts: DefaultPanelPorts,
		now:        deps.Now,
		opts:       opts,
	}
	if c.http == nil {
		c.http = newPanelClient(opts.HTTPTimeout)
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Run checks instanceID, writes the health status and alerts when any check
// fails. An unhealthy instance is not an error; see Result.Healthy.
func (c *Checker) Run(ctx context.Context, instanceID string) (*Result, error) {
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "healthcheck.Run")
	defer span.End()

	span.SetAttributes(attribute.String("ec2.instance_id", instanceID))

	status.Infof(ctx, "🔍 Running health check for %s", instanceID)

	instance, err := c.instances.Get(ctx, instanceID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load instance %s: %w", instanceID, err)
	}

	checks := map[string]store.CheckResult{}
	var ec2Result, panelResult, dnsResult store.CheckResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ec2Result = c.checkEC2(gctx, instanceID)
		return gctx.Err()
	})
	g.Go(func() error {
		panelResult = c.checkPanel(gctx, instance.PublicIP, instance.Panel)
		return gctx.Err()
	})
	g.Go(func() error {
		dnsResult = c.checkDNS(gctx, instance.Domain)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("health check for %s interrupted: %w", instanceID, err)
	}

	checks[CheckEC2] = ec2Result
	checks[CheckPanel] = panelResult
	checks[CheckDNS] = dnsResult

	reportCheck(ctx, "EC2 Status", ec2Result)
	reportCheck(ctx, "Panel HTTP", panelResult)
	reportCheck(ctx, "DNS", dnsResult)

	healthy := ec2Result.OK && panelResult.OK && dnsResult.OK
	health := store.HealthStatus{
		Timestamp: c.now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Overall:   store.HealthUnhealthy,
	}
	if healthy {
		health.Overall = store.HealthHealthy
	}

	span.SetAttributes(
		attribute.String("health.overall", health.Overall),
		attribute.String("dns.domain", instance.Domain),
	)

	result := &Result{Instance: instance, Health: health, Healthy: healthy}

	updateErr := c.instances.UpdateHealth(ctx, instanceID, health)
	if updateErr != nil {
		span.RecordError(updateErr)
	}

	if !healthy {
		result.Alerted = c.alert(ctx, instance, health)
	}

	if updateErr != nil {
		return result, fmt.Errorf("failed to record health of %s: %w", instanceID, updateErr)
	}

	if healthy {
		status.Successf(ctx, "%s is healthy", instanceID)
	} else {
		status.Send(ctx, status.NewUpdate(status.LevelError,
			fmt.Sprintf("%s is unhealthy", instanceID)).WithMetadata("domain", instance.Domain))
	}

	return result, nil
}

// alert publishes the failure to the alerts topic. Failures are warnings.
func (c *Checker) alert(ctx context.Context, instance *store.Instance, health store.HealthStatus) bool {
	body, err := json.MarshalIndent(health, "", "  ")
	if err != nil {
		status.Warningf(ctx, "Could not encode health status for alert: %v", err)
		return false
	}

	subject := "⚠️ Health Check Failed: " + instance.Domain
	message := fmt.Sprintf("Instance %s (%s) failed health checks:\n\n%s", instance.InstanceID, instance.Domain, body)

	if _, err := c.notifier.Publish(ctx, c.opts.AlertsTopicARN, subject, message); err != nil {
		if errors.Is(err, notify.ErrNoTopic) {
			status.Warning(ctx, "No alerts topic configured, skipping alert")
		} else {
			status.Warningf(ctx, "Alert failed (non-critical): %v", err)
		}
		return false
	}

	status.Info(ctx, "Alert sent")
	return true
}

func reportCheck(ctx context.Context, name string, r store.CheckResult) {
	if r.OK {
		status.Send(ctx, status.NewUpdate(status.LevelSuccess, "  "+name).WithMetadata("details", r.Details))
		return
	}
	status.Send(ctx, status.NewUpdate(status.LevelError,
		fmt.Sprintf("  %s: %s", name, r.Details)).WithMetadata("details", r.Details))
}
