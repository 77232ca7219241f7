package route53

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/aws/smithy-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/dnsprovider"
	awsprovider "github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/provider/aws"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/status"
)

// ProviderName is the registry name of the Route53 provider
const ProviderName = "route53"

// errCodeZoneExists is the API error code Route53 returns for a duplicate zone name
const errCodeZoneExists = "HostedZoneAlreadyExists"

// Provider implements dnsprovider.DNSProvider on Amazon Route53.
type Provider struct {
	client awsprovider.Route53ClientAPI
	now    func() time.Time
}

// NewProvider creates a Route53 DNS provider
func NewProvider(client awsprovider.Route53ClientAPI) *Provider {
	return &Provider{client: client, now: time.Now}
}

var _ dnsprovider.DNSProvider = (*Provider)(nil)

// Name returns the provider name.
func (p *Provider) Name() string {
	return ProviderName
}

// EnsureZone creates a public hosted zone for domain. When Route53 reports the
// name as taken, the existing zone is looked up and its delegation set is
// re-fetched with GetHostedZone.
func (p *Provider) EnsureZone(ctx context.Context, domain, comment string) (*dnsprovider.Zone, error) {
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "route53.EnsureZone")
	defer span.End()

	span.SetAttributes(attribute.String("dns.domain", domain))

	out, err := p.client.CreateHostedZone(ctx, &route53.CreateHostedZoneInput{
		Name:            aws.String(domain),
		CallerReference: aws.String(strconv.FormatInt(p.now().UnixNano(), 10)),
		HostedZoneConfig: &types.HostedZoneConfig{
			Comment:     aws.String(comment),
			PrivateZone: false,
		},
	})
	if err != nil {
		if !isZoneExists(err) {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to create hosted zone for %s: %w", domain, err)
		}

		zone, err := p.existingZone(ctx, domain)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		span.SetAttributes(
			attribute.String("dns.zone_id", zone.ID),
			attribute.String("dns.zone_outcome", zone.Outcome.String()),
		)
		return zone, nil
	}

	zone := &dnsprovider.Zone{
		Domain:  domain,
		Outcome: dnsprovider.ZoneCreated,
	}
	if out.HostedZone != nil {
		zone.ID = trimZoneID(aws.ToString(out.HostedZone.Id))
	}
	if out.DelegationSet != nil {
		zone.NameServers = out.DelegationSet.NameServers
	}

	span.SetAttributes(
		attribute.String("dns.zone_id", zone.ID),
		attribute.String("dns.zone_outcome", zone.Outcome.String()),
		attribute.Int("dns.nameserver_count", len(zone.NameServers)),
	)

	return zone, nil
}

// existingZone finds the zone named domain and re-fetches its delegation set.
// A failed re-fetch is reported as a warning and leaves NameServers empty.
func (p *Provider) existingZone(ctx context.Context, domain string) (*dnsprovider.Zone, error) {
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "route53.existingZone")
	defer span.End()

	status.Infof(ctx, "Hosted zone for %s already exists, looking it up", domain)

	list, err := p.client.ListHostedZonesByName(ctx, &route53.ListHostedZonesByNameInput{
		DNSName: aws.String(domain),
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to look up existing hosted zone for %s: %w", domain, err)
	}

	// DNS names compare case-insensitively; Route53 lists them in lower case
	want := strings.TrimSuffix(domain, ".")
	var id string
	for _, hz := range list.HostedZones {
		if strings.EqualFold(strings.TrimSuffix(aws.ToString(hz.Name), "."), want) {
			id = trimZoneID(aws.ToString(hz.Id))
			break
		}
	}
	if id == "" {
		span.RecordError(dnsprovider.ErrZoneNotFound)
		return nil, fmt.Errorf("%w: %s reported as existing but not listed", dnsprovider.ErrZoneNotFound, domain)
	}

	zone := &dnsprovider.Zone{
		Domain:  domain,
		ID:      id,
		Outcome: dnsprovider.ZoneAlreadyExisted,
	}

	got, err := p.client.GetHostedZone(ctx, &route53.GetHostedZoneInput{Id: aws.String(id)})
	if err != nil {
		span.RecordError(err)
		status.Send(ctx, status.NewUpdate(status.LevelWarning,
			fmt.Sprintf("Could not re-fetch nameservers for existing zone %s: %v", id, err)).
			WithStep("zone"))
		return zone, nil
	}
	if got.DelegationSet != nil {
		zone.NameServers = got.DelegationSet.NameServers
	}

	status.Send(ctx, status.NewUpdate(status.LevelInfo, "nameservers re-fetched for existing zone").
		WithStep("zone").
		WithMetadata("zone_id", id).
		WithMetadata("nameservers", len(zone.NameServers)))

	return zone, nil
}

// ApplyRecords submits records as a single UPSERT change batch
func (p *Provider) ApplyRecords(ctx context.Context, zoneID string, records []dnsprovider.Record) (string, error) {
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "route53.ApplyRecords")
	defer span.End()

	span.SetAttributes(
		attribute.String("dns.zone_id", zoneID),
		attribute.Int("dns.record_count", len(records)),
	)

	if len(records) == 0 {
		err := fmt.Errorf("no records to apply to zone %s", zoneID)
		span.RecordError(err)
		return "", err
	}

	changes := make([]types.Change, 0, len(records))
	for _, r := range records {
		changes = append(changes, types.Change{
			Action:            types.ChangeActionUpsert,
			ResourceRecordSet: toRecordSet(r),
		})
	}

	out, err := p.client.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(zoneID),
		ChangeBatch:  &types.ChangeBatch{Changes: changes},
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to apply %d records to zone %s: %w", len(records), zoneID, err)
	}

	var changeID string
	if out.ChangeInfo != nil {
		changeID = aws.ToString(out.ChangeInfo.Id)
	}
	span.SetAttributes(attribute.String("dns.change_id", changeID))

	return changeID, nil
}

func toRecordSet(r dnsprovider.Record) *types.ResourceRecordSet {
	values := make([]types.ResourceRecord, 0, len(r.Values))
	for _, v := range r.Values {
		values = append(values, types.ResourceRecord{Value: aws.String(v)})
	}

	return &types.ResourceRecordSet{
		Name:            aws.String(r.Name),
		Type:            types.RRType(r.Type),
		TTL:             aws.Int64(r.TTL),
		ResourceRecords: values,
	}
}

// trimZoneID keeps the last path segment of ids like "/hostedzone/Z123"
func trimZoneID(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

func isZoneExists(err error) bool {
	var exists *types.HostedZoneAlreadyExists
	if errors.As(err, &exists) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == errCodeZoneExists
}
