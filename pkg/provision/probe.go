package provision

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/resolver"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/status"
)

// Nameserver is a custom nameserver label (ns1, ns2) and its address
type Nameserver struct {
	Label string
	IP    string
}

// ProbeNameservers queries each custom nameserver directly for domain and
// reports whether its answer contains serverIP. A failed query marks only
// that nameserver as false.
func ProbeNameservers(ctx context.Context, r resolver.Resolver, domain, serverIP string, nameservers []Nameserver) map[string]bool {
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "provision.ProbeNameservers")
	defer span.End()

	span.SetAttributes(
		attribute.String("dns.domain", domain),
		attribute.Int("dns.nameserver_count", len(nameservers)),
	)

	status.Send(ctx, status.NewUpdate(status.LevelInfo, "Testing custom nameservers").WithStep(stepProbe))

	results := make(map[string]bool, len(nameservers))
	for _, ns := range nameservers {
		answer, err := r.Query(ctx, ns.IP, domain)
		if err != nil {
			results[ns.Label] = false
			status.Send(ctx, status.NewUpdate(status.LevelWarning,
				fmt.Sprintf("%s (%s): query failed: %v", ns.Label, ns.IP, err)).WithStep(stepProbe))
			continue
		}

		ok := resolver.ContainsAddress(answer, serverIP)
		results[ns.Label] = ok
		if ok {
			status.Send(ctx, status.NewUpdate(status.LevelSuccess,
				fmt.Sprintf("%s (%s): responding", ns.Label, ns.IP)).WithStep(stepProbe))
		} else {
			status.Send(ctx, status.NewUpdate(status.LevelWarning,
				fmt.Sprintf("%s (%s): not responding yet", ns.Label, ns.IP)).WithStep(stepProbe))
		}
	}

	return results
}
