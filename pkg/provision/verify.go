package provision

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/resolver"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/retry"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/status"
)

// Verifier polls a public resolver until the domain resolves to the server address
type Verifier struct {
	Resolver resolver.Resolver

	// Server is the public resolver address, e.g. 8.8.8.8
	Server   string
	Attempts int
	Delay    time.Duration
}

// Verify returns true as soon as the public resolver answers with expectedIP.
// Exhausting the attempts returns false without an error; per-attempt query
// failures are reported as warnings and count as failed attempts.
func (v *Verifier) Verify(ctx context.Context, domain, expectedIP string) (bool, error) {
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "provision.Verify")
	defer span.End()

	span.SetAttributes(
		attribute.String("dns.domain", domain),
		attribute.String("dns.resolver", v.Server),
		attribute.Int("dns.max_attempts", v.Attempts),
	)

	status.Send(ctx, status.NewUpdate(status.LevelInfo, "Verifying DNS propagation").WithStep(stepPropagation))

	result, err := retry.Until(ctx, v.Attempts, v.Delay,
		func(ctx context.Context, attempt int) (bool, error) {
			answer, err := v.Resolver.Query(ctx, v.Server, domain)
			if err != nil {
				return false, err
			}
			return resolver.ContainsAddress(answer, expectedIP), nil
		},
		retry.WithName("dns propagation"),
		retry.WithOnError(func(attempt int, err error) {
			status.Send(ctx, status.NewUpdate(status.LevelWarning,
				fmt.Sprintf("DNS query failed (attempt %d/%d): %v", attempt, v.Attempts, err)).
				WithStep(stepPropagation))
		}),
		retry.WithOnWaiting(func(attempt, attempts int) {
			status.Send(ctx, status.NewUpdate(status.LevelProgress,
				fmt.Sprintf("Waiting for DNS propagation... (attempt %d/%d)", attempt, attempts)).
				WithStep(stepPropagation).
				WithMetadata("attempt", attempt))
		}),
	)
	if err != nil {
		span.RecordError(err)
		return false, err
	}

	span.SetAttributes(
		attribute.Bool("dns.propagated", result.Succeeded),
		attribute.Int("dns.attempts", result.Attempts),
	)

	if result.Succeeded {
		status.Send(ctx, status.NewUpdate(status.LevelSuccess,
			fmt.Sprintf("DNS propagated: %s → %s", domain, expectedIP)).WithStep(stepPropagation))
		return true, nil
	}

	status.Send(ctx, status.NewUpdate(status.LevelWarning,
		fmt.Sprintf("DNS not fully propagated after %d attempts", v.Attempts)).WithStep(stepPropagation))
	status.Send(ctx, status.NewUpdate(status.LevelInfo,
		"This is normal - full propagation can take 24-48 hours").WithStep(stepPropagation))

	return false, nil
}
