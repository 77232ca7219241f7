package resolver

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// runFunc executes a command and returns its standard output
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Dig queries through the dig command line tool
type Dig struct {
	timeout time.Duration
	run     runFunc
}

// NewDig returns a resolver that shells out to dig
func NewDig(timeout time.Duration) *Dig {
	return &Dig{timeout: timeout, run: runCommand}
}

// Query runs `dig @server name +short`
func (d *Dig) Query(ctx context.Context, server, name string) (string, error) {
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "resolver.Dig.Query")
	defer span.End()

	span.SetAttributes(
		attribute.String("dns.server", server),
		attribute.String("dns.name", name),
	)

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	out, err := d.run(ctx, "dig", "@"+server, name, "+short")
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("query timed out after %s: %w", d.timeout, ctx.Err())
		}
		span.RecordError(err)
		return "", fmt.Errorf("dig @%s %s failed: %w", server, name, err)
	}

	return strings.TrimSpace(string(out)), nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
