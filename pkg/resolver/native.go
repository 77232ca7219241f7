package resolver

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Native queries in-process over UDP
type Native struct {
	client *dns.Client
	port   string
}

// NewNative returns a resolver built on miekg/dns
func NewNative(timeout time.Duration) *Native {
	return &Native{
		client: &dns.Client{Net: "udp", Timeout: timeout},
		port:   "53",
	}
}

// Query sends one A question for name to server and formats the answer like dig +short
func (n *Native) Query(ctx context.Context, server, name string) (string, error) {
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "resolver.Native.Query")
	defer span.End()

	span.SetAttributes(
		attribute.String("dns.server", server),
		attribute.String("dns.name", name),
	)

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), dns.TypeA)

	resp, _, err := n.client.ExchangeContext(ctx, msg, n.address(server))
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("query @%s %s failed: %w", server, name, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		err := fmt.Errorf("query @%s %s returned %s", server, name, dns.RcodeToString[resp.Rcode])
		span.RecordError(err)
		return "", err
	}

	span.SetAttributes(attribute.Int("dns.answer_count", len(resp.Answer)))

	return shortAnswer(resp.Answer), nil
}

// address appends the port unless server already carries one
func (n *Native) address(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(server, n.port)
}

func shortAnswer(rrs []dns.RR) string {
	lines := make([]string, 0, len(rrs))
	for _, rr := range rrs {
		switch v := rr.(type) {
		case *dns.A:
			lines = append(lines, v.A.String())
		case *dns.CNAME:
			lines = append(lines, v.Target)
		}
	}
	return strings.Join(lines, "\n")
}
