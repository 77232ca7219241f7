// Package resolver queries DNS servers for A records, either through the dig
// command or in-process.
package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Resolver asks one DNS server for the address records of a name
type Resolver interface {
	// Query returns the answer in dig "+short" form: one value per line
	Query(ctx context.Context, server, name string) (string, error)
}

// Kinds accepted by New
const (
	KindDig    = "dig"
	KindNative = "native"
)

// New returns the resolver selected by kind. Each query is bounded by timeout.
func New(kind string, timeout time.Duration) (Resolver, error) {
	switch kind {
	case KindDig, "":
		return NewDig(timeout), nil
	case KindNative:
		return NewNative(timeout), nil
	default:
		return nil, fmt.Errorf("unknown resolver %q (want %s or %s)", kind, KindDig, KindNative)
	}
}

// ContainsAddress reports whether a short-form answer mentions addr
func ContainsAddress(answer, addr string) bool {
	return addr != "" && strings.Contains(answer, addr)
}
