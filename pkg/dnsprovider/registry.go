package dnsprovider

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Registry holds the DNS providers selectable with `dns provision --provider`
type Registry struct {
	mu        sync.RWMutex
	providers map[string]DNSProvider
}

// NewRegistry creates an empty DNS provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]DNSProvider),
	}
}

// Register adds provider under its own Name()
func (r *Registry) Register(ctx context.Context, provider DNSProvider) error {
	tracer := otel.Tracer("neo-hosting")
	_, span := tracer.Start(ctx, "dnsregistry.Register")
	defer span.End()

	if provider == nil {
		err := fmt.Errorf("cannot register a nil DNS provider")
		span.RecordError(err)
		return err
	}

	name := provider.Name()
	span.SetAttributes(attribute.String("dns_provider.name", name))

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		err := fmt.Errorf("DNS provider %q is already registered", name)
		span.RecordError(err)
		return err
	}

	r.providers[name] = provider
	return nil
}

// Get retrieves a DNS provider by name
func (r *Registry) Get(ctx context.Context, name string) (DNSProvider, error) {
	tracer := otel.Tracer("neo-hosting")
	_, span := tracer.Start(ctx, "dnsregistry.Get")
	defer span.End()

	span.SetAttributes(attribute.String("dns_provider.name", name))

	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		err := fmt.Errorf("DNS provider %q is not registered (available: %v)", name, r.names())
		span.RecordError(err)
		return nil, err
	}

	return provider, nil
}

// List returns all registered DNS provider names in sorted order
func (r *Registry) List(ctx context.Context) []string {
	tracer := otel.Tracer("neo-hosting")
	_, span := tracer.Start(ctx, "dnsregistry.List")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	names := r.names()
	span.SetAttributes(attribute.Int("dns_provider.count", len(names)))

	return names
}

// names lists provider names; the caller must hold r.mu
func (r *Registry) names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
