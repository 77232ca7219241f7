package main

import (
	"context"
	"fmt"

	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/dnsprovider"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/dnsprovider/route53"
	awsprovider "github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/provider/aws"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/resolver"
)

// newClients builds the AWS clients for the loaded config
func newClients(ctx context.Context) (*awsprovider.Clients, error) {
	clients, err := awsprovider.NewClients(ctx, awsprovider.ClientOptions{
		Region:    cfg.AWS.Region,
		SESRegion: cfg.Email.Region,
		Endpoint:  cfg.AWS.Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS clients: %w", err)
	}
	return clients, nil
}

// newDNSRegistry registers every DNS provider explicitly (no init() magic)
func newDNSRegistry(ctx context.Context, clients *awsprovider.Clients) (*dnsprovider.Registry, error) {
	registry := dnsprovider.NewRegistry()
	if err := registry.Register(ctx, route53.NewProvider(clients.Route53Client)); err != nil {
		return nil, fmt.Errorf("failed to register Route53 DNS provider: %w", err)
	}
	return registry, nil
}

func newResolver() (resolver.Resolver, error) {
	return resolver.New(cfg.DNS.Resolver, cfg.DNS.QueryTimeout.Std())
}
