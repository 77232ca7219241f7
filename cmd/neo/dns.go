package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/dnsprovider/route53"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/notify"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/provision"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/status"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/store"
)

var (
	dnsProviderName string

	dnsCmd = &cobra.Command{
		Use:   "dns",
		Short: "Manage customer DNS zones",
	}

	dnsProvisionCmd = &cobra.Command{
		Use:   "provision <domain> <server_ip> <ns1_ip> [ns2_ip]",
		Short: "Create the hosted zone and hosting records for a customer domain",
		Long: `Create (or reuse) the public hosted zone for a domain, upsert the standard
hosting records (web, mail, nameserver glue, SPF, DMARC), check the custom
nameservers and public propagation, save the result to DynamoDB, send the
completion notice and write a report file.

Running it again for the same domain reuses the zone and overwrites the records.`,
		Args: cobra.RangeArgs(3, 4),
		RunE: runDNSProvision,
	}
)

func init() {
	dnsProvisionCmd.Flags().StringVar(&dnsProviderName, "provider", route53.ProviderName, "DNS provider hosting the zone")
	dnsCmd.AddCommand(dnsProvisionCmd)
}

func runDNSProvision(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	ctx := cmd.Context()
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "cmd.dns.provision")
	defer span.End()

	req := provision.Request{Domain: args[0], ServerIP: args[1], NS1IP: args[2]}
	if len(args) == 4 {
		req.NS2IP = args[3]
	}

	span.SetAttributes(
		attribute.String("dns.domain", req.Domain),
		attribute.String("dns.provider", dnsProviderName),
	)

	if err := req.Validate(); err != nil {
		span.RecordError(err)
		return err
	}

	slog.Info("Starting DNS provisioning", "domain", req.Domain, "server_ip", req.ServerIP)

	// Setup status handler for progress updates
	ctx, cleanupStatus := status.StartHandler(ctx, statusHandler(os.Stdout))
	defer cleanupStatus()

	clients, err := newClients(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}

	registry, err := newDNSRegistry(ctx, clients)
	if err != nil {
		span.RecordError(err)
		return err
	}
	dnsProvider, err := registry.Get(ctx, dnsProviderName)
	if err != nil {
		span.RecordError(err)
		return err
	}

	res, err := newResolver()
	if err != nil {
		span.RecordError(err)
		return err
	}

	deps := provision.Deps{
		DNS:      dnsProvider,
		Resolver: res,
		Zones:    store.NewZoneStore(clients.DynamoDBClient, cfg.Store.ZonesTable),
		Notifier: notify.NewPublisher(clients.SNSClient),
		Fs:       afero.NewOsFs(),
	}
	if cfg.Report.Bucket != "" {
		deps.Archiver = provision.NewS3Archiver(clients.S3Client, cfg.Report.Bucket)
	}

	provisioner, err := provision.New(deps, provision.Options{
		ZoneComment:         cfg.DNS.ZoneComment,
		PublicResolver:      cfg.DNS.PublicResolver,
		PropagationAttempts: cfg.DNS.PropagationAttempts,
		PropagationDelay:    cfg.DNS.PropagationDelay.Std(),
		ReportDir:           cfg.Report.Dir,
		TopicARN:            cfg.Notify.DNSTopicARN,
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	result, err := provisioner.Run(ctx, req)
	if err != nil {
		span.RecordError(err)
		return err
	}

	// Flush progress lines before the report
	cleanupStatus()

	fmt.Print(result.Report)
	fmt.Printf("\n✅ DNS setup complete for %s\n", req.Domain)

	slog.Info("DNS provisioning completed",
		"domain", req.Domain,
		"zone_id", result.Zone.ID,
		"propagated", result.Propagated,
		"report", result.ReportPath,
	)

	return nil
}
