package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/dashboard"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/status"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard <domain> <instance_id>",
	Short: "Create the CloudWatch dashboard for a customer server",
	Args:  cobra.ExactArgs(2),
	RunE:  runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	domain, instanceID := args[0], args[1]

	ctx := cmd.Context()
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "cmd.dashboard")
	defer span.End()

	span.SetAttributes(
		attribute.String("dns.domain", domain),
		attribute.String("ec2.instance_id", instanceID),
	)

	ctx, cleanupStatus := status.StartHandler(ctx, statusHandler(os.Stdout))
	defer cleanupStatus()

	clients, err := newClients(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}

	name, url, err := dashboard.NewCreator(clients.CloudWatchClient, clients.Region).Create(ctx, domain, instanceID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	status.Successf(ctx, "Created dashboard: %s", name)
	status.Infof(ctx, "🔗 %s", url)

	slog.Info("Dashboard created", "dashboard", name, "instance_id", instanceID)

	return nil
}
