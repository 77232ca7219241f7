package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/healthcheck"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/notify"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/status"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/store"
)

var healthCheckCmd = &cobra.Command{
	Use:   "health-check <instance_id>",
	Short: "Check a hosted server and record its health",
	Long: `Check the EC2 status, the control panel and public DNS resolution of a
hosted server, write the result to the instances table and publish an alert
when any check fails. Exits with status 1 when the server is unhealthy.`,
	Args: cobra.ExactArgs(1),
	RunE: runHealthCheck,
}

func runHealthCheck(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	instanceID := args[0]

	ctx := cmd.Context()
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "cmd.health-check")
	defer span.End()

	span.SetAttributes(attribute.String("ec2.instance_id", instanceID))

	ctx, cleanupStatus := status.StartHandler(ctx, statusHandler(os.Stdout))
	defer cleanupStatus()

	clients, err := newClients(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}

	res, err := newResolver()
	if err != nil {
		span.RecordError(err)
		return err
	}

	checker := healthcheck.NewChecker(healthcheck.Deps{
		EC2:       clients.EC2Client,
		Instances: store.NewInstanceStore(clients.DynamoDBClient, cfg.Store.InstancesTable),
		Notifier:  notify.NewPublisher(clients.SNSClient),
		Resolver:  res,
	}, healthcheck.Options{
		PublicResolver: cfg.DNS.PublicResolver,
		AlertsTopicARN: cfg.Notify.AlertsTopicARN,
		HTTPTimeout:    cfg.Health.HTTPTimeout.Std(),
	})

	result, err := checker.Run(ctx, instanceID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	slog.Info("Health check completed", "instance_id", instanceID, "overall", result.Health.Overall)

	if !result.Healthy {
		return &exitError{code: 1, err: fmt.Errorf("instance %s (%s) is unhealthy", instanceID, result.Instance.Domain)}
	}
	return nil
}
