package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	awsprovider "github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/provider/aws"
)

var validateCredsCmd = &cobra.Command{
	Use:   "validate-creds",
	Short: "Check the configuration and the AWS permissions the commands need",
	Long: `Validate the configuration, resolve the caller identity and simulate every
IAM action the neo commands call. SNS and S3 permissions are only checked when
a topic or report bucket is configured.`,
	Args: cobra.NoArgs,
	RunE: runValidateCreds,
}

func runValidateCreds(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	// Get cancellable context from cobra (for signal handling)
	ctx := cmd.Context()
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "cmd.validate-creds")
	defer span.End()

	fmt.Printf("✓ Configuration is valid\n")
	fmt.Printf("  Region: %s\n", cfg.AWS.Region)
	fmt.Printf("  Zones table: %s\n", cfg.Store.ZonesTable)

	clients, err := newClients(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}

	slog.Info("Performing credential validation", "region", cfg.AWS.Region)

	result, err := awsprovider.ValidateCredentials(ctx, clients, cfg)
	if err != nil {
		span.RecordError(err)
		slog.Error("Credential validation failed", "error", err)
		return err
	}

	span.SetAttributes(
		attribute.String("aws.account_id", result.AccountID),
		attribute.Int("permissions.missing", len(result.MissingPermissions)),
	)

	fmt.Printf("  Account: %s\n", result.AccountID)
	fmt.Printf("  Identity: %s\n", result.Arn)

	if len(result.MissingPermissions) > 0 {
		return fmt.Errorf("missing IAM permissions: %s", strings.Join(result.MissingPermissions, ", "))
	}

	fmt.Printf("✓ Credentials are valid with required permissions\n")
	return nil
}
