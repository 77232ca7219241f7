package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/dnsprovider/route53"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/tofu"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	tracer := otel.Tracer("neo-hosting")
	_, span := tracer.Start(cmd.Context(), "cmd.version")
	defer span.End()

	slog.Info("Version command executed", "version", version, "commit", commit)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Neo hosting tools (neo)\n")
	fmt.Fprintf(out, "Version: %s\n", version)
	fmt.Fprintf(out, "Commit: %s\n", commit)
	fmt.Fprintf(out, "OpenTofu version: %s\n", tofu.DefaultVersion)
	fmt.Fprintf(out, "DNS providers: [%s]\n", route53.ProviderName)

	return nil
}
