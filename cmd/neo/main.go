package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/config"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/telemetry"
)

// exitInterrupted is the conventional status for a run stopped by SIGINT
const exitInterrupted = 130

var (
	configFile string
	verbose    bool

	// cfg is loaded in PersistentPreRunE before any subcommand runs
	cfg *config.Config

	shutdownTelemetry func(context.Context) error

	// Root command
	rootCmd = &cobra.Command{
		Use:   "neo",
		Short: "Neo VPS hosting post-provisioning tools",
		Long: `neo finishes the setup of a freshly provisioned hosting server: it creates
the customer's Route53 zone and records, checks server health, sends the
welcome e-mail and creates the monitoring dashboard.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Setup structured logging
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			}))
			slog.SetDefault(logger)

			var err error
			cfg, err = config.Load(cmd.Context(), configFile)
			if err != nil {
				return err
			}

			_, shutdownTelemetry, err = telemetry.Setup(cmd.Context(), telemetry.Options{
				Exporter: cfg.Telemetry.Exporter,
				Endpoint: cfg.Telemetry.Endpoint,
				Version:  version,
			})
			if err != nil {
				return fmt.Errorf("failed to setup telemetry: %w", err)
			}

			return nil
		},
	}
)

// exitError carries the process exit status for an error
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func init() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file (default: ./"+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(dnsCmd)
	rootCmd.AddCommand(healthCheckCmd)
	rootCmd.AddCommand(welcomeCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(validateCredsCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)

	if shutdownTelemetry != nil {
		if serr := shutdownTelemetry(context.WithoutCancel(ctx)); serr != nil {
			slog.Error("Failed to shutdown telemetry", "error", serr)
		}
	}

	if code := exitCode(ctx, err); code != 0 {
		stop()
		os.Exit(code)
	}
}

// exitCode reports err and maps it to the process exit status
func exitCode(ctx context.Context, err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "\n❌ Operation cancelled by user")
		return exitInterrupted
	}

	var ee *exitError
	if errors.As(err, &ee) {
		slog.Error("Command failed", "error", ee.err)
		fmt.Fprintf(os.Stderr, "❌ %v\n", ee.err)
		return ee.code
	}

	slog.Error("Command execution failed", "error", err)
	fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
	return 1
}
