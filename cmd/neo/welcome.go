package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/status"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/tofu"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/welcome"
)

var (
	welcomeDomain   string
	welcomeEmail    string
	welcomeOutputs  string
	welcomeTFDir    string
	welcomeTofuBin  string
	welcomePassword string

	welcomeCmd = &cobra.Command{
		Use:   "welcome",
		Short: "Send the customer welcome e-mail",
		Long: `Send the welcome e-mail with server access details and the root password.

Access details come from a 'terraform output -json' file (--outputs) or are
read from the Terraform state in --tf-dir. The root password is generated
unless --password is given and is saved to root_password.txt next to the
outputs (mode 0600). Share it with the customer through a separate channel.`,
		Args: cobra.NoArgs,
		RunE: runWelcome,
	}
)

func init() {
	welcomeCmd.Flags().StringVar(&welcomeDomain, "domain", "", "Customer domain (required)")
	welcomeCmd.Flags().StringVar(&welcomeEmail, "email", "", "Customer e-mail address (required)")
	welcomeCmd.Flags().StringVar(&welcomeOutputs, "outputs", "", "Path to Terraform outputs.json")
	welcomeCmd.Flags().StringVar(&welcomeTFDir, "tf-dir", "", "Terraform working directory to read outputs from")
	welcomeCmd.Flags().StringVar(&welcomeTofuBin, "tofu-bin", "", "OpenTofu/Terraform binary for --tf-dir (downloaded when empty)")
	welcomeCmd.Flags().StringVar(&welcomePassword, "password", "", "Root password (generated if not provided)")

	// Panic is appropriate in init() since we cannot return errors and this indicates a programming error
	for _, name := range []string{"domain", "email"} {
		if err := welcomeCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
	welcomeCmd.MarkFlagsMutuallyExclusive("outputs", "tf-dir")
	welcomeCmd.MarkFlagsOneRequired("outputs", "tf-dir")
}

func runWelcome(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	ctx := cmd.Context()
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "cmd.welcome")
	defer span.End()

	span.SetAttributes(
		attribute.String("dns.domain", welcomeDomain),
		attribute.Bool("welcome.from_state", welcomeTFDir != ""),
	)

	ctx, cleanupStatus := status.StartHandler(ctx, statusHandler(os.Stdout))
	defer cleanupStatus()

	appFs := afero.NewOsFs()

	var outputs welcome.Outputs
	var passwordDir string
	if welcomeTFDir != "" {
		execPath, err := tofu.Executable(ctx, appFs, welcomeTofuBin)
		if err != nil {
			span.RecordError(err)
			return err
		}
		values, err := tofu.Outputs(ctx, welcomeTFDir, execPath)
		if err != nil {
			span.RecordError(err)
			return err
		}
		outputs = welcome.ParseOutputs(values)
		passwordDir = welcomeTFDir
	} else {
		var err error
		outputs, err = welcome.LoadOutputsFile(appFs, welcomeOutputs)
		if err != nil {
			span.RecordError(err)
			return err
		}
		passwordDir = filepath.Dir(welcomeOutputs)
	}

	clients, err := newClients(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}

	mailer := welcome.NewMailer(clients.SESClient, appFs, welcome.Options{
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
		TemplatePath: cfg.Email.TemplatePath,
	})

	result, err := mailer.Send(ctx, welcome.Request{
		Domain:      welcomeDomain,
		Email:       welcomeEmail,
		Password:    welcomePassword,
		Outputs:     outputs,
		PasswordDir: passwordDir,
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	cleanupStatus()

	fmt.Printf("Message ID: %s\n", result.MessageID)
	fmt.Printf("\nIMPORTANT: Root password has been saved to %s\n", result.PasswordFile)
	fmt.Println("Please securely share this with the customer through a separate channel.")

	slog.Info("Welcome e-mail sent", "domain", welcomeDomain, "message_id", result.MessageID)

	return nil
}
