package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/config"
)

// simulateBatchSize is the SimulatePrincipalPolicy limit on action names per call
const simulateBatchSize = 100

// CredentialValidationResult contains the results of credential validation.
type CredentialValidationResult struct {
	AccountID          string
	Arn                string
	MissingPermissions []string
}

// ValidateCredentials confirms the caller identity and simulates every IAM
// action the configured commands will call
func ValidateCredentials(ctx context.Context, clients *Clients, cfg *config.Config) (*CredentialValidationResult, error) {
	return validateCredentialsWithClients(ctx, clients.STSClient, clients.IAMClient, cfg)
}

// validateCredentialsWithClients performs thorough credential validation using
// provided clients (for testability).
func validateCredentialsWithClients(ctx context.Context, stsClient STSClient, iamClient IAMClient, cfg *config.Config) (*CredentialValidationResult, error) {
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "aws.validateCredentialsWithClients")
	defer span.End()

	identity, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get caller identity: %w", err)
	}

	result := &CredentialValidationResult{
		AccountID: aws.ToString(identity.Account),
		Arn:       aws.ToString(identity.Arn),
	}

	span.SetAttributes(
		attribute.String("aws.account_id", result.AccountID),
		attribute.String("aws.arn", result.Arn),
	)

	requiredPerms := getRequiredPermissions(cfg)

	var missingPerms []string
	for i := 0; i < len(requiredPerms); i += simulateBatchSize {
		end := min(i+simulateBatchSize, len(requiredPerms))

		simResult, err := iamClient.SimulatePrincipalPolicy(ctx, &iam.SimulatePrincipalPolicyInput{
			PolicySourceArn: identity.Arn,
			ActionNames:     requiredPerms[i:end],
			ResourceArns:    []string{"*"},
		})
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to simulate IAM policy: %w", err)
		}

		for _, evalResult := range simResult.EvaluationResults {
			if evalResult.EvalDecision != iamtypes.PolicyEvaluationDecisionTypeAllowed {
				missingPerms = append(missingPerms, aws.ToString(evalResult.EvalActionName))
			}
		}
	}

	result.MissingPermissions = missingPerms

	span.SetAttributes(
		attribute.Int("permissions.checked", len(requiredPerms)),
		attribute.Int("permissions.missing", len(missingPerms)),
	)

	return result, nil
}

// getRequiredPermissions returns the IAM actions the neo commands call.
// SNS and S3 actions are only required when a topic or report bucket is configured.
func getRequiredPermissions(cfg *config.Config) []string {
	perms := []string{
		"sts:GetCallerIdentity",

		// dns provision
		"route53:CreateHostedZone",
		"route53:GetHostedZone",
		"route53:ListHostedZonesByName",
		"route53:ChangeResourceRecordSets",
		"dynamodb:PutItem",

		// health-check
		"ec2:DescribeInstanceStatus",
		"dynamodb:GetItem",
		"dynamodb:UpdateItem",

		// welcome
		"ses:SendEmail",

		// dashboard
		"cloudwatch:PutDashboard",
	}

	if cfg.Notify.DNSTopicARN != "" || cfg.Notify.AlertsTopicARN != "" {
		perms = append(perms, "sns:Publish")
	}

	if cfg.Report.Bucket != "" {
		perms = append(perms, "s3:PutObject")
	}

	return perms
}
