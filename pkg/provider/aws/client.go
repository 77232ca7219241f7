package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// LocalStack accepts any credentials; these are used whenever an endpoint override is set
const (
	localAccessKeyID     = "test"
	localSecretAccessKey = "test"
)

// ClientOptions selects the region and optional endpoint for NewClients
type ClientOptions struct {
	// Region is the default region for every client
	Region string

	// SESRegion overrides the region of the SES client (SES is not available everywhere)
	SESRegion string

	// Endpoint overrides every service endpoint, e.g. http://localhost:4566 for LocalStack
	Endpoint string
}

// Clients holds the AWS service clients used by the neo commands
type Clients struct {
	Route53Client    *route53.Client
	SNSClient        *sns.Client
	DynamoDBClient   *dynamodb.Client
	SESClient        *ses.Client
	CloudWatchClient *cloudwatch.Client
	EC2Client        *ec2.Client
	S3Client         *s3.Client
	STSClient        *sts.Client
	IAMClient        *iam.Client
	Config           aws.Config
	Region           string
}

// NewClients creates and initializes all AWS service clients.
// Credentials are loaded from environment variables or AWS config files.
func NewClients(ctx context.Context, opts ClientOptions) (*Clients, error) {
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "aws.NewClients")
	defer span.End()

	span.SetAttributes(
		attribute.String("aws.region", opts.Region),
		attribute.Bool("aws.endpoint_override", opts.Endpoint != ""),
	)

	if opts.Region == "" {
		err := fmt.Errorf("AWS region is required")
		span.RecordError(err)
		return nil, err
	}

	cfg, err := loadAWSConfig(ctx, opts)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	sesRegion := opts.SESRegion
	if sesRegion == "" {
		sesRegion = opts.Region
	}

	clients := &Clients{
		Route53Client:    route53.NewFromConfig(cfg),
		SNSClient:        sns.NewFromConfig(cfg),
		DynamoDBClient:   dynamodb.NewFromConfig(cfg),
		SESClient:        ses.NewFromConfig(cfg, func(o *ses.Options) { o.Region = sesRegion }),
		CloudWatchClient: cloudwatch.NewFromConfig(cfg),
		EC2Client:        ec2.NewFromConfig(cfg),
		S3Client: s3.NewFromConfig(cfg, func(o *s3.Options) {
			// LocalStack serves buckets on the path, not as virtual hosts
			o.UsePathStyle = opts.Endpoint != ""
		}),
		STSClient: sts.NewFromConfig(cfg),
		IAMClient: iam.NewFromConfig(cfg),
		Config:    cfg,
		Region:    opts.Region,
	}

	return clients, nil
}

// loadAWSConfig loads AWS configuration using the default credential chain,
// or static test credentials when an endpoint override is configured
func loadAWSConfig(ctx context.Context, opts ClientOptions) (aws.Config, error) {
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "aws.loadAWSConfig")
	defer span.End()

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}
	if opts.Endpoint != "" {
		loadOpts = append(loadOpts,
			config.WithBaseEndpoint(opts.Endpoint),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(localAccessKeyID, localSecretAccessKey, "")),
		)
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		span.RecordError(err)
		return aws.Config{}, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	creds, err := cfg.Credentials.Retrieve(ctx)
	if err != nil {
		span.RecordError(err)
		return aws.Config{}, fmt.Errorf("failed to retrieve AWS credentials: %w", err)
	}

	if creds.AccessKeyID == "" {
		err := fmt.Errorf("AWS credentials not found. Set AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY environment variables or configure ~/.aws/credentials")
		span.RecordError(err)
		return aws.Config{}, err
	}

	span.SetAttributes(
		attribute.String("aws.region", opts.Region),
		attribute.Bool("aws.credentials_valid", true),
	)

	return cfg, nil
}
