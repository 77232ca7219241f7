package provision

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	awsprovider "github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/provider/aws"
)

// reportPrefix is the S3 key prefix for archived reports
const reportPrefix = "dns-reports"

// S3Archiver uploads DNS reports to a bucket
type S3Archiver struct {
	client awsprovider.S3ClientAPI
	bucket string
}

// NewS3Archiver returns an archiver writing to bucket
func NewS3Archiver(client awsprovider.S3ClientAPI, bucket string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket}
}

// Archive uploads content as dns-reports/<fileName> and returns the s3:// URI
func (a *S3Archiver) Archive(ctx context.Context, fileName, content string) (string, error) {
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "provision.Archive")
	defer span.End()

	key := path.Join(reportPrefix, fileName)
	span.SetAttributes(
		attribute.String("s3.bucket", a.bucket),
		attribute.String("s3.key", key),
	)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(content),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to upload report to s3://%s/%s: %w", a.bucket, key, err)
	}

	return fmt.Sprintf("s3://%s/%s", a.bucket, key), nil
}
