// Package notify publishes plaintext notifications to SNS topics.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	awsprovider "github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/provider/aws"
)

// ErrNoTopic is returned when Publish is called without a topic ARN
var ErrNoTopic = errors.New("no SNS topic configured")

// maxSubjectLen is the longest subject SNS accepts (it must be under 100 characters)
const maxSubjectLen = 99

// Publisher sends messages to SNS topics
type Publisher struct {
	client awsprovider.SNSClientAPI
}

// NewPublisher returns a Publisher using client
func NewPublisher(client awsprovider.SNSClientAPI) *Publisher {
	return &Publisher{client: client}
}

// Publish sends message to topicARN and returns the SNS message id
func (p *Publisher) Publish(ctx context.Context, topicARN, subject, message string) (string, error) {
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "notify.Publish")
	defer span.End()

	span.SetAttributes(
		attribute.String("sns.topic_arn", topicARN),
		attribute.String("sns.subject", subject),
	)

	if topicARN == "" {
		span.RecordError(ErrNoTopic)
		return "", ErrNoTopic
	}

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(topicARN),
		Subject:  aws.String(truncateSubject(subject)),
		Message:  aws.String(message),
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish to %s: %w", topicARN, err)
	}

	id := aws.ToString(out.MessageId)
	span.SetAttributes(attribute.String("sns.message_id", id))

	return id, nil
}

// truncateSubject shortens s to the SNS subject limit without splitting a rune
func truncateSubject(s string) string {
	runes := []rune(s)
	if len(runes) <= maxSubjectLen {
		return s
	}
	return string(runes[:maxSubjectLen])
}
