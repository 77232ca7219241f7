package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	awsprovider "github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/provider/aws"
)

// ErrInstanceNotFound is returned when the instances table has no item for an id
var ErrInstanceNotFound = errors.New("instance not found")

// Overall health values
const (
	HealthHealthy   = "healthy"
	HealthUnhealthy = "unhealthy"
)

// Instance is the subset of an instances-table item read by the health check
type Instance struct {
	InstanceID string `dynamodbav:"instance_id"`
	Domain     string `dynamodbav:"domain"`
	PublicIP   string `dynamodbav:"public_ip"`

	// Panel is the control panel name (cpanel, cyberpanel, directadmin) or empty
	Panel string `dynamodbav:"panel"`
}

// CheckResult is the outcome of one health probe
type CheckResult struct {
	OK      bool   `dynamodbav:"ok" json:"ok"`
	Details string `dynamodbav:"details" json:"details"`
}

// HealthStatus replaces the health_status attribute on every run
type HealthStatus struct {
	Timestamp string                 `dynamodbav:"timestamp" json:"timestamp"`
	Checks    map[string]CheckResult `dynamodbav:"checks" json:"checks"`
	Overall   string                 `dynamodbav:"overall" json:"overall"`
}

// InstanceStore reads instances and records their health
type InstanceStore struct {
	client awsprovider.DynamoDBClientAPI
	table  string
}

// NewInstanceStore returns an InstanceStore backed by table
func NewInstanceStore(client awsprovider.DynamoDBClientAPI, table string) *InstanceStore {
	return &InstanceStore{client: client, table: table}
}

// Get loads the instance item for instanceID
func (s *InstanceStore) Get(ctx context.Context, instanceID string) (*Instance, error) {
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "store.GetInstance")
	defer span.End()

	span.SetAttributes(
		attribute.String("dynamodb.table", s.table),
		attribute.String("instance.id", instanceID),
	)

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       instanceKey(instanceID),
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read instance %s from %s: %w", instanceID, s.table, err)
	}
	if len(out.Item) == 0 {
		err := fmt.Errorf("%w: %s in %s", ErrInstanceNotFound, instanceID, s.table)
		span.RecordError(err)
		return nil, err
	}

	var inst Instance
	if err := attributevalue.UnmarshalMap(out.Item, &inst); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to decode instance %s: %w", instanceID, err)
	}
	if inst.InstanceID == "" {
		inst.InstanceID = instanceID
	}

	return &inst, nil
}

// UpdateHealth overwrites health_status and last_health_check for instanceID
func (s *InstanceStore) UpdateHealth(ctx context.Context, instanceID string, health HealthStatus) error {
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "store.UpdateHealth")
	defer span.End()

	span.SetAttributes(
		attribute.String("dynamodb.table", s.table),
		attribute.String("instance.id", instanceID),
		attribute.String("health.overall", health.Overall),
	)

	healthAV, err := attributevalue.Marshal(health)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal health status: %w", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(s.table),
		Key:              instanceKey(instanceID),
		UpdateExpression: aws.String("SET health_status = :health, last_health_check = :time"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":health": healthAV,
			":time":   &types.AttributeValueMemberS{Value: health.Timestamp},
		},
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update health of %s: %w", instanceID, err)
	}

	return nil
}

func instanceKey(instanceID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"instance_id": &types.AttributeValueMemberS{Value: instanceID},
	}
}
