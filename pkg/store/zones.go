// Package store persists provisioning results and instance health in DynamoDB.
package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	awsprovider "github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/provider/aws"
)

// StatusActive is the status written for every newly provisioned zone
const StatusActive = "active"

// ProvisioningResult is the item written to the zones table, keyed by domain
type ProvisioningResult struct {
	Domain      string   `dynamodbav:"domain"`
	ZoneID      string   `dynamodbav:"zone_id"`
	ServerIP    string   `dynamodbav:"server_ip"`
	NS1IP       string   `dynamodbav:"ns1_ip"`
	NS1Hostname string   `dynamodbav:"ns1_hostname"`
	NS2IP       string   `dynamodbav:"ns2_ip,omitempty"`
	NS2Hostname string   `dynamodbav:"ns2_hostname,omitempty"`
	NameServers []string `dynamodbav:"nameservers"`

	// CreatedAt is an RFC 3339 UTC timestamp
	CreatedAt string `dynamodbav:"created_at"`
	Status    string `dynamodbav:"status"`
}

// ZoneStore writes provisioning results
type ZoneStore struct {
	client awsprovider.DynamoDBClientAPI
	table  string
}

// NewZoneStore returns a ZoneStore backed by table
func NewZoneStore(client awsprovider.DynamoDBClientAPI, table string) *ZoneStore {
	return &ZoneStore{client: client, table: table}
}

// PutZone writes result, replacing any previous item for the same domain
func (s *ZoneStore) PutZone(ctx context.Context, result ProvisioningResult) error {
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "store.PutZone")
	defer span.End()

	span.SetAttributes(
		attribute.String("dynamodb.table", s.table),
		attribute.String("dns.domain", result.Domain),
	)

	if result.NameServers == nil {
		result.NameServers = []string{}
	}

	item, err := attributevalue.MarshalMap(result)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal zone item for %s: %w", result.Domain, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save zone %s to %s: %w", result.Domain, s.table, err)
	}

	return nil
}
