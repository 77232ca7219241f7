package healthcheck

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ec2"

	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/store"
)

// mockEC2Client implements awsprovider.EC2ClientAPI for testing
type mockEC2Client struct {
	DescribeInstanceStatusFunc func(ctx context.Context, params *ec2.DescribeInstanceStatusInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceStatusOutput, error)
}

func (m *mockEC2Client) DescribeInstanceStatus(ctx context.Context, params *ec2.DescribeInstanceStatusInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceStatusOutput, error) {
	if m.DescribeInstanceStatusFunc != nil {
		return m.DescribeInstanceStatusFunc(ctx, params, optFns...)
	}
	return &ec2.DescribeInstanceStatusOutput{}, nil
}

// mockInstances implements InstanceRepository for testing
type mockInstances struct {
	GetFunc          func(ctx context.Context, instanceID string) (*store.Instance, error)
	UpdateHealthFunc func(ctx context.Context, instanceID string, health store.HealthStatus) error
}

func (m *mockInstances) Get(ctx context.Context, instanceID string) (*store.Instance, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, instanceID)
	}
	return nil, fmt.Errorf("GetFunc not implemented")
}

func (m *mockInstances) UpdateHealth(ctx context.Context, instanceID string, health store.HealthStatus) error {
	if m.UpdateHealthFunc != nil {
		return m.UpdateHealthFunc(ctx, instanceID, health)
	}
	return nil
}

// mockNotifier implements Notifier for testing
type mockNotifier struct {
	PublishFunc func(ctx context.Context, topicARN, subject, message string) (string, error)
}

func (m *mockNotifier) Publish(ctx context.Context, topicARN, subject, message string) (string, error) {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topicARN, subject, message)
	}
	return "msg-1", nil
}

// mockResolver implements resolver.Resolver for testing
type mockResolver struct {
	QueryFunc func(ctx context.Context, server, name string) (string, error)
}

func (m *mockResolver) Query(ctx context.Context, server, name string) (string, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, server, name)
	}
	return "", fmt.Errorf("QueryFunc not implemented")
}
