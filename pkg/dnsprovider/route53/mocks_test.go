package route53

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/smithy-go"
)

// mockRoute53Client implements awsprovider.Route53ClientAPI for testing
type mockRoute53Client struct {
	CreateHostedZoneFunc         func(ctx context.Context, params *route53.CreateHostedZoneInput, optFns ...func(*route53.Options)) (*route53.CreateHostedZoneOutput, error)
	GetHostedZoneFunc            func(ctx context.Context, params *route53.GetHostedZoneInput, optFns ...func(*route53.Options)) (*route53.GetHostedZoneOutput, error)
	ListHostedZonesByNameFunc    func(ctx context.Context, params *route53.ListHostedZonesByNameInput, optFns ...func(*route53.Options)) (*route53.ListHostedZonesByNameOutput, error)
	ChangeResourceRecordSetsFunc func(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
}

func (m *mockRoute53Client) CreateHostedZone(ctx context.Context, params *route53.CreateHostedZoneInput, optFns ...func(*route53.Options)) (*route53.CreateHostedZoneOutput, error) {
	if m.CreateHostedZoneFunc != nil {
		return m.CreateHostedZoneFunc(ctx, params, optFns...)
	}
	return nil, fmt.Errorf("CreateHostedZoneFunc not implemented")
}

func (m *mockRoute53Client) GetHostedZone(ctx context.Context, params *route53.GetHostedZoneInput, optFns ...func(*route53.Options)) (*route53.GetHostedZoneOutput, error) {
	if m.GetHostedZoneFunc != nil {
		return m.GetHostedZoneFunc(ctx, params, optFns...)
	}
	return nil, fmt.Errorf("GetHostedZoneFunc not implemented")
}

func (m *mockRoute53Client) ListHostedZonesByName(ctx context.Context, params *route53.ListHostedZonesByNameInput, optFns ...func(*route53.Options)) (*route53.ListHostedZonesByNameOutput, error) {
	if m.ListHostedZonesByNameFunc != nil {
		return m.ListHostedZonesByNameFunc(ctx, params, optFns...)
	}
	return &route53.ListHostedZonesByNameOutput{}, nil
}

func (m *mockRoute53Client) ChangeResourceRecordSets(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error) {
	if m.ChangeResourceRecordSetsFunc != nil {
		return m.ChangeResourceRecordSetsFunc(ctx, params, optFns...)
	}
	return nil, fmt.Errorf("ChangeResourceRecordSetsFunc not implemented")
}

// mockAPIError implements smithy.APIError for testing.
type mockAPIError struct {
	code    string
	message string
}

func (e *mockAPIError) Error() string                 { return fmt.Sprintf("api error %s: %s", e.code, e.message) }
func (e *mockAPIError) ErrorCode() string             { return e.code }
func (e *mockAPIError) ErrorMessage() string          { return e.message }
func (e *mockAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }
