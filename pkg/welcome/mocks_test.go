package welcome

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ses"
)

// mockSESClient implements awsprovider.SESClientAPI for testing
type mockSESClient struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *mockSESClient) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, params, optFns...)
	}
	return nil, fmt.Errorf("SendEmailFunc not implemented")
}
