package provision

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/dnsprovider"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/status"
	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/store"
)

// mockResolver implements resolver.Resolver for testing
type mockResolver struct {
	mu        sync.Mutex
	calls     []string
	QueryFunc func(ctx context.Context, server, name string) (string, error)
}

func (m *mockResolver) Query(ctx context.Context, server, name string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, server)
	m.mu.Unlock()
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, server, name)
	}
	return "", fmt.Errorf("QueryFunc not implemented")
}

func (m *mockResolver) callsTo(server string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == server {
			n++
		}
	}
	return n
}

// mockDNSProvider implements dnsprovider.DNSProvider for testing
type mockDNSProvider struct {
	EnsureZoneFunc   func(ctx context.Context, domain, comment string) (*dnsprovider.Zone, error)
	ApplyRecordsFunc func(ctx context.Context, zoneID string, records []dnsprovider.Record) (string, error)
}

func (m *mockDNSProvider) Name() string { return "mock" }

func (m *mockDNSProvider) EnsureZone(ctx context.Context, domain, comment string) (*dnsprovider.Zone, error) {
	if m.EnsureZoneFunc != nil {
		return m.EnsureZoneFunc(ctx, domain, comment)
	}
	return nil, fmt.Errorf("EnsureZoneFunc not implemented")
}

func (m *mockDNSProvider) ApplyRecords(ctx context.Context, zoneID string, records []dnsprovider.Record) (string, error) {
	if m.ApplyRecordsFunc != nil {
		return m.ApplyRecordsFunc(ctx, zoneID, records)
	}
	return "", fmt.Errorf("ApplyRecordsFunc not implemented")
}

// mockZoneWriter implements ZoneWriter for testing
type mockZoneWriter struct {
	PutZoneFunc func(ctx context.Context, result store.ProvisioningResult) error
}

func (m *mockZoneWriter) PutZone(ctx context.Context, result store.ProvisioningResult) error {
	if m.PutZoneFunc != nil {
		return m.PutZoneFunc(ctx, result)
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

// mockArchiver implements Archiver for testing
type mockArchiver struct {
	ArchiveFunc func(ctx context.Context, fileName, content string) (string, error)
}

func (m *mockArchiver) Archive(ctx context.Context, fileName, content string) (string, error) {
	if m.ArchiveFunc != nil {
		return m.ArchiveFunc(ctx, fileName, content)
	}
	return "", fmt.Errorf("ArchiveFunc not implemented")
}

// mockS3Client implements awsprovider.S3ClientAPI for testing
type mockS3Client struct {
	PutObjectFunc func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

func (m *mockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.PutObjectFunc != nil {
		return m.PutObjectFunc(ctx, params, optFns...)
	}
	return nil, fmt.Errorf("PutObjectFunc not implemented")
}

// collectUpdates attaches a buffered status channel to ctx. The returned
// function closes nothing; it drains whatever has been sent so far.
func collectUpdates(ctx context.Context) (context.Context, func() []status.Update) {
	ch := make(chan status.Update, 256)
	ctx = status.WithChannel(ctx, ch)
	return ctx, func() []status.Update {
		var updates []status.Update
		for {
			select {
			case u := <-ch:
				updates = append(updates, u)
			default:
				return updates
			}
		}
	}
}

// hasUpdate reports whether any update has level and a message containing substr
func hasUpdate(updates []status.Update, level status.Level, substr string) bool {
	for _, u := range updates {
		if u.Level == level && strings.Contains(u.Message, substr) {
			return true
		}
	}
	return false
}
