// Package dashboard creates the per-customer CloudWatch dashboard.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	awsprovider "github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/provider/aws"
)

const (
	namePrefix = "neo-vps-"

	// agentNamespace holds the disk and memory metrics pushed by the server agent
	agentNamespace = "NeoVPS"

	period = 300
)

// Body is the CloudWatch dashboard document
type Body struct {
	Widgets []Widget `json:"widgets"`
}

// Widget is one dashboard widget
type Widget struct {
	Type       string           `json:"type"`
	Properties WidgetProperties `json:"properties"`
}

// WidgetProperties are the properties of a metric widget
type WidgetProperties struct {
	Metrics [][]any `json:"metrics"`
	View    string  `json:"view"`
	Region  string  `json:"region"`
	Title   string  `json:"title"`
	Period  int     `json:"period"`
	YAxis   *YAxis  `json:"yAxis,omitempty"`
}

// YAxis bounds the left axis of a widget
type YAxis struct {
	Left AxisRange `json:"left"`
}

// AxisRange is a min/max pair
type AxisRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Name is neo-vps-<domain> with dots replaced by dashes
func Name(domain string) string {
	return namePrefix + strings.ReplaceAll(domain, ".", "-")
}

// ConsoleURL links to the dashboard in the CloudWatch console
func ConsoleURL(region, name string) string {
	return fmt.Sprintf("https://console.aws.amazon.com/cloudwatch/home?region=%s#dashboards:name=%s", region, name)
}

// NewBody returns the CPU widget for instanceID and the agent disk and
// memory widget
func NewBody(region, instanceID string) Body {
	return Body{Widgets: []Widget{
		{
			Type: "metric",
			Properties: WidgetProperties{
				Metrics: [][]any{
					{"AWS/EC2", "CPUUtilization", "InstanceId", instanceID, map[string]any{"stat": "Average", "label": "CPU"}},
				},
				View:   "timeSeries",
				Region: region,
				Title:  "CPU Utilization",
				Period: period,
				YAxis:  &YAxis{Left: AxisRange{Min: 0, Max: 100}},
			},
		},
		{
			Type: "metric",
			Properties: WidgetProperties{
				Metrics: [][]any{
					{agentNamespace, "DISK_USED", "InstanceId", instanceID, map[string]any{"stat": "Average"}},
					{".", "MEM_USED", ".", ".", map[string]any{"stat": "Average"}},
				},
				View:   "timeSeries",
				Region: region,
				Title:  "Disk & Memory Usage",
				Period: period,
			},
		},
	}}
}

// Creator writes dashboards
type Creator struct {
	client awsprovider.CloudWatchClientAPI
	region string
}

// NewCreator returns a Creator for dashboards showing metrics in region
func NewCreator(client awsprovider.CloudWatchClientAPI, region string) *Creator {
	return &Creator{client: client, region: region}
}

// Create puts the dashboard for domain, replacing an existing one, and
// returns its name and console URL
func (c *Creator) Create(ctx context.Context, domain, instanceID string) (string, string, error) {
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "dashboard.Create")
	defer span.End()

	name := Name(domain)
	span.SetAttributes(
		attribute.String("cloudwatch.dashboard", name),
		attribute.String("ec2.instance_id", instanceID),
	)

	body, err := json.Marshal(NewBody(c.region, instanceID))
	if err != nil {
		span.RecordError(err)
		return "", "", fmt.Errorf("failed to encode dashboard %s: %w", name, err)
	}

	out, err := c.client.PutDashboard(ctx, &cloudwatch.PutDashboardInput{
		DashboardName: aws.String(name),
		DashboardBody: aws.String(string(body)),
	})
	if err != nil {
		span.RecordError(err)
		return "", "", fmt.Errorf("failed to create dashboard %s: %w", name, err)
	}
	if len(out.DashboardValidationMessages) > 0 {
		span.SetAttributes(attribute.Int("cloudwatch.validation_messages", len(out.DashboardValidationMessages)))
	}

	return name, ConsoleURL(c.region, name), nil
}
