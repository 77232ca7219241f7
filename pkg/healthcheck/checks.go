package healthcheck

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/store"
)

// Check names, used as keys of store.HealthStatus.Checks
const (
	CheckEC2   = "ec2_status"
	CheckPanel = "panel_http"
	CheckDNS   = "dns_resolution"
)

// DefaultPanelPorts maps a control panel to the HTTPS port of its admin UI
var DefaultPanelPorts = map[string]int{
	"cpanel":      2087,
	"cyberpanel":  8090,
	"directadmin": 2222,
}

// panelStatuses are the HTTP codes that mean the panel is up
var panelStatuses = map[int]bool{
	http.StatusOK:           true,
	http.StatusFound:        true,
	http.StatusUnauthorized: true,
}

// checkEC2 requires both the instance and the system status to be ok
func (c *Checker) checkEC2(ctx context.Context, instanceID string) store.CheckResult {
	out, err := c.ec2.DescribeInstanceStatus(ctx, &ec2.DescribeInstanceStatusInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return store.CheckResult{OK: false, Details: err.Error()}
	}
	if len(out.InstanceStatuses) == 0 {
		return store.CheckResult{OK: false, Details: "Instance not found"}
	}

	s := out.InstanceStatuses[0]
	instance := summaryStatus(s.InstanceStatus)
	system := summaryStatus(s.SystemStatus)

	return store.CheckResult{
		OK:      instance == ec2types.SummaryStatusOk && system == ec2types.SummaryStatusOk,
		Details: fmt.Sprintf("instance=%s system=%s state=%s", instance, system, instanceState(s)),
	}
}

func summaryStatus(s *ec2types.InstanceStatusSummary) ec2types.SummaryStatus {
	if s == nil {
		return ec2types.SummaryStatus("unknown")
	}
	return s.Status
}

func instanceState(s ec2types.InstanceStatus) string {
	if s.InstanceState == nil {
		return "unknown"
	}
	return string(s.InstanceState.Name)
}

// checkPanel probes the control panel admin UI over HTTPS. Instances
// without a known panel pass.
func (c *Checker) checkPanel(ctx context.Context, ip, panel string) store.CheckResult {
	port, ok := c.panelPorts[panel]
	if !ok {
		return store.CheckResult{OK: true, Details: "No panel to check"}
	}

	url := "https://" + net.JoinHostPort(ip, strconv.Itoa(port))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return store.CheckResult{OK: false, Details: err.Error()}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return store.CheckResult{OK: false, Details: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	return store.CheckResult{
		OK:      panelStatuses[resp.StatusCode],
		Details: fmt.Sprintf("HTTP %d", resp.StatusCode),
	}
}

// checkDNS passes when the public resolver returns any answer for domain
func (c *Checker) checkDNS(ctx context.Context, domain string) store.CheckResult {
	answer, err := c.resolver.Query(ctx, c.opts.PublicResolver, domain)
	if err != nil {
		return store.CheckResult{OK: false, Details: "DNS query failed: " + err.Error()}
	}

	answer = strings.TrimSpace(answer)
	return store.CheckResult{OK: answer != "", Details: answer}
}

// newPanelClient accepts the self-signed certificates control panels ship
// with and reports redirects instead of following them.
func newPanelClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // panels use self-signed certs
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
