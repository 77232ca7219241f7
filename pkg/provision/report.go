package provision

import (
	"fmt"
	"strings"
	"time"

	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/dnsprovider"
)

const (
	separatorWidth = 60
	reportTimeFmt  = "2006-01-02 15:04:05"
	fileTimeFmt    = "20060102-150405"
)

// ReportState is everything the report and notification describe
type ReportState struct {
	Domain      string
	ServerIP    string
	NS1IP       string
	NS2IP       string
	ZoneID      string
	NameServers []string
	Records     []dnsprovider.Record
	SetupTime   time.Time
}

// Report renders the plaintext provisioning report
func Report(s ReportState) string {
	sep := strings.Repeat("=", separatorWidth)
	var b strings.Builder

	fmt.Fprintf(&b, "\n%s\nDNS AUTOMATION REPORT\n%s\n\n", sep, sep)
	fmt.Fprintf(&b, "Domain: %s\n", s.Domain)
	fmt.Fprintf(&b, "Setup Time: %s\n\n", s.SetupTime.Format(reportTimeFmt))

	b.WriteString("INFRASTRUCTURE:\n")
	fmt.Fprintf(&b, "  Server IP: %s\n", s.ServerIP)
	fmt.Fprintf(&b, "  Route53 Zone ID: %s\n\n", s.ZoneID)

	b.WriteString("CUSTOM NAMESERVERS:\n")
	fmt.Fprintf(&b, "  Primary: ns1.%s (%s)\n", s.Domain, s.NS1IP)
	if s.NS2IP != "" {
		fmt.Fprintf(&b, "  Secondary: ns2.%s (%s)\n", s.Domain, s.NS2IP)
	}

	b.WriteString("\nAWS NAMESERVERS:\n")
	if len(s.NameServers) == 0 {
		b.WriteString("  (not available)\n")
	}
	for _, ns := range s.NameServers {
		fmt.Fprintf(&b, "  - %s\n", ns)
	}

	b.WriteString("\nDNS RECORDS CREATED:\n")
	for _, r := range s.Records {
		fmt.Fprintf(&b, "  ✅ %s record: %s → %s\n", r.Type, r.Name, strings.Join(r.Values, ", "))
	}

	b.WriteString("\nTESTING COMMANDS:\n")
	fmt.Fprintf(&b, "  dig %s\n", s.Domain)
	fmt.Fprintf(&b, "  dig NS %s\n", s.Domain)
	fmt.Fprintf(&b, "  dig @%s %s\n", s.NS1IP, s.Domain)
	fmt.Fprintf(&b, "  nslookup %s %s\n", s.Domain, s.NS1IP)

	fmt.Fprintf(&b, "\n%s\n", sep)

	return b.String()
}

// ReportFileName is dns-report-<domain>-<YYYYMMDD-HHMMSS>.txt
func ReportFileName(domain string, t time.Time) string {
	return fmt.Sprintf("dns-report-%s-%s.txt", domain, t.Format(fileTimeFmt))
}

// NotificationSubject is the SNS subject for a finished provisioning run
func NotificationSubject(domain string) string {
	return "✅ DNS Ready: " + domain
}

// NotificationMessage renders the plaintext SNS message with registrar next steps
func NotificationMessage(s ReportState) string {
	sep := strings.Repeat("=", separatorWidth)
	var b strings.Builder

	fmt.Fprintf(&b, "\nDNS Configuration Complete for %s\n%s\n\n", s.Domain, sep)
	fmt.Fprintf(&b, "Domain: %s\n", s.Domain)
	fmt.Fprintf(&b, "Server IP: %s\n\n", s.ServerIP)

	b.WriteString("CUSTOM NAMESERVERS:\n")
	fmt.Fprintf(&b, "  ns1.%s → %s\n", s.Domain, s.NS1IP)
	if s.NS2IP != "" {
		fmt.Fprintf(&b, "  ns2.%s → %s\n", s.Domain, s.NS2IP)
	}

	first := s.NameServers
	if len(first) > 2 {
		first = first[:2]
	}
	fmt.Fprintf(&b, "\nROUTE53 NAMESERVERS (temporary):\n  %s\n\n", strings.Join(first, ", "))

	fmt.Fprintf(&b, "%s\nNEXT STEPS:\n%s\n\n", sep, sep)
	b.WriteString("1. Update nameservers at your domain registrar:\n")
	fmt.Fprintf(&b, "   - Set ns1.%s (%s)\n", s.Domain, s.NS1IP)
	if s.NS2IP != "" {
		fmt.Fprintf(&b, "   - Set ns2.%s (%s)\n", s.Domain, s.NS2IP)
	}
	b.WriteString("\n2. Wait 24-48 hours for full propagation\n\n")
	b.WriteString("3. Verify with:\n")
	fmt.Fprintf(&b, "   dig NS %s\n", s.Domain)
	fmt.Fprintf(&b, "   dig @%s %s\n\n", s.NS1IP, s.Domain)

	fmt.Fprintf(&b, "%s\nSetup completed: %s UTC\n%s\n", sep, s.SetupTime.UTC().Format(reportTimeFmt), sep)

	return b.String()
}
