package provision

import (
	"fmt"

	"github.com/Nexus-smart-solutions/Nexus-NEO-Hosting-Service/pkg/dnsprovider"
)

// RecordTTL is the TTL in seconds of every provisioned record
const RecordTTL = 300

// mailPriority is the MX preference of mail.<domain>
const mailPriority = 10

// aliasHosts point at the bare domain through CNAME records
var aliasHosts = []string{"ftp", "webmail", "cpanel", "whm"}

// BuildRecords returns the hosting record batch for domain in a fixed order.
// The ns2 address record is included only when ns2IP is set.
func BuildRecords(domain, serverIP, ns1IP, ns2IP string) []dnsprovider.Record {
	records := []dnsprovider.Record{
		addressRecord(domain, serverIP),
		addressRecord("www."+domain, serverIP),
		addressRecord("ns1."+domain, ns1IP),
	}
	if ns2IP != "" {
		records = append(records, addressRecord("ns2."+domain, ns2IP))
	}
	records = append(records,
		addressRecord("mail."+domain, serverIP),
		dnsprovider.Record{
			Name:   domain,
			Type:   dnsprovider.RecordTypeMX,
			TTL:    RecordTTL,
			Values: []string{fmt.Sprintf("%d mail.%s", mailPriority, domain)},
		},
	)

	for _, host := range aliasHosts {
		records = append(records, dnsprovider.Record{
			Name:   host + "." + domain,
			Type:   dnsprovider.RecordTypeCNAME,
			TTL:    RecordTTL,
			Values: []string{domain},
		})
	}

	return append(records,
		dnsprovider.Record{
			Name:   domain,
			Type:   dnsprovider.RecordTypeTXT,
			TTL:    RecordTTL,
			Values: []string{quoteTXT(SPFPolicy(serverIP))},
		},
		dnsprovider.Record{
			Name:   "_dmarc." + domain,
			Type:   dnsprovider.RecordTypeTXT,
			TTL:    RecordTTL,
			Values: []string{quoteTXT(DMARCPolicy(domain))},
		},
	)
}

// SPFPolicy authorizes the server address and the domain's A and MX hosts to send mail
func SPFPolicy(serverIP string) string {
	return fmt.Sprintf("v=spf1 a mx ip4:%s ~all", serverIP)
}

// DMARCPolicy is a monitoring-only policy reporting to admin@domain
func DMARCPolicy(domain string) string {
	return fmt.Sprintf("v=DMARC1; p=none; rua=mailto:admin@%s", domain)
}

func addressRecord(name, ip string) dnsprovider.Record {
	return dnsprovider.Record{
		Name:   name,
		Type:   dnsprovider.RecordTypeA,
		TTL:    RecordTTL,
		Values: []string{ip},
	}
}

// quoteTXT wraps a TXT value in the double quotes Route53 expects
func quoteTXT(s string) string {
	return `"` + s + `"`
}
