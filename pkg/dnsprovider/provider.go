package dnsprovider

import (
	"context"
	"errors"
)

// ErrZoneNotFound is returned when a zone reported as existing cannot be found by name
var ErrZoneNotFound = errors.New("hosted zone not found")

// RecordType is the DNS resource record type
type RecordType string

const (
	RecordTypeA     RecordType = "A"
	RecordTypeMX    RecordType = "MX"
	RecordTypeCNAME RecordType = "CNAME"
	RecordTypeTXT   RecordType = "TXT"
)

// Record is one resource record set, applied with upsert semantics
type Record struct {
	// Name is the fully qualified owner name without a trailing dot
	Name   string
	Type   RecordType
	TTL    int64
	Values []string
}

// Outcome tags how EnsureZone obtained the zone
type Outcome int

const (
	// ZoneCreated means the zone was created by this call
	ZoneCreated Outcome = iota + 1

	// ZoneAlreadyExisted means creation was rejected as a duplicate and the
	// existing zone was looked up by name
	ZoneAlreadyExisted
)

func (o Outcome) String() string {
	switch o {
	case ZoneCreated:
		return "created"
	case ZoneAlreadyExisted:
		return "already-existed"
	default:
		return "unknown"
	}
}

// Zone is a hosted zone for one customer domain
type Zone struct {
	Domain string

	// ID is the provider zone id with any path prefix removed
	ID string

	// NameServers is the delegation set. It can be empty for an existing
	// zone when the delegation set could not be re-fetched.
	NameServers []string

	Outcome Outcome
}

// DNSProvider defines the interface that all DNS providers must implement.
type DNSProvider interface {
	// Name returns the DNS provider name (route53, ...)
	Name() string

	// EnsureZone creates the hosted zone for domain or returns the existing one.
	// comment is stored on newly created zones.
	EnsureZone(ctx context.Context, domain, comment string) (*Zone, error)

	// ApplyRecords upserts records into the zone as one change batch and
	// returns the provider change id. The change is not waited on.
	ApplyRecords(ctx context.Context, zoneID string, records []Record) (string, error)
}
