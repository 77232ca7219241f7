package welcome

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
)

// NotAvailable replaces any value missing from the Terraform outputs
const NotAvailable = "N/A"

// Terraform output names read by the welcome e-mail
const (
	outputServerIP    = "server_ip"
	outputWHMURL      = "whm_url"
	outputCPanelURL   = "cpanel_url"
	outputWebmailURL  = "webmail_url"
	outputNameservers = "nameservers"
)

// Outputs are the provisioning values shown to the customer
type Outputs struct {
	ServerIP    string
	WHMURL      string
	CPanelURL   string
	WebmailURL  string
	NameServers []string
}

// ParseOutputs extracts Outputs from output values keyed by name. Missing or
// mistyped values become NotAvailable; missing nameservers become two of them.
func ParseOutputs(values map[string]json.RawMessage) Outputs {
	o := Outputs{
		ServerIP:    stringOutput(values, outputServerIP),
		WHMURL:      stringOutput(values, outputWHMURL),
		CPanelURL:   stringOutput(values, outputCPanelURL),
		WebmailURL:  stringOutput(values, outputWebmailURL),
		NameServers: []string{NotAvailable, NotAvailable},
	}

	if raw, ok := values[outputNameservers]; ok {
		var ns []string
		if err := json.Unmarshal(raw, &ns); err == nil {
			o.NameServers = ns
		}
	}

	return o
}

// LoadOutputsFile reads a `terraform output -json` file
func LoadOutputsFile(appFs afero.Fs, path string) (Outputs, error) {
	data, err := afero.ReadFile(appFs, path)
	if err != nil {
		return Outputs{}, fmt.Errorf("failed to read outputs file %s: %w", path, err)
	}

	var file map[string]struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return Outputs{}, fmt.Errorf("failed to parse outputs file %s: %w", path, err)
	}

	values := make(map[string]json.RawMessage, len(file))
	for name, out := range file {
		values[name] = out.Value
	}

	return ParseOutputs(values), nil
}

// nameserver returns the i-th nameserver or NotAvailable
func (o Outputs) nameserver(i int) string {
	if i < len(o.NameServers) {
		return o.NameServers[i]
	}
	return NotAvailable
}

func stringOutput(values map[string]json.RawMessage, name string) string {
	raw, ok := values[name]
	if !ok {
		return NotAvailable
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return NotAvailable
	}
	return s
}
