package tofu

// DefaultVersion is the OpenTofu release downloaded when no binary is configured
const DefaultVersion = "1.10.6"
