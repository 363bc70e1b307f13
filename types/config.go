package types

import "slices"

// Config is the deployment-wide configuration served by waifud at
// /admin/api/config. Keys follow the server's camelCase serialization.
type Config struct {
	BaseURL   string   `json:"baseURL"`
	Hosts     []string `json:"hosts"`
	BindHost  string   `json:"bindHost"`
	Port      int      `json:"port"`
	RpoolBase string   `json:"rpoolBase"`
	QemuPath  string   `json:"qemuPath"`
}

// HasHost reports whether host is one of the configured hypervisor hosts.
func (c *Config) HasHost(host string) bool {
	return c != nil && slices.Contains(c.Hosts, host)
}

// AuditEvent is one entry of the waifud audit log.
type AuditEvent struct {
	ID   int     `json:"id"`
	TS   int64   `json:"ts"` // unix seconds
	Kind string  `json:"kind"`
	Op   string  `json:"op"`
	Data any     `json:"data,omitempty"`
	UUID *string `json:"uuid,omitempty"`
	Name *string `json:"name,omitempty"`
}
