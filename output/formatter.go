// Package output provides formatters for displaying waifud resources
// in various formats (table, YAML, JSON).
package output

import (
	"fmt"

	"github.com/projecteru2/waifuadmin/types"
)

// Format represents an output format type.
type Format string

const (
	// FormatTable is a human-readable table format.
	FormatTable Format = "table"
	// FormatYAML is a YAML format.
	FormatYAML Format = "yaml"
	// FormatJSON is a JSON format for machine consumption.
	FormatJSON Format = "json"
)

// InstanceRow is an instance plus the address of its machine, when known.
type InstanceRow struct {
	types.Instance
	Addr string `json:"addr,omitempty"`
}

// Formatter formats waifud resources for output.
type Formatter interface {
	FormatInstance(inst *types.Instance) (string, error)
	FormatInstances(rows []InstanceRow) (string, error)
	FormatDistros(distros []types.Distro) (string, error)
	FormatAudit(events []types.AuditEvent) (string, error)
}

// Options contains options for formatting output.
type Options struct {
	// Format specifies the output format.
	Format Format
	// NoHeaders omits headers in table format.
	NoHeaders bool
	// Wide adds the less common columns to tables.
	Wide bool
}

// NewFormatter creates a new Formatter based on the specified format.
func NewFormatter(opts Options) (Formatter, error) {
	switch opts.Format {
	case FormatTable, "":
		return &TableFormatter{NoHeaders: opts.NoHeaders, Wide: opts.Wide}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: table, yaml, json)", opts.Format)
	}
}
