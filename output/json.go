package output

import (
	"encoding/json"
	"fmt"

	"github.com/projecteru2/waifuadmin/types"
)

// JSONFormatter formats resources as indented JSON using the waifud wire keys.
type JSONFormatter struct{}

func (f *JSONFormatter) FormatInstance(inst *types.Instance) (string, error) {
	return marshalJSON(inst)
}

// FormatInstances outputs a JSON array; an empty list is "[]".
func (f *JSONFormatter) FormatInstances(rows []InstanceRow) (string, error) {
	if rows == nil {
		rows = []InstanceRow{}
	}
	return marshalJSON(rows)
}

func (f *JSONFormatter) FormatDistros(distros []types.Distro) (string, error) {
	if distros == nil {
		distros = []types.Distro{}
	}
	return marshalJSON(distros)
}

func (f *JSONFormatter) FormatAudit(events []types.AuditEvent) (string, error) {
	if events == nil {
		events = []types.AuditEvent{}
	}
	return marshalJSON(events)
}

func marshalJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal to JSON: %w", err)
	}
	return string(data) + "\n", nil
}
