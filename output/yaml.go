package output

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/projecteru2/waifuadmin/types"
)

// YAMLFormatter formats resources as YAML. Keys are the JSON wire keys, in
// wire order: values go through encoding/json and are re-read as a YAML node.
type YAMLFormatter struct{}

func (f *YAMLFormatter) FormatInstance(inst *types.Instance) (string, error) {
	return marshalYAML(inst)
}

// FormatInstances outputs a YAML stream (documents separated by ---).
func (f *YAMLFormatter) FormatInstances(rows []InstanceRow) (string, error) {
	return yamlStream(rows)
}

func (f *YAMLFormatter) FormatDistros(distros []types.Distro) (string, error) {
	return yamlStream(distros)
}

func (f *YAMLFormatter) FormatAudit(events []types.AuditEvent) (string, error) {
	return yamlStream(events)
}

func yamlStream[T any](items []T) (string, error) {
	var buf bytes.Buffer
	for i := range items {
		doc, err := marshalYAML(&items[i])
		if err != nil {
			return "", err
		}
		if i > 0 {
			buf.WriteString("---\n")
		}
		buf.WriteString(doc)
	}
	return buf.String(), nil
}

func marshalYAML(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal to YAML: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return "", fmt.Errorf("failed to marshal to YAML: %w", err)
	}
	clearStyle(&node)
	out, err := yaml.Marshal(&node)
	if err != nil {
		return "", fmt.Errorf("failed to marshal to YAML: %w", err)
	}
	return string(out), nil
}

// clearStyle drops the flow/quoted styles inherited from the JSON source so
// the output reads as block YAML.
func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}
