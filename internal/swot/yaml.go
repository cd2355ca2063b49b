package swot

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a YAML document with the same rules as Parse.
func ParseYAML(data []byte) (Document, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("swot: invalid yaml: %w", err)
	}

	for _, category := range Categories {
		if _, ok := raw[category].(map[string]any); !ok {
			return Document{}, fmt.Errorf("%w: %s", ErrMissingCategory, category)
		}
	}

	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("swot: failed to decode document: %w", err)
	}
	d.Normalize()

	return d, nil
}
