package cwl

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a CWL document from disk. YAML is a superset of JSON, so
// both serializations are accepted.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return Parse(data)
}

// Parse decodes a CWL document from raw bytes.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}
