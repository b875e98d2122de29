// Package sources loads document-source manifests and feeds them through
// the ingestion pipeline.
package sources

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source is one manifest entry. Exactly one of URL and Path must be set.
type Source struct {
	ID           string            `yaml:"id"`
	URL          string            `yaml:"url,omitempty"`
	Path         string            `yaml:"path,omitempty"`
	Type         string            `yaml:"type,omitempty"` // pdf, text or web; inferred when empty
	Title        string            `yaml:"title,omitempty"`
	Jurisdiction string            `yaml:"jurisdiction,omitempty"`
	Metadata     map[string]string `yaml:"metadata,omitempty"`
}

// Manifest is a YAML list of document sources.
type Manifest struct {
	Sources []Source `yaml:"sources"`
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sources: read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("sources: parse manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	seen := make(map[string]bool, len(m.Sources))
	for i, src := range m.Sources {
		if src.ID == "" {
			return fmt.Errorf("sources: entry %d has no id", i)
		}
		if seen[src.ID] {
			return fmt.Errorf("sources: duplicate id %q", src.ID)
		}
		seen[src.ID] = true

		if (src.URL == "") == (src.Path == "") {
			return fmt.Errorf("sources: entry %q needs exactly one of url or path", src.ID)
		}
	}
	return nil
}
