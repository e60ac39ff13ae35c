// Package featured loads the curated shelves shown on the landing page from
// a YAML file maintained by the editorial side.
package featured

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and parsing of featured.yaml
type Loader struct {
	filePath string
}

// NewLoader creates a new featured shelves loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the featured shelves file
func (l *Loader) Load() (*File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read featured file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse featured yaml: %w", err)
	}

	return &file, nil
}
