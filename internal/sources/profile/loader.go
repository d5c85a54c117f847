package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader reads a device profile from disk.
type Loader struct {
	filePath string
}

// NewLoader creates a new profile loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string {
	return l.filePath
}

// Load reads and parses the profile file. Unknown keys are rejected so a
// typo in a capability name does not silently produce a device without it.
func (l *Loader) Load() (*File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	return Parse(data)
}

// Parse decodes profile YAML.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("profile file is empty")
		}
		return nil, fmt.Errorf("failed to parse profile yaml: %w", err)
	}
	return &f, nil
}
