package session

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Metadata holds the subject information recorded alongside a capture
// session. Only the fields the report thresholds need are parsed; the rest of
// the document is ignored.
type Metadata struct {
	SubjectID string  `yaml:"subjectID"`
	HeightM   float64 `yaml:"height_m"`
	MassKg    float64 `yaml:"mass_kg"`
	Gender    string  `yaml:"gender_mf"`
}

// LoadMetadata reads sessionMetadata.yaml from a session directory.
func LoadMetadata(sessionDir string) (*Metadata, error) {
	path := filepath.Join(sessionDir, "sessionMetadata.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session metadata: %w", err)
	}

	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse session metadata: %w", err)
	}
	if meta.HeightM <= 0 {
		return nil, fmt.Errorf("session metadata missing subject height")
	}
	return &meta, nil
}
