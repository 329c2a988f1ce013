package artifacts

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Manifest is the document handed to the external packaging generator.
type Manifest struct {
	RunID     string            `json:"run_id"`
	CreatedAt time.Time         `json:"created_at"`
	Order     []string          `json:"order"`
	Targets   map[string]string `json:"targets"`
	Checksums map[string]string `json:"sha256"`
}

// NewManifest describes the mapping under a fresh run id.
func NewManifest(mapping *Mapping) Manifest {
	manifest := Manifest{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Order:     mapping.Names(),
		Targets:   mapping.Paths(),
		Checksums: make(map[string]string, mapping.Len()),
	}
	for _, artifact := range mapping.Artifacts() {
		if artifact.Checksum != "" {
			manifest.Checksums[artifact.Configuration] = artifact.Checksum
		}
	}
	return manifest
}

// WriteManifest stores the manifest as indented JSON at path.
func WriteManifest(path string, manifest Manifest) error {
	if path == "" {
		return errors.New("manifest path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	payload, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

// ReadManifest loads a manifest previously written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, err
	}
	return manifest, nil
}
