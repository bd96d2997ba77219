// Package manifest reads the optional per-project scan manifest at
// .pcx/scan.toml. The manifest declares project-specific scan defaults;
// explicit request fields always win over it.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// ManifestFile is the manifest filename under the .pcx directory
const ManifestFile = "scan.toml"

// Manifest declares per-project scan defaults
type Manifest struct {
	// Extensions overrides the default extension allow-list
	Extensions []string `toml:"extensions,omitempty"`

	// Exclude lists extra ignore globs, applied as if declared in an
	// ignore file at the project root
	Exclude []string `toml:"exclude,omitempty"`

	// MaxDepth overrides the default walk depth
	MaxDepth int `toml:"max_depth,omitempty"`

	// MaxFiles overrides the default file-count limit
	MaxFiles int `toml:"max_files,omitempty"`

	// MaxFileSizeBytes overrides the default per-file size ceiling
	MaxFileSizeBytes int64 `toml:"max_file_size_bytes,omitempty"`
}

// Path returns the manifest path for a project root
func Path(root string) string {
	return filepath.Join(root, ".pcx", ManifestFile)
}

// Load reads the manifest for a project root. A missing manifest is not an
// error; it returns (nil, nil).
func Load(root string) (*Manifest, error) {
	data, err := os.ReadFile(Path(root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read scan manifest: %w", err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse scan manifest: %w", err)
	}
	return &m, nil
}

// Save writes the manifest for a project root
func (m *Manifest) Save(root string) error {
	dir := filepath.Join(root, ".pcx")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal scan manifest: %w", err)
	}
	return os.WriteFile(Path(root), data, 0644)
}
