package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scan.MaxDepth != 6 {
		t.Errorf("MaxDepth = %d, want 6", cfg.Scan.MaxDepth)
	}
	if cfg.Search.ContextLines != 2 {
		t.Errorf("ContextLines = %d, want 2", cfg.Search.ContextLines)
	}
	if len(cfg.Scan.Extensions) != len(DefaultExtensions) {
		t.Errorf("Extensions = %v, want defaults", cfg.Scan.Extensions)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()

	cfg := DefaultConfig()
	cfg.Scan.MaxDepth = 3
	cfg.Scan.Extensions = []string{".py"}
	cfg.Search.TopN = 25
	if err := cfg.Save(root); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Scan.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", loaded.Scan.MaxDepth)
	}
	if len(loaded.Scan.Extensions) != 1 || loaded.Scan.Extensions[0] != ".py" {
		t.Errorf("Extensions = %v, want [.py]", loaded.Scan.Extensions)
	}
	if loaded.Search.TopN != 25 {
		t.Errorf("TopN = %d, want 25", loaded.Search.TopN)
	}
}

func TestPartialFileKeepsOtherDefaults(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".pcx")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	partial := `{"version": 1, "scan": {"maxDepth": 2}}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(partial), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scan.MaxDepth != 2 {
		t.Errorf("MaxDepth = %d, want 2", cfg.Scan.MaxDepth)
	}
	if cfg.Scan.MaxFiles != 1000 {
		t.Errorf("MaxFiles = %d, want default 1000", cfg.Scan.MaxFiles)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".pcx")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(root); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"bad version", func(c *Config) { c.Version = 2 }, true},
		{"negative depth", func(c *Config) { c.Scan.MaxDepth = -1 }, true},
		{"compactness too high", func(c *Config) { c.Scan.Compactness = 4 }, true},
		{"compactness zero", func(c *Config) { c.Scan.Compactness = 0 }, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultConfig()
			c.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != c.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, c.wantErr)
			}
		})
	}
}
