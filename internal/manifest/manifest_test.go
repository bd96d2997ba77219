package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissing(t *testing.T) {
	m, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if m != nil {
		t.Errorf("missing manifest returned %+v, want nil", m)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()

	m := &Manifest{
		Extensions: []string{".py", ".rs"},
		Exclude:    []string{"vendor/", "*.gen.py"},
		MaxDepth:   4,
	}
	if err := m.Save(root); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if loaded == nil {
		t.Fatal("saved manifest not found")
	}
	if len(loaded.Extensions) != 2 || loaded.Extensions[0] != ".py" {
		t.Errorf("Extensions = %v", loaded.Extensions)
	}
	if len(loaded.Exclude) != 2 || loaded.Exclude[1] != "*.gen.py" {
		t.Errorf("Exclude = %v", loaded.Exclude)
	}
	if loaded.MaxDepth != 4 {
		t.Errorf("MaxDepth = %d, want 4", loaded.MaxDepth)
	}
	if loaded.MaxFiles != 0 {
		t.Errorf("MaxFiles = %d, want 0 (unset)", loaded.MaxFiles)
	}
}

func TestLoadHandWritten(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".pcx"), 0755); err != nil {
		t.Fatal(err)
	}
	content := `extensions = [".ts", ".tsx"]
max_files = 500
`
	if err := os.WriteFile(Path(root), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Extensions) != 2 || m.Extensions[1] != ".tsx" {
		t.Errorf("Extensions = %v", m.Extensions)
	}
	if m.MaxFiles != 500 {
		t.Errorf("MaxFiles = %d, want 500", m.MaxFiles)
	}
}

func TestLoadMalformed(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".pcx"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(Path(root), []byte("extensions = [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(root); err == nil {
		t.Fatal("expected error for malformed manifest")
	}
}
