package assess

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestBands(t *testing.T) {
	cases := []struct {
		files int
		want  Band
	}{
		{0, BandTiny},
		{49, BandTiny},
		{50, BandSmall},
		{249, BandSmall},
		{250, BandMedium},
		{999, BandMedium},
		{1000, BandLarge},
		{50000, BandLarge},
	}
	for _, c := range cases {
		if got := bandFor(c.files); got != c.want {
			t.Errorf("bandFor(%d) = %s, want %s", c.files, got, c.want)
		}
	}
}

func TestRun(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 10; i++ {
		name := filepath.Join(root, fmt.Sprintf("f%02d.py", i))
		if err := os.WriteFile(name, []byte("x = 1\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	// Files past the assess depth are not counted
	deep := filepath.Join(root, "a", "b", "c", "d")
	if err := os.MkdirAll(deep, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(deep, "deep.py"), []byte("x = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// Non-candidate extensions are not counted
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hi\n"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := Run(context.Background(), Options{
		Root:       root,
		Extensions: []string{".py"},
	}, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.Files != 10 {
		t.Errorf("files = %d, want 10", res.Files)
	}
	if res.Band != BandTiny {
		t.Errorf("band = %s, want tiny", res.Band)
	}
	if res.Guidance == "" {
		t.Error("empty guidance")
	}
	if res.Truncated {
		t.Error("unexpected truncation")
	}
}

func TestRunMissingRoot(t *testing.T) {
	if _, err := Run(context.Background(), Options{
		Root: filepath.Join(t.TempDir(), "nope"),
	}, nil); err == nil {
		t.Error("missing root accepted")
	}
}
