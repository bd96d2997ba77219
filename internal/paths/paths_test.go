package paths

import (
	"path/filepath"
	"testing"
)

func TestJoin(t *testing.T) {
	got := Join("/root", "src/a.py")
	want := filepath.Join("/root", "src", "a.py")
	if got != want {
		t.Errorf("Join = %q, want %q", got, want)
	}
}

func TestJoinSingleSegment(t *testing.T) {
	got := Join("/root", "a.py")
	want := filepath.Join("/root", "a.py")
	if got != want {
		t.Errorf("Join = %q, want %q", got, want)
	}
}

func TestNormalizeKeepsForwardSlashes(t *testing.T) {
	if got := Normalize("src/a.py"); got != "src/a.py" {
		t.Errorf("Normalize = %q", got)
	}
}
