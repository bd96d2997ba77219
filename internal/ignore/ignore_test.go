package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func scaffold(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestBuiltinExclusions(t *testing.T) {
	root := scaffold(t, map[string]string{"a.py": ""})
	rs := Build(root, 6, nil, nil)

	for _, dir := range []string{".git", ".pcx", ".hg", ".svn"} {
		if !rs.Excluded(dir, true) {
			t.Errorf("%s not excluded by default", dir)
		}
	}
	if rs.Excluded("a.py", false) {
		t.Error("plain file excluded by defaults")
	}
}

func TestRootIgnoreFile(t *testing.T) {
	root := scaffold(t, map[string]string{
		".gitignore": "build/\n*.log\n# a comment\n\n",
		"a.py":       "",
	})
	rs := Build(root, 6, nil, nil)

	cases := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{"build", true, true},
		{"build/c.js", false, true}, // covered by the directory pattern
		{"sub/build", true, true},   // unanchored patterns match anywhere
		{"debug.log", false, true},
		{"sub/deep/debug.log", false, true},
		{"build.py", false, false},
		{"a.py", false, false},
	}
	for _, c := range cases {
		if got := rs.Excluded(c.path, c.isDir); got != c.want {
			t.Errorf("Excluded(%q, %v) = %v, want %v", c.path, c.isDir, got, c.want)
		}
	}
}

func TestDirOnlyPatternSkipsFiles(t *testing.T) {
	root := scaffold(t, map[string]string{".gitignore": "build/\n"})
	rs := Build(root, 6, nil, nil)

	// A plain file named like the directory pattern is not excluded
	if rs.Excluded("build", false) {
		t.Error("directory-only pattern matched a plain file")
	}
	if !rs.Excluded("build", true) {
		t.Error("directory-only pattern missed the directory")
	}
}

func TestNegation(t *testing.T) {
	root := scaffold(t, map[string]string{
		".gitignore": "*.log\n!keep.log\n",
	})
	rs := Build(root, 6, nil, nil)

	if !rs.Excluded("debug.log", false) {
		t.Error("*.log not excluded")
	}
	if rs.Excluded("keep.log", false) {
		t.Error("negated file still excluded")
	}
}

func TestDeeperScopeOverridesAncestor(t *testing.T) {
	root := scaffold(t, map[string]string{
		".gitignore":     "*.gen.py\n",
		"sub/.gitignore": "!special.gen.py\n",
		"sub/x.py":       "",
	})
	rs := Build(root, 6, nil, nil)

	if !rs.Excluded("a.gen.py", false) {
		t.Error("root rule inactive")
	}
	if !rs.Excluded("sub/other.gen.py", false) {
		t.Error("root rule does not reach the subtree")
	}
	// The deeper negation wins for paths beneath its directory
	if rs.Excluded("sub/special.gen.py", false) {
		t.Error("deeper negation did not override ancestor rule")
	}
	if rs.Excluded("special.gen.py", false) != true {
		t.Error("deeper negation leaked outside its scope")
	}
}

func TestAnchoredPattern(t *testing.T) {
	root := scaffold(t, map[string]string{
		".gitignore": "/top.txt\ndocs/internal\n",
	})
	rs := Build(root, 6, nil, nil)

	if !rs.Excluded("top.txt", false) {
		t.Error("anchored pattern missed root file")
	}
	if rs.Excluded("sub/top.txt", false) {
		t.Error("anchored pattern matched below root")
	}
	// A pattern containing a slash is anchored to the defining directory
	if !rs.Excluded("docs/internal", false) {
		t.Error("slash pattern missed its target")
	}
	if rs.Excluded("other/docs/internal", false) {
		t.Error("slash pattern matched unanchored")
	}
}

func TestExtraRootPatterns(t *testing.T) {
	root := scaffold(t, map[string]string{"a.py": ""})
	rs := Build(root, 6, []string{"vendor/"}, nil)

	if !rs.Excluded("vendor", true) {
		t.Error("extra pattern inactive")
	}
}

func TestMalformedPatternsAreDropped(t *testing.T) {
	root := scaffold(t, map[string]string{
		".gitignore": "[\nvalid.txt\n",
	})
	rs := Build(root, 6, nil, nil)

	// The invalid glob contributes nothing; the valid line still applies
	if !rs.Excluded("valid.txt", false) {
		t.Error("valid pattern lost alongside malformed one")
	}
}

func TestNilRuleSet(t *testing.T) {
	var rs *RuleSet
	if rs.Excluded("anything", false) {
		t.Error("nil rule set excluded a path")
	}
}
