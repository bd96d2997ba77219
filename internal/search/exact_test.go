package search

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) Target {
	t.Helper()
	abs := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return Target{RelPath: name, AbsPath: abs}
}

func TestExactLiteral(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "a.py", strings.Join([]string{
		"import os",           // 1
		"",                    // 2
		"def handle(req):",    // 3
		"    return req.body", // 4
		"",                    // 5
		"def ignore():",       // 6
		"    pass",            // 7
	}, "\n"))

	res, err := Exact(context.Background(), []Target{target}, ExactOptions{
		Query:        "def handle",
		ContextLines: 2,
	}, nil)
	if err != nil {
		t.Fatalf("exact: %v", err)
	}

	if len(res.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(res.Blocks))
	}
	b := res.Blocks[0]
	if b.Path != "a.py" || b.StartLine != 1 {
		t.Errorf("block = %+v", b)
	}
	if len(b.Lines) != 5 {
		t.Errorf("got %d context lines, want 5", len(b.Lines))
	}
	if len(b.Matched) != 1 || b.Matched[0] != 3 {
		t.Errorf("matched = %v, want [3]", b.Matched)
	}
	if res.Truncated {
		t.Error("unexpected truncation")
	}
}

func TestExactLiteralQuotesMetacharacters(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "a.js", "const x = arr[0];\nconst y = arrz0w;\n")

	res, err := Exact(context.Background(), []Target{target}, ExactOptions{
		Query: "arr[0]",
	}, nil)
	if err != nil {
		t.Fatalf("exact: %v", err)
	}
	if len(res.Blocks) != 1 || res.Blocks[0].Matched[0] != 1 {
		t.Fatalf("literal bracket query matched wrong lines: %+v", res.Blocks)
	}
}

func TestExactRegex(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "a.rs", "fn alpha() {}\nfn beta() {}\nstruct Gamma;\n")

	res, err := Exact(context.Background(), []Target{target}, ExactOptions{
		Query: `^fn \w+`,
		Regex: true,
	}, nil)
	if err != nil {
		t.Fatalf("exact: %v", err)
	}
	// Adjacent matches share one block
	if len(res.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(res.Blocks))
	}
	if got := res.Blocks[0].Matched; len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("matched = %v, want [1 2]", got)
	}

	if _, err := Exact(context.Background(), []Target{target}, ExactOptions{
		Query: `([`,
		Regex: true,
	}, nil); err == nil {
		t.Error("invalid regex accepted")
	}
}

func TestBuildBlocksMerging(t *testing.T) {
	lines := make([]string, 40)
	for i := range lines {
		lines[i] = "line"
	}

	t.Run("within window merges", func(t *testing.T) {
		// context 2 gives window 5; matches 5 lines apart still merge
		blocks := buildBlocks("f", lines, []int{10, 15}, 2)
		if len(blocks) != 1 {
			t.Fatalf("got %d blocks, want 1", len(blocks))
		}
		if blocks[0].StartLine != 8 || len(blocks[0].Lines) != 10 {
			t.Errorf("block = start %d, %d lines", blocks[0].StartLine, len(blocks[0].Lines))
		}
	})

	t.Run("beyond window splits", func(t *testing.T) {
		blocks := buildBlocks("f", lines, []int{10, 16}, 2)
		if len(blocks) != 2 {
			t.Fatalf("got %d blocks, want 2", len(blocks))
		}
		if blocks[0].StartLine != 8 || blocks[1].StartLine != 14 {
			t.Errorf("starts = %d, %d", blocks[0].StartLine, blocks[1].StartLine)
		}
	})

	t.Run("clamped at file edges", func(t *testing.T) {
		blocks := buildBlocks("f", lines, []int{1, 40}, 3)
		if len(blocks) != 2 {
			t.Fatalf("got %d blocks, want 2", len(blocks))
		}
		if blocks[0].StartLine != 1 {
			t.Errorf("first block starts at %d", blocks[0].StartLine)
		}
		last := blocks[1]
		if last.StartLine+len(last.Lines)-1 != 40 {
			t.Errorf("last block ends at %d", last.StartLine+len(last.Lines)-1)
		}
	})

	t.Run("zero context", func(t *testing.T) {
		blocks := buildBlocks("f", lines, []int{10}, 0)
		if len(blocks) != 1 || len(blocks[0].Lines) != 1 || blocks[0].StartLine != 10 {
			t.Errorf("blocks = %+v", blocks)
		}
	})
}

func TestExactDeadline(t *testing.T) {
	dir := t.TempDir()
	var targets []Target
	for _, name := range []string{"a.py", "b.py"} {
		targets = append(targets, writeFile(t, dir, name, "x = 1\n"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Exact(ctx, targets, ExactOptions{Query: "x"}, nil)
	if err != nil {
		t.Fatalf("exact: %v", err)
	}
	if !res.Truncated {
		t.Error("expired context did not truncate")
	}
	if res.Scanned != 0 {
		t.Errorf("scanned %d files under expired context", res.Scanned)
	}
}

func TestExactMaxResults(t *testing.T) {
	dir := t.TempDir()
	var targets []Target
	for _, name := range []string{"a.py", "b.py", "c.py"} {
		targets = append(targets, writeFile(t, dir, name, "needle\n"))
	}

	res, err := Exact(context.Background(), targets, ExactOptions{
		Query:      "needle",
		MaxResults: 2,
	}, nil)
	if err != nil {
		t.Fatalf("exact: %v", err)
	}
	if len(res.Blocks) != 2 || !res.Truncated {
		t.Errorf("blocks = %d, truncated = %v; want 2, true", len(res.Blocks), res.Truncated)
	}
}

func TestExactSkipsUnreadable(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.py", "needle\n")
	missing := Target{RelPath: "gone.py", AbsPath: filepath.Join(dir, "gone.py")}

	res, err := Exact(context.Background(), []Target{missing, good}, ExactOptions{
		Query: "needle",
	}, nil)
	if err != nil {
		t.Fatalf("exact: %v", err)
	}
	if res.Scanned != 1 || len(res.Blocks) != 1 {
		t.Errorf("scanned = %d, blocks = %d", res.Scanned, len(res.Blocks))
	}
}

func TestHighlight(t *testing.T) {
	b := MatchBlock{
		Path:      "a.py",
		StartLine: 3,
		Lines:     []string{"before", "hit", "after"},
		Matched:   []int{4},
	}
	out := Highlight(b)
	if len(out) != 3 {
		t.Fatalf("got %d lines", len(out))
	}
	if !strings.HasPrefix(out[1], ">") {
		t.Errorf("matched line not marked: %q", out[1])
	}
	if !strings.HasPrefix(out[0], " ") || !strings.HasPrefix(out[2], " ") {
		t.Errorf("context lines marked: %q, %q", out[0], out[2])
	}
}

func TestValidateQuery(t *testing.T) {
	if err := ValidateQuery("  "); err == nil {
		t.Error("whitespace query accepted")
	}
	if err := ValidateQuery("ok"); err != nil {
		t.Errorf("valid query rejected: %v", err)
	}
}
