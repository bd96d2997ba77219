// Package format renders scan output at the requested compactness level.
// Levels 0 through 2 work entirely from index records; only level 3 goes
// back to disk, to quote the literal source span of each declaration.
package format

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"pcx/internal/index"
	"pcx/internal/paths"
)

// Compactness levels
const (
	// LevelCounts: per-directory file and declaration counts only
	LevelCounts = 0
	// LevelSignatures: plus declaration names and signatures
	LevelSignatures = 1
	// LevelDocs: plus doc text
	LevelDocs = 2
	// LevelSource: plus the literal source span, re-read from disk
	LevelSource = 3
)

// DirSummary aggregates one directory of the scanned tree
type DirSummary struct {
	Path         string `json:"path"`
	Files        int    `json:"files"`
	Declarations int    `json:"declarations"`
}

// FileView is one file rendered at the requested level
type FileView struct {
	Path         string     `json:"path"`
	Language     string     `json:"language,omitempty"`
	Description  string     `json:"description,omitempty"`
	Declarations []DeclView `json:"declarations,omitempty"`
}

// DeclView is one declaration rendered at the requested level
type DeclView struct {
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Signature string `json:"signature,omitempty"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
	Doc       string `json:"doc,omitempty"`
	Source    string `json:"source,omitempty"`
}

// TreeView is the rendered scan output
type TreeView struct {
	Level       int          `json:"level"`
	Directories []DirSummary `json:"directories"`
	Files       []FileView   `json:"files,omitempty"`
}

// Render builds a TreeView at the given level. root is only consulted at
// LevelSource, where declaration spans are quoted from the files on disk;
// a file that cannot be re-read keeps its entry without source text.
// withDescriptions suppresses file descriptions when false, independent of
// the level.
func Render(level int, root string, files []index.FileRecord, decls []index.Declaration, withDescriptions bool) (*TreeView, error) {
	if level < LevelCounts || level > LevelSource {
		return nil, fmt.Errorf("compactness level %d out of range 0..3", level)
	}

	declsByFile := make(map[string][]index.Declaration)
	for _, d := range decls {
		declsByFile[d.FilePath] = append(declsByFile[d.FilePath], d)
	}

	view := &TreeView{
		Level:       level,
		Directories: summarize(files, declsByFile),
	}
	if level == LevelCounts {
		return view, nil
	}

	for _, f := range files {
		fv := FileView{
			Path:     f.Path,
			Language: f.Language,
		}
		if level >= LevelDocs && withDescriptions {
			fv.Description = f.Description
		}
		for _, d := range declsByFile[f.Path] {
			dv := DeclView{
				Kind:      d.Kind,
				Name:      d.Name,
				Signature: d.Signature,
				StartLine: d.StartLine,
				EndLine:   d.EndLine,
			}
			if level >= LevelDocs {
				dv.Doc = d.Doc
			}
			if level == LevelSource {
				dv.Source = readSpan(root, f.Path, d.StartLine, d.EndLine)
			}
			fv.Declarations = append(fv.Declarations, dv)
		}
		view.Files = append(view.Files, fv)
	}
	return view, nil
}

// summarize rolls files and declarations up to their immediate directory
func summarize(files []index.FileRecord, declsByFile map[string][]index.Declaration) []DirSummary {
	byDir := make(map[string]*DirSummary)
	for _, f := range files {
		dir := path.Dir(f.Path)
		if dir == "." {
			dir = ""
		}
		s, ok := byDir[dir]
		if !ok {
			s = &DirSummary{Path: dir}
			byDir[dir] = s
		}
		s.Files++
		s.Declarations += len(declsByFile[f.Path])
	}

	out := make([]DirSummary, 0, len(byDir))
	for _, s := range byDir {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// readSpan quotes lines start..end (1-indexed, inclusive) of a file.
// Any read failure yields an empty span; the caller already has the
// structural data.
func readSpan(root, relPath string, start, end int) string {
	if start < 1 || end < start {
		return ""
	}
	data, err := os.ReadFile(paths.Join(root, relPath))
	if err != nil {
		return ""
	}
	lines := strings.Split(string(data), "\n")
	if start > len(lines) {
		return ""
	}
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start-1:end], "\n")
}
