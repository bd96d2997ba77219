// Package walker enumerates candidate files under a scan root, bounded by
// depth, extension allow-list, size ceiling, binary detection, and the
// compiled ignore rules. Enumeration is single-threaded and deterministic;
// parallelism happens downstream at the parse stage.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	pcxerrors "pcx/internal/errors"
	"pcx/internal/ignore"
	"pcx/internal/trace"
)

// Status describes how an enumeration pass ended
type Status string

const (
	// StatusComplete means the walk visited everything it was asked to
	StatusComplete Status = "complete"
	// StatusTruncatedDeadline means the call deadline stopped the walk early
	StatusTruncatedDeadline Status = "truncated_deadline"
	// StatusTruncatedLimit means the max-file-count limit stopped the walk early
	StatusTruncatedLimit Status = "truncated_limit"
)

// Options bounds a walk
type Options struct {
	Root        string
	Extensions  []string // with leading dots; empty allows every extension
	MaxDepth    int      // directory levels below root; 0 = root directory only
	MaxFiles    int      // 0 = unlimited
	MaxFileSize int64    // bytes; 0 = unlimited
	Rules       *ignore.RuleSet

	// SkipBinaryCheck avoids opening files to sniff for binary content.
	// Used by the assessor, which only counts candidates.
	SkipBinaryCheck bool
}

// File is one candidate emitted by the walk
type File struct {
	RelPath string // canonical, forward-slashed, relative to root
	AbsPath string
	Size    int64
}

// Result is the outcome of one enumeration pass
type Result struct {
	Files   []File
	Status  Status
	Visited int // regular files considered, including skipped ones
}

// sniffLen is how much of a file's head is inspected for a null byte
const sniffLen = 8192

// Walk enumerates candidate files under opts.Root. Only an unreadable root
// is fatal; unreadable subdirectories and files are skipped and traced.
func Walk(ctx context.Context, opts Options, tr *trace.Trace) (*Result, error) {
	if opts.MaxDepth < 0 {
		return nil, pcxerrors.New(pcxerrors.InvalidRequest, fmt.Sprintf("max depth must be >= 0, got %d", opts.MaxDepth))
	}

	info, err := os.Stat(opts.Root)
	if err != nil {
		return nil, pcxerrors.Wrap(pcxerrors.RootUnavailable, "cannot access scan root", err).WithPath(opts.Root)
	}
	if !info.IsDir() {
		return nil, pcxerrors.New(pcxerrors.RootUnavailable, "scan root is not a directory").WithPath(opts.Root)
	}

	w := &walk{opts: opts, tr: tr, result: &Result{Status: StatusComplete}}
	w.dir(ctx, opts.Root, "", 0)

	// DFS over name-sorted entries is nearly lexicographic already; the
	// final sort makes it exact for paths with bytes ordering below '/'.
	sort.Slice(w.result.Files, func(i, j int) bool {
		return w.result.Files[i].RelPath < w.result.Files[j].RelPath
	})
	return w.result, nil
}

type walk struct {
	opts   Options
	tr     *trace.Trace
	result *Result
	done   bool
}

// dir processes one directory level. rel is "" for the root itself.
func (w *walk) dir(ctx context.Context, abs, rel string, depth int) {
	if w.done {
		return
	}
	if ctx.Err() != nil {
		w.stop(StatusTruncatedDeadline)
		return
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		w.tr.AddPath("walk", rel, "unreadable directory: %v", err)
		return
	}

	for _, e := range entries {
		if w.done {
			return
		}
		if ctx.Err() != nil {
			w.stop(StatusTruncatedDeadline)
			return
		}

		name := e.Name()
		childRel := name
		if rel != "" {
			childRel = rel + "/" + name
		}
		childAbs := filepath.Join(abs, name)

		if e.IsDir() {
			if w.opts.Rules.Excluded(childRel, true) {
				w.tr.AddPath("walk", childRel, "directory excluded by ignore rules")
				continue
			}
			if depth+1 > w.opts.MaxDepth {
				continue
			}
			w.dir(ctx, childAbs, childRel, depth+1)
			continue
		}
		if !e.Type().IsRegular() {
			continue
		}

		w.result.Visited++
		w.file(e, childAbs, childRel)
	}
}

// file applies the per-file filters and collects the candidate
func (w *walk) file(e os.DirEntry, abs, rel string) {
	if !w.extensionAllowed(rel) {
		w.tr.AddPath("walk", rel, "skipped: extension not in allow-list")
		return
	}
	if w.opts.Rules.Excluded(rel, false) {
		w.tr.AddPath("walk", rel, "skipped: excluded by ignore rules")
		return
	}

	fi, err := e.Info()
	if err != nil {
		w.tr.AddPath("walk", rel, "skipped: stat failed: %v", err)
		return
	}
	if w.opts.MaxFileSize > 0 && fi.Size() > w.opts.MaxFileSize {
		w.tr.AddPath("walk", rel, "skipped: %d bytes exceeds size ceiling", fi.Size())
		return
	}

	if !w.opts.SkipBinaryCheck {
		binary, err := isBinary(abs)
		if err != nil {
			w.tr.AddPath("walk", rel, "skipped: unreadable: %v", err)
			return
		}
		if binary {
			w.tr.AddPath("walk", rel, "skipped: binary content")
			return
		}
	}

	w.result.Files = append(w.result.Files, File{RelPath: rel, AbsPath: abs, Size: fi.Size()})
	if w.opts.MaxFiles > 0 && len(w.result.Files) >= w.opts.MaxFiles {
		w.stop(StatusTruncatedLimit)
	}
}

func (w *walk) extensionAllowed(rel string) bool {
	if len(w.opts.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(rel))
	for _, allowed := range w.opts.Extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

func (w *walk) stop(status Status) {
	if !w.done {
		w.done = true
		w.result.Status = status
	}
}

// isBinary sniffs the first chunk of a file for a null byte
func isBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		// Empty files read as io.EOF with n == 0; they are text
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	for _, b := range buf[:n] {
		if b == 0 {
			return true, nil
		}
	}
	return false, nil
}
