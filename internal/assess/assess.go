// Package assess answers "how big is this tree" cheaply: a shallow walk
// counting candidate files, mapped to a size band with guidance on scan
// settings. It never parses or hashes anything.
package assess

import (
	"context"
	"time"

	"pcx/internal/ignore"
	"pcx/internal/trace"
	"pcx/internal/walker"
)

// Band classifies a tree by candidate file count
type Band string

const (
	BandTiny   Band = "tiny"   // < 50 files
	BandSmall  Band = "small"  // < 250 files
	BandMedium Band = "medium" // < 1000 files
	BandLarge  Band = "large"  // >= 1000 files
)

// assessDepth bounds the shallow pass; deep trees are already "large"
const assessDepth = 3

// Result is the outcome of one assessment
type Result struct {
	Files     int           `json:"files"`
	Band      Band          `json:"band"`
	Guidance  string        `json:"guidance"`
	Elapsed   time.Duration `json:"elapsed"`
	Truncated bool          `json:"truncated"`
}

// Options bounds an assessment
type Options struct {
	Root       string
	Extensions []string
}

// Run counts candidate files under root with a depth-limited walk. The
// binary sniff is skipped; only names and sizes matter here. A deadline or
// limit hit reports the count so far with the truncated flag set, which for
// banding purposes is still a useful floor.
func Run(ctx context.Context, opts Options, tr *trace.Trace) (*Result, error) {
	started := time.Now()

	rules := ignore.Build(opts.Root, assessDepth, nil, tr)
	wres, err := walker.Walk(ctx, walker.Options{
		Root:            opts.Root,
		Extensions:      opts.Extensions,
		MaxDepth:        assessDepth,
		Rules:           rules,
		SkipBinaryCheck: true,
	}, tr)
	if err != nil {
		return nil, err
	}

	count := len(wres.Files)
	band := bandFor(count)
	return &Result{
		Files:     count,
		Band:      band,
		Guidance:  guidance(band),
		Elapsed:   time.Since(started),
		Truncated: wres.Status != walker.StatusComplete,
	}, nil
}

func bandFor(files int) Band {
	switch {
	case files < 50:
		return BandTiny
	case files < 250:
		return BandSmall
	case files < 1000:
		return BandMedium
	default:
		return BandLarge
	}
}

func guidance(b Band) string {
	switch b {
	case BandTiny:
		return "Small tree: a full scan at compactness 2 or 3 is fine."
	case BandSmall:
		return "Moderate tree: default scan settings work well."
	case BandMedium:
		return "Sizable tree: prefer compactness 0 or 1, narrow by subdirectory for detail."
	default:
		return "Large tree: scan subdirectories individually and keep compactness at 0."
	}
}
