package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	pcxerrors "pcx/internal/errors"
	"pcx/internal/format"
	"pcx/internal/ignore"
	"pcx/internal/index"
	"pcx/internal/parser"
	"pcx/internal/trace"
	"pcx/internal/walker"
)

// maxParseWorkers caps the parse pool regardless of CPU count
const maxParseWorkers = 8

// fileOutcome is what one worker produced for one candidate file
type fileOutcome struct {
	rec      index.FileRecord
	decls    []index.Declaration
	cacheHit bool
	skipped  bool // unreadable; already traced
}

// Scan walks the tree, re-parses changed files, and renders the result at
// the requested compactness.
func (e *Engine) Scan(ctx context.Context, req *ScanRequest) (*ScanResult, error) {
	started := time.Now()

	rs, err := e.rootState(req.Root)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeoutOrDefault(req.TimeoutSeconds, DefaultScanTimeout))
	defer cancel()

	tr := newTrace(req.Debug)
	res, err := e.scanLocked(ctx, rs, req, tr)
	if err != nil {
		return nil, err
	}

	res.Stats.ElapsedMs = time.Since(started).Milliseconds()
	res.Trace = tr.Snapshot()

	e.logger.Info("scan finished", map[string]interface{}{
		"root":       rs.root,
		"status":     string(res.Status),
		"files":      res.Stats.FilesIndexed,
		"cache_hits": res.Stats.CacheHits,
		"parsed":     res.Stats.Parsed,
		"elapsed_ms": res.Stats.ElapsedMs,
	})
	return res, nil
}

// scanLocked runs the scan pipeline against loaded root state. Also used by
// concept search for its implicit first-scan refresh.
func (e *Engine) scanLocked(ctx context.Context, rs *rootState, req *ScanRequest, tr *trace.Trace) (*ScanResult, error) {
	settings := resolveScan(req, rs.mf, rs.cfg)
	if settings.compactness < format.LevelCounts || settings.compactness > format.LevelSource {
		return nil, pcxerrors.New(pcxerrors.InvalidRequest,
			fmt.Sprintf("compactness %d out of range 0..3", settings.compactness))
	}

	ignoreStart := time.Now()
	rules := ignore.Build(rs.root, settings.maxDepth, settings.exclude, tr)
	tr.Time("ignore", time.Since(ignoreStart))

	walkStart := time.Now()
	wres, err := walker.Walk(ctx, walker.Options{
		Root:        rs.root,
		Extensions:  settings.extensions,
		MaxDepth:    settings.maxDepth,
		MaxFiles:    settings.maxFiles,
		MaxFileSize: settings.maxFileSize,
		Rules:       rules,
	}, tr)
	if err != nil {
		return nil, err
	}
	tr.Time("walk", time.Since(walkStart))

	parseStart := time.Now()
	outcomes, deadlineHit := e.processFiles(ctx, rs, wres.Files, tr)
	tr.Time("parse", time.Since(parseStart))

	stats := ScanStats{FilesSeen: wres.Visited}
	var files []index.FileRecord
	var decls []index.Declaration
	indexed := make(map[string]bool, len(outcomes))
	for _, o := range outcomes {
		if o.skipped {
			continue
		}
		stats.FilesIndexed++
		if o.cacheHit {
			stats.CacheHits++
		} else {
			stats.Parsed++
		}
		files = append(files, o.rec)
		decls = append(decls, o.decls...)
		indexed[o.rec.Path] = true
	}
	stats.Declarations = len(decls)

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	sort.Slice(decls, func(i, j int) bool {
		if decls[i].FilePath != decls[j].FilePath {
			return decls[i].FilePath < decls[j].FilePath
		}
		return decls[i].StartLine < decls[j].StartLine
	})

	status := StatusComplete
	switch {
	case deadlineHit || wres.Status == walker.StatusTruncatedDeadline:
		status = StatusTruncatedDeadline
	case wres.Status == walker.StatusTruncatedLimit:
		status = StatusTruncatedLimit
	}

	// Only a complete, unnarrowed pass has seen the whole tree; anything
	// else must not treat absence as deletion.
	if status == StatusComplete && settings.fullScan {
		keep := make([]string, 0, len(indexed))
		for p := range indexed {
			keep = append(keep, p)
		}
		rs.writeMu.Lock()
		pruned, err := rs.store.PruneExcept(keep)
		rs.writeMu.Unlock()
		if err != nil {
			return nil, pcxerrors.Wrap(pcxerrors.InternalError, "prune failed", err)
		}
		stats.Pruned = pruned
		if pruned > 0 {
			tr.Add("index", "pruned %d vanished paths", pruned)
		}
	}

	view, err := format.Render(settings.compactness, rs.root, files, decls, settings.descriptions)
	if err != nil {
		return nil, pcxerrors.Wrap(pcxerrors.InvalidRequest, "render failed", err)
	}

	return &ScanResult{Status: status, Stats: stats, View: view}, nil
}

// processFiles runs the bounded parse pool over the walked candidates.
// The feeder stops handing out work once the deadline passes; in-flight
// files finish normally, so the index never holds a half-parsed entry.
func (e *Engine) processFiles(ctx context.Context, rs *rootState, candidates []walker.File, tr *trace.Trace) ([]fileOutcome, bool) {
	workers := rs.cfg.Workers.ParseWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > maxParseWorkers {
		workers = maxParseWorkers
	}

	jobs := make(chan walker.File)
	results := make(chan fileOutcome)
	var deadlineHit atomic.Bool

	go func() {
		defer close(jobs)
		for _, f := range candidates {
			if ctx.Err() != nil {
				deadlineHit.Store(true)
				tr.Add("parse", "deadline reached while feeding parse pool")
				return
			}
			jobs <- f
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				results <- e.processOne(rs, f, tr)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var outcomes []fileOutcome
	for o := range results {
		outcomes = append(outcomes, o)
	}
	return outcomes, deadlineHit.Load()
}

// processOne hashes one file, reuses the stored record when unchanged, and
// parses + stores otherwise. Index writes are serialized per root.
func (e *Engine) processOne(rs *rootState, f walker.File, tr *trace.Trace) fileOutcome {
	content, err := os.ReadFile(f.AbsPath)
	if err != nil {
		tr.AddPath("parse", f.RelPath, "skipped: unreadable: %v", err)
		return fileOutcome{skipped: true}
	}

	hash := index.HashBytes(content)

	stored, err := rs.store.GetFile(f.RelPath)
	if err != nil {
		tr.AddPath("parse", f.RelPath, "skipped: index read failed: %v", err)
		return fileOutcome{skipped: true}
	}
	if stored != nil && stored.ContentHash == hash {
		decls, err := rs.store.DeclsForFile(f.RelPath)
		if err != nil {
			tr.AddPath("parse", f.RelPath, "skipped: index read failed: %v", err)
			return fileOutcome{skipped: true}
		}
		return fileOutcome{rec: *stored, decls: decls, cacheHit: true}
	}

	lang := parser.ForExtension(filepath.Ext(f.RelPath))
	if lang == parser.LangNone {
		tr.AddPath("parse", f.RelPath, "unsupported extension, indexed without declarations")
	}
	pres := parser.Parse(lang, string(content))
	for _, note := range pres.Notes {
		tr.AddPath("parse", f.RelPath, "%s", note)
	}

	rec := index.FileRecord{
		Path:        f.RelPath,
		ContentHash: hash,
		SizeBytes:   int64(len(content)),
		Language:    string(lang),
		Description: pres.Description,
		IndexedAt:   time.Now().UTC(),
	}
	decls := make([]index.Declaration, len(pres.Declarations))
	for i, d := range pres.Declarations {
		decls[i] = index.Declaration{
			FilePath:  f.RelPath,
			Kind:      string(d.Kind),
			Name:      d.Name,
			Signature: d.Signature,
			StartLine: d.StartLine,
			EndLine:   d.EndLine,
			Doc:       d.Doc,
		}
	}

	rs.writeMu.Lock()
	err = rs.store.UpsertFile(rec, decls)
	rs.writeMu.Unlock()
	if err != nil {
		tr.AddPath("parse", f.RelPath, "skipped: index write failed: %v", err)
		e.logger.Error("index write failed", map[string]interface{}{
			"path":  f.RelPath,
			"error": err.Error(),
		})
		return fileOutcome{skipped: true}
	}

	return fileOutcome{rec: rec, decls: decls}
}
