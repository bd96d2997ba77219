// Package engine is the call boundary: scan, exact search, concept search,
// and assessment over a project root. Calls are self-contained; the only
// state carried between them is the persisted index, loaded per root on
// first use and guarded by a per-root write lock.
package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"pcx/internal/assess"
	"pcx/internal/config"
	pcxerrors "pcx/internal/errors"
	"pcx/internal/ignore"
	"pcx/internal/index"
	"pcx/internal/logging"
	"pcx/internal/manifest"
	"pcx/internal/search"
	"pcx/internal/storage"
	"pcx/internal/trace"
	"pcx/internal/walker"
)

// Engine executes operations against project roots
type Engine struct {
	logger *logging.Logger

	mu    sync.Mutex
	roots map[string]*rootState
}

// rootState is the loaded per-root context: open database, store, config.
// writeMu serializes index writes for this root; scans of distinct roots
// do not contend.
type rootState struct {
	root    string
	db      *storage.DB
	store   *index.Store
	cfg     *config.Config
	mf      *manifest.Manifest
	writeMu sync.Mutex
}

// New creates an engine
func New(logger *logging.Logger) *Engine {
	return &Engine{
		logger: logger,
		roots:  make(map[string]*rootState),
	}
}

// Close releases all per-root databases
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var firstErr error
	for _, rs := range e.roots {
		if err := rs.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	e.roots = make(map[string]*rootState)
	return firstErr
}

// rootState loads (or returns the cached) state for a root path
func (e *Engine) rootState(root string) (*rootState, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, pcxerrors.Wrap(pcxerrors.RootUnavailable, "cannot resolve root", err).WithPath(root)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if rs, ok := e.roots[abs]; ok {
		return rs, nil
	}

	// Opening storage creates <root>/.pcx, so refuse before that point if
	// the root itself is not a real directory.
	info, err := os.Stat(abs)
	if err != nil {
		return nil, pcxerrors.Wrap(pcxerrors.RootUnavailable, "cannot access root", err).WithPath(abs)
	}
	if !info.IsDir() {
		return nil, pcxerrors.New(pcxerrors.RootUnavailable, "root is not a directory").WithPath(abs)
	}

	cfg, err := config.Load(abs)
	if err != nil {
		return nil, pcxerrors.Wrap(pcxerrors.InvalidRequest, "cannot load config", err).WithPath(abs)
	}
	if err := cfg.Validate(); err != nil {
		return nil, pcxerrors.Wrap(pcxerrors.InvalidRequest, "invalid config", err).WithPath(abs)
	}

	mf, err := manifest.Load(abs)
	if err != nil {
		// A broken manifest is a per-root configuration problem, not a
		// reason to refuse the call; scans proceed on config defaults.
		e.logger.Warn("ignoring unreadable scan manifest", map[string]interface{}{
			"root":  abs,
			"error": err.Error(),
		})
		mf = nil
	}

	db, err := storage.Open(abs, e.logger)
	if err != nil {
		return nil, pcxerrors.Wrap(pcxerrors.RootUnavailable, "cannot open index database", err).WithPath(abs)
	}

	rs := &rootState{
		root:  abs,
		db:    db,
		store: index.NewStore(db),
		cfg:   cfg,
		mf:    mf,
	}
	e.roots[abs] = rs
	return rs, nil
}

// newTrace returns a collecting trace when debug is set, else nil (no-op)
func newTrace(debug bool) *trace.Trace {
	if !debug {
		return nil
	}
	return trace.New()
}

// SearchExact finds literal or regexp matches with context in the live tree
func (e *Engine) SearchExact(ctx context.Context, req *ExactSearchRequest) (*ExactSearchResult, error) {
	started := time.Now()
	if err := search.ValidateQuery(req.Query); err != nil {
		return nil, err
	}

	rs, err := e.rootState(req.Root)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeoutOrDefault(req.TimeoutSeconds, DefaultSearchTimeout))
	defer cancel()

	tr := newTrace(req.Debug)
	settings := resolveScan(&ScanRequest{
		Root:       req.Root,
		Extensions: req.Extensions,
		MaxDepth:   req.MaxDepth,
		MaxFiles:   req.MaxFiles,
	}, rs.mf, rs.cfg)

	rules := ignore.Build(rs.root, settings.maxDepth, settings.exclude, tr)
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

	contextLines := rs.cfg.Search.ContextLines
	if req.ContextLines != nil {
		contextLines = *req.ContextLines
	}

	targets := make([]search.Target, len(wres.Files))
	for i, f := range wres.Files {
		targets[i] = search.Target{RelPath: f.RelPath, AbsPath: f.AbsPath}
	}

	searchStart := time.Now()
	sres, err := search.Exact(ctx, targets, search.ExactOptions{
		Query:        req.Query,
		Regex:        req.Regex,
		ContextLines: contextLines,
		MaxResults:   req.MaxResults,
	}, tr)
	if err != nil {
		return nil, err
	}
	tr.Time("search", time.Since(searchStart))

	status := StatusComplete
	switch {
	case sres.Truncated || wres.Status == walker.StatusTruncatedDeadline:
		status = StatusTruncatedDeadline
	case wres.Status == walker.StatusTruncatedLimit:
		status = StatusTruncatedLimit
	}
	if sres.Truncated && ctx.Err() == nil {
		// A result-count stop is a limit, not a deadline
		status = StatusTruncatedLimit
	}

	e.logger.Debug("exact search finished", map[string]interface{}{
		"root":    rs.root,
		"blocks":  len(sres.Blocks),
		"scanned": sres.Scanned,
		"status":  string(status),
	})

	return &ExactSearchResult{
		Status:    status,
		Blocks:    sres.Blocks,
		Scanned:   sres.Scanned,
		ElapsedMs: time.Since(started).Milliseconds(),
		Trace:     tr.Snapshot(),
	}, nil
}

// SearchConcept ranks indexed declarations against a free-text query. A root
// that has never been scanned gets an implicit index refresh first, inside
// the same deadline.
func (e *Engine) SearchConcept(ctx context.Context, req *ConceptSearchRequest) (*ConceptSearchResult, error) {
	started := time.Now()
	if err := search.ValidateQuery(req.Query); err != nil {
		return nil, err
	}

	rs, err := e.rootState(req.Root)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeoutOrDefault(req.TimeoutSeconds, DefaultConceptTimeout))
	defer cancel()

	tr := newTrace(req.Debug)

	stats, err := rs.store.Stats()
	if err != nil {
		return nil, pcxerrors.Wrap(pcxerrors.InternalError, "cannot read index stats", err)
	}
	if stats.Files == 0 {
		tr.Add("concept", "index empty, running implicit scan")
		if _, err := e.scanLocked(ctx, rs, &ScanRequest{Root: req.Root}, tr); err != nil {
			return nil, err
		}
	}

	decls, err := rs.store.AllDecls()
	if err != nil {
		return nil, pcxerrors.Wrap(pcxerrors.InternalError, "cannot read declarations", err)
	}
	files, err := rs.store.AllFiles()
	if err != nil {
		return nil, pcxerrors.Wrap(pcxerrors.InternalError, "cannot read files", err)
	}

	if len(req.Extensions) > 0 {
		decls = filterByExtension(decls, req.Extensions)
	}
	descriptions := make(map[string]string, len(files))
	for _, f := range files {
		if f.Description != "" {
			descriptions[f.Path] = f.Description
		}
	}

	topN := req.TopN
	if topN == 0 {
		topN = rs.cfg.Search.TopN
	}

	rankStart := time.Now()
	cres, err := search.Concept(ctx, req.Query, decls, descriptions, topN)
	if err != nil {
		return nil, err
	}
	tr.Time("rank", time.Since(rankStart))

	status := StatusComplete
	if cres.Truncated {
		status = StatusTruncatedDeadline
	}

	return &ConceptSearchResult{
		Status:    status,
		Hits:      cres.Hits,
		Scored:    cres.Scored,
		ElapsedMs: time.Since(started).Milliseconds(),
		Trace:     tr.Snapshot(),
	}, nil
}

// Assess estimates tree size with a shallow bounded walk
func (e *Engine) Assess(ctx context.Context, req *AssessRequest) (*AssessResult, error) {
	started := time.Now()
	rs, err := e.rootState(req.Root)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeoutOrDefault(req.TimeoutSeconds, DefaultAssessTimeout))
	defer cancel()

	tr := newTrace(req.Debug)
	extensions := req.Extensions
	if len(extensions) == 0 {
		extensions = rs.cfg.Scan.Extensions
	}

	ares, err := assess.Run(ctx, assess.Options{
		Root:       rs.root,
		Extensions: extensions,
	}, tr)
	if err != nil {
		return nil, err
	}

	status := StatusComplete
	if ares.Truncated {
		status = StatusTruncatedDeadline
	}
	return &AssessResult{
		Status:    status,
		Files:     ares.Files,
		Band:      ares.Band,
		Guidance:  ares.Guidance,
		ElapsedMs: time.Since(started).Milliseconds(),
		Trace:     tr.Snapshot(),
	}, nil
}

// Stats exposes the persisted index counts for a root
func (e *Engine) Stats(root string) (index.Stats, error) {
	rs, err := e.rootState(root)
	if err != nil {
		return index.Stats{}, err
	}
	return rs.store.Stats()
}

// Store exposes the index store for a root, for export and inspection
func (e *Engine) Store(root string) (*index.Store, error) {
	rs, err := e.rootState(root)
	if err != nil {
		return nil, err
	}
	return rs.store, nil
}

// filterByExtension keeps declarations whose file has one of the extensions
func filterByExtension(decls []index.Declaration, extensions []string) []index.Declaration {
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = true
	}
	var out []index.Declaration
	for _, d := range decls {
		if allowed[strings.ToLower(filepath.Ext(d.FilePath))] {
			out = append(out, d)
		}
	}
	return out
}
