package engine

import (
	"time"

	"pcx/internal/assess"
	"pcx/internal/config"
	"pcx/internal/format"
	"pcx/internal/manifest"
	"pcx/internal/search"
	"pcx/internal/trace"
)

// Status describes how an operation ended
type Status string

const (
	StatusComplete          Status = "complete"
	StatusTruncatedDeadline Status = "truncated_deadline"
	StatusTruncatedLimit    Status = "truncated_limit"
	StatusFailed            Status = "failed"
)

// Built-in operation deadlines, applied when the request names none
const (
	DefaultScanTimeout    = 60 * time.Second
	DefaultSearchTimeout  = 60 * time.Second
	DefaultConceptTimeout = 20 * time.Second
	DefaultAssessTimeout  = 10 * time.Second
)

// ScanRequest asks for a (re)scan of a tree. Zero fields take their value
// from the scan manifest, then the root's config, then built-in defaults;
// an explicit field always wins. MaxDepth and Compactness are pointers
// because 0 is a meaningful explicit value for both.
type ScanRequest struct {
	Root string

	Extensions       []string
	MaxDepth         *int
	MaxFiles         int
	MaxFileSizeBytes int64
	Compactness      *int

	// IncludeDescriptions controls file descriptions in the rendered view;
	// nil means true. Descriptions are always indexed regardless.
	IncludeDescriptions *bool

	TimeoutSeconds *int // nil = default; 0 = already expired, yields truncation
	Debug          bool
}

// ScanStats summarizes one scan pass
type ScanStats struct {
	FilesSeen    int   `json:"filesSeen"`    // regular files the walker considered
	FilesIndexed int   `json:"filesIndexed"` // candidates hashed and stored or reused
	CacheHits    int   `json:"cacheHits"`    // unchanged files served from the index
	Parsed       int   `json:"parsed"`       // files actually re-parsed
	Declarations int   `json:"declarations"` // declarations in the rendered view
	Pruned       int   `json:"pruned"`       // vanished paths dropped from the index
	ElapsedMs    int64 `json:"elapsedMs"`
}

// ScanResult is the outcome of a scan
type ScanResult struct {
	Status Status           `json:"status"`
	Stats  ScanStats        `json:"stats"`
	View   *format.TreeView `json:"view"`
	Trace  *trace.Snapshot  `json:"trace,omitempty"`
}

// ExactSearchRequest asks for literal or regexp matches with context
type ExactSearchRequest struct {
	Root  string
	Query string
	Regex bool

	ContextLines *int // 0 is meaningful: matched lines only
	MaxResults   int
	Extensions   []string
	MaxDepth     *int
	MaxFiles     int

	TimeoutSeconds *int
	Debug          bool
}

// ExactSearchResult is the outcome of an exact search
type ExactSearchResult struct {
	Status    Status              `json:"status"`
	Blocks    []search.MatchBlock `json:"blocks"`
	Scanned   int                 `json:"scanned"`
	ElapsedMs int64               `json:"elapsedMs"`
	Trace     *trace.Snapshot     `json:"trace,omitempty"`
}

// ConceptSearchRequest asks for declarations ranked against a free-text query
type ConceptSearchRequest struct {
	Root       string
	Query      string
	TopN       int
	Extensions []string

	TimeoutSeconds *int
	Debug          bool
}

// ConceptSearchResult is the outcome of a concept search
type ConceptSearchResult struct {
	Status    Status              `json:"status"`
	Hits      []search.ConceptHit `json:"hits"`
	Scored    int                 `json:"scored"`
	ElapsedMs int64               `json:"elapsedMs"`
	Trace     *trace.Snapshot     `json:"trace,omitempty"`
}

// AssessRequest asks how big a tree is before committing to a scan
type AssessRequest struct {
	Root       string
	Extensions []string

	TimeoutSeconds *int
	Debug          bool
}

// AssessResult is the outcome of an assessment
type AssessResult struct {
	Status    Status          `json:"status"`
	Files     int             `json:"files"`
	Band      assess.Band     `json:"band"`
	Guidance  string          `json:"guidance"`
	ElapsedMs int64           `json:"elapsedMs"`
	Trace     *trace.Snapshot `json:"trace,omitempty"`
}

// scanSettings are the fully resolved bounds of one scan pass
type scanSettings struct {
	extensions   []string
	maxDepth     int
	maxFiles     int
	maxFileSize  int64
	compactness  int
	descriptions bool
	exclude      []string

	// fullScan is true when the request narrowed nothing (extensions,
	// depth, or a limit tightened below its baseline), so a complete pass
	// may prune vanished paths from the index.
	fullScan bool
}

// resolveScan folds request, manifest, and config into concrete settings
func resolveScan(req *ScanRequest, m *manifest.Manifest, cfg *config.Config) scanSettings {
	s := scanSettings{
		extensions:   cfg.Scan.Extensions,
		maxDepth:     cfg.Scan.MaxDepth,
		maxFiles:     cfg.Scan.MaxFiles,
		maxFileSize:  cfg.Scan.MaxFileSizeBytes,
		compactness:  cfg.Scan.Compactness,
		descriptions: true,
	}

	if m != nil {
		if len(m.Extensions) > 0 {
			s.extensions = m.Extensions
		}
		if m.MaxDepth > 0 {
			s.maxDepth = m.MaxDepth
		}
		if m.MaxFiles > 0 {
			s.maxFiles = m.MaxFiles
		}
		if m.MaxFileSizeBytes > 0 {
			s.maxFileSize = m.MaxFileSizeBytes
		}
		s.exclude = m.Exclude
	}

	requestNarrowed := false
	if len(req.Extensions) > 0 {
		s.extensions = req.Extensions
		requestNarrowed = true
	}
	if req.MaxDepth != nil {
		s.maxDepth = *req.MaxDepth
		requestNarrowed = true
	}
	if req.MaxFiles > 0 {
		// Tightening the file-count limit below the baseline hides files
		// the baseline pass would have seen
		if s.maxFiles == 0 || req.MaxFiles < s.maxFiles {
			requestNarrowed = true
		}
		s.maxFiles = req.MaxFiles
	}
	if req.MaxFileSizeBytes > 0 {
		if s.maxFileSize == 0 || req.MaxFileSizeBytes < s.maxFileSize {
			requestNarrowed = true
		}
		s.maxFileSize = req.MaxFileSizeBytes
	}
	if req.Compactness != nil {
		s.compactness = *req.Compactness
	}
	if req.IncludeDescriptions != nil {
		s.descriptions = *req.IncludeDescriptions
	}

	s.fullScan = !requestNarrowed
	return s
}

// timeoutOrDefault converts a request's timeout to a duration. An unset
// timeout takes the operation default; an explicit zero (or negative) value
// surfaces as an already-expired deadline, so the caller gets a clean
// truncated result instead of an error.
func timeoutOrDefault(seconds *int, def time.Duration) time.Duration {
	if seconds == nil {
		return def
	}
	return time.Duration(*seconds) * time.Second
}
