// Package export writes a portable snapshot of the index: one JSON document,
// zstd-compressed, suitable for shipping a pre-built index to another
// machine or attaching to a bug report.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"

	"pcx/internal/index"
	"pcx/internal/version"
)

// Snapshot is the exported document
type Snapshot struct {
	FormatVersion int                 `json:"formatVersion"`
	PcxVersion    string              `json:"pcxVersion"`
	GeneratedAt   time.Time           `json:"generatedAt"`
	Stats         index.Stats         `json:"stats"`
	Files         []index.FileRecord  `json:"files"`
	Declarations  []index.Declaration `json:"declarations"`
}

// formatVersion bumps when the snapshot layout changes incompatibly
const formatVersion = 1

// Write dumps the whole index to path as zstd-compressed JSON
func Write(store *index.Store, path string) (*Snapshot, error) {
	files, err := store.AllFiles()
	if err != nil {
		return nil, fmt.Errorf("read files: %w", err)
	}
	decls, err := store.AllDecls()
	if err != nil {
		return nil, fmt.Errorf("read declarations: %w", err)
	}
	stats, err := store.Stats()
	if err != nil {
		return nil, fmt.Errorf("read stats: %w", err)
	}

	snap := &Snapshot{
		FormatVersion: formatVersion,
		PcxVersion:    version.Version,
		GeneratedAt:   time.Now().UTC(),
		Stats:         stats,
		Files:         files,
		Declarations:  decls,
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return nil, fmt.Errorf("init compressor: %w", err)
	}

	if err := json.NewEncoder(enc).Encode(snap); err != nil {
		enc.Close()
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("flush compressor: %w", err)
	}
	return snap, nil
}

// Read loads a snapshot written by Write
func Read(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export file: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("init decompressor: %w", err)
	}
	defer dec.Close()

	var snap Snapshot
	if err := json.NewDecoder(dec).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.FormatVersion != formatVersion {
		return nil, fmt.Errorf("unsupported snapshot format version %d", snap.FormatVersion)
	}
	return &snap, nil
}
