// Package index persists the scan results: a directory of indexed files and
// the declarations extracted from them, keyed by canonical path.
package index

import "time"

// FileRecord is one indexed file
type FileRecord struct {
	Path        string    `json:"path"`
	ContentHash string    `json:"contentHash"`
	SizeBytes   int64     `json:"sizeBytes"`
	Language    string    `json:"language,omitempty"`
	Description string    `json:"description,omitempty"`
	IndexedAt   time.Time `json:"indexedAt"`
}

// Declaration is one indexed declaration, tied to its file by path
type Declaration struct {
	FilePath  string `json:"filePath"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Signature string `json:"signature,omitempty"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
	Doc       string `json:"doc,omitempty"`
}

// Stats summarizes index contents
type Stats struct {
	Files        int `json:"files"`
	Declarations int `json:"declarations"`
}
