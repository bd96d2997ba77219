package index

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"pcx/internal/storage"
)

// Store reads and writes index records through the shared database handle.
// Write methods are transactional; a file and its declarations always move
// together, so readers never observe a half-updated file.
type Store struct {
	db *storage.DB
}

// NewStore creates a store over an open database
func NewStore(db *storage.DB) *Store {
	return &Store{db: db}
}

// GetFile returns the record for a canonical path, or nil when not indexed
func (s *Store) GetFile(path string) (*FileRecord, error) {
	row := s.db.QueryRow(`
		SELECT path, content_hash, size_bytes, language, description, indexed_at
		FROM files WHERE path = ?
	`, path)

	var rec FileRecord
	var indexedAt int64
	err := row.Scan(&rec.Path, &rec.ContentHash, &rec.SizeBytes,
		&rec.Language, &rec.Description, &indexedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get file %s: %w", path, err)
	}
	rec.IndexedAt = time.Unix(indexedAt, 0).UTC()
	return &rec, nil
}

// UpsertFile replaces a file's record and declarations in one transaction.
// A re-index of the same path supersedes the previous generation entirely.
func (s *Store) UpsertFile(rec FileRecord, decls []Declaration) error {
	return s.db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM files WHERE path = ?`, rec.Path); err != nil {
			return fmt.Errorf("supersede %s: %w", rec.Path, err)
		}

		_, err := tx.Exec(`
			INSERT INTO files (path, content_hash, size_bytes, language, description, indexed_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, rec.Path, rec.ContentHash, rec.SizeBytes, rec.Language, rec.Description,
			rec.IndexedAt.Unix())
		if err != nil {
			return fmt.Errorf("insert file %s: %w", rec.Path, err)
		}

		for _, d := range decls {
			_, err := tx.Exec(`
				INSERT INTO declarations (file_path, kind, name, signature, start_line, end_line, doc)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, rec.Path, d.Kind, d.Name, d.Signature, d.StartLine, d.EndLine, d.Doc)
			if err != nil {
				return fmt.Errorf("insert declaration %s in %s: %w", d.Name, rec.Path, err)
			}
		}
		return nil
	})
}

// DeleteFile removes a file and, by cascade, its declarations
func (s *Store) DeleteFile(path string) error {
	_, err := s.db.Exec(`DELETE FROM files WHERE path = ?`, path)
	return err
}

// AllFiles returns every indexed file ordered by path
func (s *Store) AllFiles() ([]FileRecord, error) {
	rows, err := s.db.Query(`
		SELECT path, content_hash, size_bytes, language, description, indexed_at
		FROM files ORDER BY path
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FileRecord
	for rows.Next() {
		var rec FileRecord
		var indexedAt int64
		if err := rows.Scan(&rec.Path, &rec.ContentHash, &rec.SizeBytes,
			&rec.Language, &rec.Description, &indexedAt); err != nil {
			return nil, err
		}
		rec.IndexedAt = time.Unix(indexedAt, 0).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeclsForFile returns a file's declarations ordered by position
func (s *Store) DeclsForFile(path string) ([]Declaration, error) {
	return s.queryDecls(`
		SELECT file_path, kind, name, signature, start_line, end_line, doc
		FROM declarations WHERE file_path = ?
		ORDER BY start_line, name
	`, path)
}

// AllDecls returns every declaration ordered by path then position
func (s *Store) AllDecls() ([]Declaration, error) {
	return s.queryDecls(`
		SELECT file_path, kind, name, signature, start_line, end_line, doc
		FROM declarations
		ORDER BY file_path, start_line, name
	`)
}

func (s *Store) queryDecls(query string, args ...interface{}) ([]Declaration, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Declaration
	for rows.Next() {
		var d Declaration
		if err := rows.Scan(&d.FilePath, &d.Kind, &d.Name, &d.Signature,
			&d.StartLine, &d.EndLine, &d.Doc); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// FilesByPrefix returns indexed files whose path starts with prefix,
// ordered by path. An empty prefix returns everything.
func (s *Store) FilesByPrefix(prefix string) ([]FileRecord, error) {
	if prefix == "" {
		return s.AllFiles()
	}
	rows, err := s.db.Query(`
		SELECT path, content_hash, size_bytes, language, description, indexed_at
		FROM files WHERE path LIKE ? ESCAPE '\' ORDER BY path
	`, escapeLike(prefix)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FileRecord
	for rows.Next() {
		var rec FileRecord
		var indexedAt int64
		if err := rows.Scan(&rec.Path, &rec.ContentHash, &rec.SizeBytes,
			&rec.Language, &rec.Description, &indexedAt); err != nil {
			return nil, err
		}
		rec.IndexedAt = time.Unix(indexedAt, 0).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SearchText finds declarations whose name, signature, or doc contains the
// needle, case-insensitively, ordered by path then position.
func (s *Store) SearchText(needle string) ([]Declaration, error) {
	pattern := "%" + escapeLike(needle) + "%"
	return s.queryDecls(`
		SELECT file_path, kind, name, signature, start_line, end_line, doc
		FROM declarations
		WHERE name LIKE ? ESCAPE '\'
		   OR signature LIKE ? ESCAPE '\'
		   OR doc LIKE ? ESCAPE '\'
		ORDER BY file_path, start_line, name
	`, pattern, pattern, pattern)
}

// escapeLike escapes LIKE metacharacters so user input matches literally
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// PruneExcept removes files (and their declarations) whose path is not in
// keep, returning how many were removed. Used after a complete scan to drop
// entries for files that no longer exist on disk.
func (s *Store) PruneExcept(keep []string) (int, error) {
	keepSet := make(map[string]bool, len(keep))
	for _, p := range keep {
		keepSet[p] = true
	}

	files, err := s.AllFiles()
	if err != nil {
		return 0, err
	}

	removed := 0
	err = s.db.WithTx(func(tx *sql.Tx) error {
		for _, f := range files {
			if keepSet[f.Path] {
				continue
			}
			if _, err := tx.Exec(`DELETE FROM files WHERE path = ?`, f.Path); err != nil {
				return fmt.Errorf("prune %s: %w", f.Path, err)
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Stats counts index contents
func (s *Store) Stats() (Stats, error) {
	var st Stats
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&st.Files); err != nil {
		return st, err
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM declarations`).Scan(&st.Declarations); err != nil {
		return st, err
	}
	return st, nil
}
