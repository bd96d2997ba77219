package index

import (
	"fmt"

	"github.com/zeebo/xxh3"
)

// HashBytes returns the XXH3-128 digest of content as a 32-char hex string.
// Equality of hashes is the freshness test for incremental rescans.
func HashBytes(content []byte) string {
	h := xxh3.Hash128(content)
	return fmt.Sprintf("%016x%016x", h.Hi, h.Lo)
}

// Fresh reports whether the indexed record for path still matches the given
// content hash. A missing record is never fresh.
func (s *Store) Fresh(path, contentHash string) (bool, error) {
	rec, err := s.GetFile(path)
	if err != nil {
		return false, err
	}
	return rec != nil && rec.ContentHash == contentHash, nil
}
