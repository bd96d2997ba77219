// Package paths normalizes file paths to root-relative canonical form.
// Canonical paths are always forward-slashed, regardless of platform.
package paths

import (
	"path/filepath"
	"strings"
)

// Normalize converts backslashes to forward slashes in an already-relative path
func Normalize(path string) string {
	return filepath.ToSlash(path)
}

// Join joins a root with a canonical relative path using the OS separator
func Join(root string, canonical string) string {
	parts := strings.Split(Normalize(canonical), "/")
	return filepath.Join(append([]string{root}, parts...)...)
}
