package model

import (
	"strings"

	"github.com/example/localdoc-engine/internal/assert"
)

// FieldPath addresses a field inside nested map values. The empty path
// addresses the document root.
type FieldPath []string

// KeyFieldPath is the sentinel path that orders and filters by document key
// instead of by a field of the document.
var KeyFieldPath = FieldPath{"__name__"}

// NewFieldPath builds a path from the given segments.
func NewFieldPath(segments ...string) FieldPath {
	for _, segment := range segments {
		assert.Hard(segment != "", "field path segments must be non-empty")
	}
	return append(FieldPath(nil), segments...)
}

// FieldPathFromDotSeparated parses "a.b.c" into a three-segment path.
func FieldPathFromDotSeparated(path string) FieldPath {
	assert.Hard(path != "", "dot-separated field path must be non-empty")
	return NewFieldPath(strings.Split(path, ".")...)
}

// EmptyFieldPath returns the path addressing the document root.
func EmptyFieldPath() FieldPath {
	return FieldPath{}
}

// Empty reports whether the path addresses the document root.
func (p FieldPath) Empty() bool {
	return len(p) == 0
}

// Compare orders paths segment-wise, shorter prefixes first.
func (p FieldPath) Compare(other FieldPath) int {
	for i := 0; i < len(p) && i < len(other); i++ {
		if cmp := strings.Compare(p[i], other[i]); cmp != 0 {
			return cmp
		}
	}
	return compareInts(len(p), len(other))
}

// Equal reports whether both paths address the same field.
func (p FieldPath) Equal(other FieldPath) bool {
	return p.Compare(other) == 0
}

func (p FieldPath) String() string {
	return strings.Join(p, ".")
}

// FieldMask is a set of field paths. Insertion order is irrelevant;
// duplicates are discarded on construction.
type FieldMask struct {
	paths []FieldPath
}

// NewFieldMask builds a mask from the given paths, dropping duplicates.
func NewFieldMask(paths ...FieldPath) FieldMask {
	mask := FieldMask{}
	for _, path := range paths {
		if !mask.Contains(path) {
			mask.paths = append(mask.paths, path)
		}
	}
	return mask
}

// Paths returns the paths in the mask. Callers must not modify the slice.
func (m FieldMask) Paths() []FieldPath {
	return m.paths
}

// Contains reports whether the mask holds an entry equal to path.
func (m FieldMask) Contains(path FieldPath) bool {
	for _, candidate := range m.paths {
		if candidate.Equal(path) {
			return true
		}
	}
	return false
}

// Equal reports set equality between two masks.
func (m FieldMask) Equal(other FieldMask) bool {
	if len(m.paths) != len(other.paths) {
		return false
	}
	for _, path := range m.paths {
		if !other.Contains(path) {
			return false
		}
	}
	return true
}
