package model

import (
	"strings"
	"time"

	"github.com/example/localdoc-engine/internal/assert"
)

// DocumentKey identifies a document by its slash-delimited resource path,
// alternating collection and document segments.
type DocumentKey struct {
	segments []string
}

// NewDocumentKey builds a key from path segments.
func NewDocumentKey(segments ...string) DocumentKey {
	assert.Hard(len(segments) > 0 && len(segments)%2 == 0,
		"document keys must have an even, non-zero number of segments, got %d", len(segments))
	for _, segment := range segments {
		assert.Hard(segment != "", "document key segments must be non-empty")
	}
	return DocumentKey{segments: append([]string(nil), segments...)}
}

// DocumentKeyFromPath parses a slash-delimited path such as "rooms/eros".
func DocumentKeyFromPath(path string) DocumentKey {
	return NewDocumentKey(strings.Split(path, "/")...)
}

// Path returns the key's segments. Callers must not modify the slice.
func (k DocumentKey) Path() []string {
	return k.segments
}

// String returns the canonical slash-delimited path.
func (k DocumentKey) String() string {
	return strings.Join(k.segments, "/")
}

// Compare orders keys by their canonical paths, segment-wise.
func (k DocumentKey) Compare(other DocumentKey) int {
	for i := 0; i < len(k.segments) && i < len(other.segments); i++ {
		if cmp := strings.Compare(k.segments[i], other.segments[i]); cmp != 0 {
			return cmp
		}
	}
	return compareInts(len(k.segments), len(other.segments))
}

// Equal reports whether both keys address the same document.
func (k DocumentKey) Equal(other DocumentKey) bool {
	return k.Compare(other) == 0
}

// SnapshotVersion is the server timestamp at which a document state was
// observed. The zero value means no version is known.
type SnapshotVersion struct {
	at time.Time
}

// NewSnapshotVersion builds a version from a server timestamp.
func NewSnapshotVersion(at time.Time) SnapshotVersion {
	return SnapshotVersion{at: at}
}

// IsZero reports whether no version is known.
func (v SnapshotVersion) IsZero() bool {
	return v.at.IsZero()
}

// Time returns the underlying server timestamp.
func (v SnapshotVersion) Time() time.Time {
	return v.at
}

// Compare orders versions chronologically.
func (v SnapshotVersion) Compare(other SnapshotVersion) int {
	return compareTimes(v.at, other.at)
}

// Equal reports whether both versions name the same server timestamp.
func (v SnapshotVersion) Equal(other SnapshotVersion) bool {
	return v.at.Equal(other.at)
}

// DocumentState tracks how far a document's data has progressed through the
// write pipeline.
type DocumentState uint8

const (
	// DocumentStateSynced means the document's data matches the server.
	DocumentStateSynced DocumentState = iota
	// DocumentStateLocalMutations means unacknowledged local writes are
	// reflected in the data.
	DocumentStateLocalMutations
	// DocumentStateCommittedMutations means the server acknowledged the
	// latest write but a watch update confirming it has not arrived yet.
	DocumentStateCommittedMutations
)

// MaybeDocument is the last known state of a document slot: a Document with
// data, a NoDocument tombstone, or an UnknownDocument whose existence is
// undetermined. A nil MaybeDocument means the slot was never read.
type MaybeDocument interface {
	Key() DocumentKey
	Version() SnapshotVersion
}

// Document is a document known to exist, together with its data.
type Document struct {
	key     DocumentKey
	version SnapshotVersion
	state   DocumentState
	data    Value
}

// NewDocument builds a document. data must be a map value.
func NewDocument(key DocumentKey, version SnapshotVersion, state DocumentState, data Value) Document {
	assert.Hard(data.IsMap(), "document data must be a map value, got kind %d", data.Kind())
	return Document{key: key, version: version, state: state, data: data}
}

func (d Document) Key() DocumentKey         { return d.key }
func (d Document) Version() SnapshotVersion { return d.version }
func (d Document) State() DocumentState     { return d.state }

// Data returns the document's field data.
func (d Document) Data() Value {
	return d.data
}

// Field returns the value at path, if present.
func (d Document) Field(path FieldPath) (Value, bool) {
	return d.data.Field(path)
}

// HasLocalMutations reports whether unacknowledged local writes are folded
// into the data.
func (d Document) HasLocalMutations() bool {
	return d.state == DocumentStateLocalMutations
}

// HasCommittedMutations reports whether the data reflects writes the server
// acknowledged but has not streamed back yet.
func (d Document) HasCommittedMutations() bool {
	return d.state == DocumentStateCommittedMutations
}

// NoDocument is a tombstone: the document is known not to exist.
type NoDocument struct {
	key                   DocumentKey
	version               SnapshotVersion
	hasCommittedMutations bool
}

// NewNoDocument builds a tombstone for key.
func NewNoDocument(key DocumentKey, version SnapshotVersion, hasCommittedMutations bool) NoDocument {
	return NoDocument{key: key, version: version, hasCommittedMutations: hasCommittedMutations}
}

func (d NoDocument) Key() DocumentKey         { return d.key }
func (d NoDocument) Version() SnapshotVersion { return d.version }

// HasCommittedMutations reports whether the tombstone comes from an
// acknowledged delete the server has not streamed back yet.
func (d NoDocument) HasCommittedMutations() bool {
	return d.hasCommittedMutations
}

// UnknownDocument marks a document whose existence at a version is known but
// whose contents are not, the reconciliation result when the server accepts
// a write the local cache cannot replay.
type UnknownDocument struct {
	key     DocumentKey
	version SnapshotVersion
}

// NewUnknownDocument builds an existence-undetermined entry for key.
func NewUnknownDocument(key DocumentKey, version SnapshotVersion) UnknownDocument {
	return UnknownDocument{key: key, version: version}
}

func (d UnknownDocument) Key() DocumentKey         { return d.key }
func (d UnknownDocument) Version() SnapshotVersion { return d.version }
