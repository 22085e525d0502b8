// Package mutation models pending local writes and their reconciliation
// with server acknowledgments. Every mutation can be applied in two modes:
// optimistically against the current local view, and authoritatively against
// the server's base document once an acknowledgment arrives. Both modes are
// pure functions; the mutation queue around this package owns all
// bookkeeping and I/O.
package mutation

import (
	"time"

	"github.com/example/localdoc-engine/internal/assert"
	"github.com/example/localdoc-engine/internal/model"
)

// MutationResult is the server's acknowledgment of a committed mutation:
// the commit version plus, for transform mutations only, one authoritative
// result value per field transform, in declaration order.
type MutationResult struct {
	version          model.SnapshotVersion
	transformResults []model.Value
}

// NewMutationResult builds an acknowledgment. transformResults must be nil
// for mutations that carry no field transforms.
func NewMutationResult(version model.SnapshotVersion, transformResults []model.Value) MutationResult {
	return MutationResult{version: version, transformResults: transformResults}
}

// Version returns the commit version assigned by the server.
func (r MutationResult) Version() model.SnapshotVersion {
	return r.version
}

// TransformResults returns the per-transform result values, or nil when the
// mutation carried no field transforms.
func (r MutationResult) TransformResults() []model.Value {
	return r.transformResults
}

// Mutation is a pending local write. Implementations are immutable.
type Mutation interface {
	Key() model.DocumentKey
	Precondition() Precondition

	// ApplyToRemoteDocument applies the mutation to the server's last known
	// base document using the acknowledgment the server returned for it. The
	// result is the confirmed document state.
	ApplyToRemoteDocument(maybeDoc model.MaybeDocument, result MutationResult) model.MaybeDocument

	// ApplyToLocalView applies the mutation speculatively to the current
	// local view. baseDoc is the document state before the whole mutation
	// batch this mutation belongs to, used to keep transforms idempotent
	// under re-application.
	ApplyToLocalView(maybeDoc, baseDoc model.MaybeDocument, localWriteTime time.Time) model.MaybeDocument

	// ExtractBaseValue captures, from the current document state, the values
	// a transform mutation needs to re-apply itself idempotently before the
	// server acknowledges it. It reports false for mutations that need no
	// base value.
	ExtractBaseValue(maybeDoc model.MaybeDocument) (model.Value, bool)
}

// base carries the key and precondition every mutation variant shares.
type base struct {
	key          model.DocumentKey
	precondition Precondition
}

func (b base) Key() model.DocumentKey {
	return b.key
}

func (b base) Precondition() Precondition {
	return b.precondition
}

func (b base) verifyKeyMatches(maybeDoc model.MaybeDocument) {
	if maybeDoc != nil {
		assert.Hard(maybeDoc.Key().Equal(b.key),
			"mutation for %s applied to document %s", b.key, maybeDoc.Key())
	}
}

func (b base) equalBase(other base) bool {
	return b.key.Equal(other.key) && b.precondition.Equal(other.precondition)
}

// postMutationVersion is the version to attribute to a locally mutated
// document: the version of the existing document, or the unknown version
// when none existed.
func postMutationVersion(maybeDoc model.MaybeDocument) model.SnapshotVersion {
	if doc, ok := maybeDoc.(model.Document); ok {
		return doc.Version()
	}
	return model.SnapshotVersion{}
}

// SetMutation overwrites the whole document with a new value.
type SetMutation struct {
	base
	value model.Value
}

// NewSetMutation builds a set mutation. value must be a map value.
func NewSetMutation(key model.DocumentKey, value model.Value, precondition Precondition) SetMutation {
	assert.Hard(value.IsMap(), "set mutation value must be a map, got kind %d", value.Kind())
	return SetMutation{base: base{key: key, precondition: precondition}, value: value}
}

// Value returns the document contents this mutation writes.
func (m SetMutation) Value() model.Value {
	return m.value
}

func (m SetMutation) ApplyToRemoteDocument(maybeDoc model.MaybeDocument, result MutationResult) model.MaybeDocument {
	m.verifyKeyMatches(maybeDoc)
	assert.Hard(result.TransformResults() == nil, "transform results received by set mutation")
	recordApply(kindSet, modeRemote)

	if !m.precondition.IsValidFor(maybeDoc) {
		// The server accepted the write, so the precondition held there and
		// the local cache is stale. Track existence at the commit version
		// without guessing contents.
		recordPreconditionFailure(kindSet)
		return model.NewUnknownDocument(m.key, result.Version())
	}
	return model.NewDocument(m.key, result.Version(), model.DocumentStateCommittedMutations, m.value)
}

func (m SetMutation) ApplyToLocalView(maybeDoc, _ model.MaybeDocument, _ time.Time) model.MaybeDocument {
	m.verifyKeyMatches(maybeDoc)
	recordApply(kindSet, modeLocal)

	if !m.precondition.IsValidFor(maybeDoc) {
		recordPreconditionFailure(kindSet)
		return maybeDoc
	}
	return model.NewDocument(m.key, postMutationVersion(maybeDoc), model.DocumentStateLocalMutations, m.value)
}

func (m SetMutation) ExtractBaseValue(model.MaybeDocument) (model.Value, bool) {
	return model.Value{}, false
}

// Equal reports structural equality.
func (m SetMutation) Equal(other SetMutation) bool {
	return m.equalBase(other.base) && m.value.Equal(other.value)
}

// DeleteMutation removes the document.
type DeleteMutation struct {
	base
}

// NewDeleteMutation builds a delete mutation.
func NewDeleteMutation(key model.DocumentKey, precondition Precondition) DeleteMutation {
	return DeleteMutation{base: base{key: key, precondition: precondition}}
}

func (m DeleteMutation) ApplyToRemoteDocument(maybeDoc model.MaybeDocument, result MutationResult) model.MaybeDocument {
	m.verifyKeyMatches(maybeDoc)
	assert.Hard(result.TransformResults() == nil, "transform results received by delete mutation")
	recordApply(kindDelete, modeRemote)

	// The server accepted the delete, so the precondition held there
	// regardless of the local cache. The tombstone keeps the unknown version
	// until a watch update supplies the authoritative one.
	return model.NewNoDocument(m.key, model.SnapshotVersion{}, true)
}

func (m DeleteMutation) ApplyToLocalView(maybeDoc, _ model.MaybeDocument, _ time.Time) model.MaybeDocument {
	m.verifyKeyMatches(maybeDoc)
	recordApply(kindDelete, modeLocal)

	if !m.precondition.IsValidFor(maybeDoc) {
		recordPreconditionFailure(kindDelete)
		return maybeDoc
	}
	return model.NewNoDocument(m.key, model.SnapshotVersion{}, false)
}

func (m DeleteMutation) ExtractBaseValue(model.MaybeDocument) (model.Value, bool) {
	return model.Value{}, false
}

// Equal reports structural equality.
func (m DeleteMutation) Equal(other DeleteMutation) bool {
	return m.equalBase(other.base)
}

// VerifyMutation asserts a precondition at commit time without writing
// anything. It is only meaningful inside a transaction commit, so both
// application modes are contract violations.
type VerifyMutation struct {
	base
}

// NewVerifyMutation builds a verify mutation.
func NewVerifyMutation(key model.DocumentKey, precondition Precondition) VerifyMutation {
	return VerifyMutation{base: base{key: key, precondition: precondition}}
}

func (m VerifyMutation) ApplyToRemoteDocument(model.MaybeDocument, MutationResult) model.MaybeDocument {
	assert.Failf("verify mutations are only used in transactions")
	return nil
}

func (m VerifyMutation) ApplyToLocalView(_, _ model.MaybeDocument, _ time.Time) model.MaybeDocument {
	assert.Failf("verify mutations are only used in transactions")
	return nil
}

func (m VerifyMutation) ExtractBaseValue(model.MaybeDocument) (model.Value, bool) {
	return model.Value{}, false
}

// Equal reports structural equality.
func (m VerifyMutation) Equal(other VerifyMutation) bool {
	return m.equalBase(other.base)
}
