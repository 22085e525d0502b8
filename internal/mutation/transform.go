package mutation

import (
	"time"

	"github.com/example/localdoc-engine/internal/assert"
	"github.com/example/localdoc-engine/internal/model"
)

// FieldTransform pairs a transform operation with the field it targets.
type FieldTransform struct {
	path      model.FieldPath
	operation TransformOperation
}

// NewFieldTransform builds a field transform for a non-empty path.
func NewFieldTransform(path model.FieldPath, operation TransformOperation) FieldTransform {
	assert.Hard(!path.Empty(), "field transforms cannot target the document root")
	return FieldTransform{path: path, operation: operation}
}

// Path returns the targeted field path.
func (t FieldTransform) Path() model.FieldPath {
	return t.path
}

// Operation returns the transform operation.
func (t FieldTransform) Operation() TransformOperation {
	return t.operation
}

// Equal reports structural equality.
func (t FieldTransform) Equal(other FieldTransform) bool {
	return t.path.Equal(other.path) && t.operation.Equal(other.operation)
}

// TransformMutation applies an ordered list of field transforms to an
// existing document. Transforms only ever follow a write that created the
// document, so the precondition is always exists=true.
type TransformMutation struct {
	base
	fieldTransforms []FieldTransform
}

// NewTransformMutation builds a transform mutation.
func NewTransformMutation(key model.DocumentKey, fieldTransforms []FieldTransform) TransformMutation {
	return TransformMutation{
		base:            base{key: key, precondition: ExistsPrecondition(true)},
		fieldTransforms: append([]FieldTransform(nil), fieldTransforms...),
	}
}

// FieldTransforms returns the transforms in declaration order. Callers must
// not modify the slice.
func (m TransformMutation) FieldTransforms() []FieldTransform {
	return m.fieldTransforms
}

func (m TransformMutation) ApplyToRemoteDocument(maybeDoc model.MaybeDocument, result MutationResult) model.MaybeDocument {
	m.verifyKeyMatches(maybeDoc)
	assert.Hard(result.TransformResults() != nil, "transform mutation acknowledged without transform results")
	recordApply(kindTransform, modeRemote)

	if !m.precondition.IsValidFor(maybeDoc) {
		// The server accepted the write, so it had a document our cache
		// lacks. Only its existence at the commit version is known.
		recordPreconditionFailure(kindTransform)
		return model.NewUnknownDocument(m.key, result.Version())
	}

	doc := m.requireDocument(maybeDoc)
	transformResults := m.serverTransformResults(doc, result.TransformResults())
	newData := m.transformObject(doc.Data(), transformResults)
	return model.NewDocument(m.key, result.Version(), model.DocumentStateCommittedMutations, newData)
}

func (m TransformMutation) ApplyToLocalView(maybeDoc, baseDoc model.MaybeDocument, localWriteTime time.Time) model.MaybeDocument {
	m.verifyKeyMatches(maybeDoc)
	recordApply(kindTransform, modeLocal)

	if !m.precondition.IsValidFor(maybeDoc) {
		recordPreconditionFailure(kindTransform)
		return maybeDoc
	}

	doc := m.requireDocument(maybeDoc)
	transformResults := m.localTransformResults(localWriteTime, maybeDoc, baseDoc)
	newData := m.transformObject(doc.Data(), transformResults)
	return model.NewDocument(m.key, postMutationVersion(maybeDoc), model.DocumentStateLocalMutations, newData)
}

// ExtractBaseValue collects the base values of all transforms that need
// one, keyed by their field paths, so re-applying the mutation offline
// starts from the same point every time. It reports false when no transform
// needs a base value.
func (m TransformMutation) ExtractBaseValue(maybeDoc model.MaybeDocument) (model.Value, bool) {
	baseObject := model.Value{}
	found := false

	for _, fieldTransform := range m.fieldTransforms {
		var existing model.Value
		var hasExisting bool
		if doc, ok := maybeDoc.(model.Document); ok {
			existing, hasExisting = doc.Field(fieldTransform.path)
		}

		coerced, ok := fieldTransform.operation.ComputeBaseValue(existing, hasExisting)
		if !ok {
			continue
		}
		if !found {
			baseObject = model.EmptyMap()
			found = true
		}
		baseObject = baseObject.Set(fieldTransform.path, coerced)
	}
	return baseObject, found
}

// Equal reports structural equality.
func (m TransformMutation) Equal(other TransformMutation) bool {
	if !m.equalBase(other.base) || len(m.fieldTransforms) != len(other.fieldTransforms) {
		return false
	}
	for i := range m.fieldTransforms {
		if !m.fieldTransforms[i].Equal(other.fieldTransforms[i]) {
			return false
		}
	}
	return true
}

func (m TransformMutation) requireDocument(maybeDoc model.MaybeDocument) model.Document {
	doc, ok := maybeDoc.(model.Document)
	assert.Hard(ok, "transform mutation applied to non-document state %T", maybeDoc)
	return doc
}

// serverTransformResults pairs each field transform with the authoritative
// result value the server returned for it, applied against the server's
// base document.
func (m TransformMutation) serverTransformResults(baseDoc model.Document, serverResults []model.Value) []model.Value {
	assert.Hard(len(serverResults) == len(m.fieldTransforms),
		"server returned %d transform results for %d field transforms", len(serverResults), len(m.fieldTransforms))

	results := make([]model.Value, 0, len(m.fieldTransforms))
	for i, fieldTransform := range m.fieldTransforms {
		previous, hasPrevious := baseDoc.Field(fieldTransform.path)
		results = append(results, fieldTransform.operation.ApplyToRemoteDocument(previous, hasPrevious, serverResults[i]))
	}
	return results
}

// localTransformResults computes each transform's optimistic result. When
// the current view lacks a value for the field, the batch's base document
// supplies it: an intervening patch may have cleared the field that an
// earlier write in the batch produced, and the transform must still count
// from the value that existed before the batch.
func (m TransformMutation) localTransformResults(localWriteTime time.Time, maybeDoc, baseDoc model.MaybeDocument) []model.Value {
	results := make([]model.Value, 0, len(m.fieldTransforms))
	for _, fieldTransform := range m.fieldTransforms {
		var previous model.Value
		var hasPrevious bool
		if doc, ok := maybeDoc.(model.Document); ok {
			previous, hasPrevious = doc.Field(fieldTransform.path)
		}
		if !hasPrevious {
			if doc, ok := baseDoc.(model.Document); ok {
				previous, hasPrevious = doc.Field(fieldTransform.path)
			}
		}
		results = append(results, fieldTransform.operation.ApplyToLocalView(previous, hasPrevious, localWriteTime))
	}
	return results
}

func (m TransformMutation) transformObject(data model.Value, transformResults []model.Value) model.Value {
	assert.Hard(len(transformResults) == len(m.fieldTransforms),
		"got %d transform results for %d field transforms", len(transformResults), len(m.fieldTransforms))

	for i, fieldTransform := range m.fieldTransforms {
		data = data.Set(fieldTransform.path, transformResults[i])
	}
	return data
}
