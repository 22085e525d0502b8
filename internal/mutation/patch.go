package mutation

import (
	"time"

	"github.com/example/localdoc-engine/internal/assert"
	"github.com/example/localdoc-engine/internal/model"
)

// PatchMutation updates the document fields named by a mask:
//
//   - a field in both the mask and the value is set to the value's entry,
//   - a field in the mask but absent from the value is deleted,
//   - a field in neither is left untouched,
//   - entries of the value outside the mask are ignored.
type PatchMutation struct {
	base
	value model.Value
	mask  model.FieldMask
}

// NewPatchMutation builds a patch mutation. value must be a map value.
func NewPatchMutation(key model.DocumentKey, value model.Value, mask model.FieldMask, precondition Precondition) PatchMutation {
	assert.Hard(value.IsMap(), "patch mutation value must be a map, got kind %d", value.Kind())
	return PatchMutation{base: base{key: key, precondition: precondition}, value: value, mask: mask}
}

// Value returns the fields and values to use when patching.
func (m PatchMutation) Value() model.Value {
	return m.value
}

// Mask returns the field mask delimiting which entries of Value take effect.
func (m PatchMutation) Mask() model.FieldMask {
	return m.mask
}

func (m PatchMutation) ApplyToRemoteDocument(maybeDoc model.MaybeDocument, result MutationResult) model.MaybeDocument {
	m.verifyKeyMatches(maybeDoc)
	assert.Hard(result.TransformResults() == nil, "transform results received by patch mutation")
	recordApply(kindPatch, modeRemote)

	if !m.precondition.IsValidFor(maybeDoc) {
		// The server accepted the write, so the precondition held there and
		// the locally cached base must be stale. Record existence at the
		// commit version instead of patching stale contents.
		recordPreconditionFailure(kindPatch)
		return model.NewUnknownDocument(m.key, result.Version())
	}

	newData := m.patchDocument(maybeDoc)
	return model.NewDocument(m.key, result.Version(), model.DocumentStateCommittedMutations, newData)
}

func (m PatchMutation) ApplyToLocalView(maybeDoc, _ model.MaybeDocument, _ time.Time) model.MaybeDocument {
	m.verifyKeyMatches(maybeDoc)
	recordApply(kindPatch, modeLocal)

	if !m.precondition.IsValidFor(maybeDoc) {
		recordPreconditionFailure(kindPatch)
		return maybeDoc
	}
	newData := m.patchDocument(maybeDoc)
	return model.NewDocument(m.key, postMutationVersion(maybeDoc), model.DocumentStateLocalMutations, newData)
}

func (m PatchMutation) ExtractBaseValue(model.MaybeDocument) (model.Value, bool) {
	return model.Value{}, false
}

// Equal reports structural equality.
func (m PatchMutation) Equal(other PatchMutation) bool {
	return m.equalBase(other.base) && m.value.Equal(other.value) && m.mask.Equal(other.mask)
}

// patchDocument patches the document's data if available, or an empty map
// otherwise. Precondition checking is the caller's responsibility.
func (m PatchMutation) patchDocument(maybeDoc model.MaybeDocument) model.Value {
	data := model.EmptyMap()
	if doc, ok := maybeDoc.(model.Document); ok {
		data = doc.Data()
	}

	for _, path := range m.mask.Paths() {
		if path.Empty() {
			continue
		}
		if newValue, ok := m.value.Field(path); ok {
			data = data.Set(path, newValue)
		} else {
			data = data.Delete(path)
		}
	}
	return data
}
