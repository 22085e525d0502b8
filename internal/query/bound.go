package query

import (
	"strings"

	"github.com/example/localdoc-engine/internal/assert"
	"github.com/example/localdoc-engine/internal/model"
)

// Bound is a cursor position in an ordered result set: a prefix of values
// aligned to the query's order-by keys, plus a flag selecting the edge just
// before or just after that position. The before flag is what distinguishes
// start-at from start-after and end-at from end-before cursors.
type Bound struct {
	position []model.Value
	before   bool
}

// NewBound builds a bound at position. The slice is copied.
func NewBound(position []model.Value, before bool) Bound {
	return Bound{position: append([]model.Value(nil), position...), before: before}
}

// Position returns the bound's component values. Callers must not modify
// the slice.
func (b Bound) Position() []model.Value {
	return b.position
}

// Before reports whether the bound sits just before its position.
func (b Bound) Before() bool {
	return b.before
}

// CanonicalString returns a deterministic rendering used by the surrounding
// layers as a cache/index key, so the format must stay stable.
// TODO: make the rendering collision robust.
func (b Bound) CanonicalString() string {
	var builder strings.Builder
	if b.before {
		builder.WriteString("b:")
	} else {
		builder.WriteString("a:")
	}
	for _, component := range b.position {
		builder.WriteString(component.String())
	}
	return builder.String()
}

// SortsBeforeDocument reports whether a document comes after this bound
// under the given sort order, i.e. whether the bound admits it as a start
// cursor. Callers guarantee the document already matched the query, so every
// referenced order-by field exists.
func (b Bound) SortsBeforeDocument(orderBy []OrderBy, doc model.Document) bool {
	assert.Hard(len(b.position) <= len(orderBy), "bound has more components than the query's order by")
	recordBoundComparison()

	comparison := 0
	for i, component := range b.position {
		key := orderBy[i]
		if key.Field.Equal(model.KeyFieldPath) {
			assert.Hard(component.Kind() == model.KindReference,
				"bound has a non-key value where the key path is used: %s", component)
			comparison = strings.Compare(component.ReferenceValue().String(), doc.Key().String())
		} else {
			docValue, ok := doc.Field(key.Field)
			assert.Hard(ok, "field %s should exist since the document matched the order by", key.Field)
			comparison = component.Compare(docValue)
		}

		if key.Direction == Descending {
			comparison = -comparison
		}
		if comparison != 0 {
			break
		}
	}

	if b.before {
		return comparison <= 0
	}
	return comparison < 0
}

// Equal reports structural equality.
func (b Bound) Equal(other Bound) bool {
	if b.before != other.before || len(b.position) != len(other.position) {
		return false
	}
	for i := range b.position {
		if !b.position[i].Equal(other.position[i]) {
			return false
		}
	}
	return true
}
