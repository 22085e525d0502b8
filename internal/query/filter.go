// Package query evaluates filter predicates and cursor bounds against
// materialized documents, so result-set membership and pagination slicing
// work without consulting the network.
package query

import (
	"github.com/example/localdoc-engine/internal/assert"
	"github.com/example/localdoc-engine/internal/model"
)

// Operator enumerates the filter comparison operators.
type Operator string

const (
	OperatorLessThan           Operator = "<"
	OperatorLessThanOrEqual    Operator = "<="
	OperatorEqual              Operator = "=="
	OperatorNotEqual           Operator = "!="
	OperatorGreaterThan        Operator = ">"
	OperatorGreaterThanOrEqual Operator = ">="
	OperatorArrayContains      Operator = "array-contains"
	OperatorArrayContainsAny   Operator = "array-contains-any"
	OperatorIn                 Operator = "in"
	OperatorNotIn              Operator = "not-in"
)

// Filter decides whether a document belongs to a query's result set.
type Filter interface {
	Field() model.FieldPath
	Matches(doc model.Document) bool
}

// NewFieldFilter builds the filter variant for the given operator. Operand
// values for array-contains-any, in and not-in must be array values.
func NewFieldFilter(field model.FieldPath, op Operator, value model.Value) Filter {
	switch op {
	case OperatorArrayContains:
		return ArrayContainsFilter{FieldFilter{field: field, op: op, value: value}}
	case OperatorArrayContainsAny:
		assertArrayOperand(op, value)
		return ArrayContainsAnyFilter{FieldFilter{field: field, op: op, value: value}}
	case OperatorIn:
		assertArrayOperand(op, value)
		return InFilter{FieldFilter{field: field, op: op, value: value}}
	case OperatorNotIn:
		assertArrayOperand(op, value)
		return NotInFilter{FieldFilter{field: field, op: op, value: value}}
	case OperatorNotEqual:
		return NotEqualFilter{FieldFilter{field: field, op: op, value: value}}
	case OperatorLessThan, OperatorLessThanOrEqual, OperatorEqual, OperatorGreaterThan, OperatorGreaterThanOrEqual:
		return FieldFilter{field: field, op: op, value: value}
	}
	assert.Failf("unknown filter operator %q", op)
	return nil
}

func assertArrayOperand(op Operator, value model.Value) {
	assert.Hard(value.Kind() == model.KindArray, "%s filters require an array operand, got kind %d", op, value.Kind())
}

// FieldFilter implements the equality and ordering operators. An absent
// field never matches; absence is not a value. Ordering operators only
// match values of the filter operand's type rank.
type FieldFilter struct {
	field model.FieldPath
	op    Operator
	value model.Value
}

func (f FieldFilter) Field() model.FieldPath {
	return f.field
}

// Operator returns the filter's comparison operator.
func (f FieldFilter) Operator() Operator {
	return f.op
}

// Value returns the filter's operand value.
func (f FieldFilter) Value() model.Value {
	return f.value
}

func (f FieldFilter) Matches(doc model.Document) bool {
	docValue, ok := doc.Field(f.field)
	if !ok {
		return evaluated(f.op, false)
	}
	if docValue.TypeOrder() != f.value.TypeOrder() {
		return evaluated(f.op, false)
	}
	return evaluated(f.op, f.matchesComparison(docValue.Compare(f.value)))
}

func (f FieldFilter) matchesComparison(comparison int) bool {
	switch f.op {
	case OperatorLessThan:
		return comparison < 0
	case OperatorLessThanOrEqual:
		return comparison <= 0
	case OperatorEqual:
		return comparison == 0
	case OperatorGreaterThan:
		return comparison > 0
	case OperatorGreaterThanOrEqual:
		return comparison >= 0
	}
	assert.Failf("operator %q cannot be evaluated by comparison", f.op)
	return false
}

// NotEqualFilter matches present fields whose value differs from the
// operand. Values of different type ranks are always unequal.
type NotEqualFilter struct {
	FieldFilter
}

func (f NotEqualFilter) Matches(doc model.Document) bool {
	docValue, ok := doc.Field(f.field)
	return evaluated(f.op, ok && !docValue.Equal(f.value))
}

// ArrayContainsFilter matches array fields holding an element deeply equal
// to the operand.
type ArrayContainsFilter struct {
	FieldFilter
}

func (f ArrayContainsFilter) Matches(doc model.Document) bool {
	docValue, ok := doc.Field(f.field)
	if !ok || docValue.Kind() != model.KindArray {
		return evaluated(f.op, false)
	}
	return evaluated(f.op, containsValue(docValue.ArrayValue(), f.value))
}

// ArrayContainsAnyFilter matches array fields sharing at least one element
// with the operand array. Membership is a pairwise deep-equality scan; both
// sides are capped by the backend's array size limits.
type ArrayContainsAnyFilter struct {
	FieldFilter
}

func (f ArrayContainsAnyFilter) Matches(doc model.Document) bool {
	docValue, ok := doc.Field(f.field)
	if !ok || docValue.Kind() != model.KindArray {
		return evaluated(f.op, false)
	}
	operands := f.value.ArrayValue()
	for _, element := range docValue.ArrayValue() {
		if containsValue(operands, element) {
			return evaluated(f.op, true)
		}
	}
	return evaluated(f.op, false)
}

// InFilter matches present fields whose value equals any element of the
// operand array.
type InFilter struct {
	FieldFilter
}

func (f InFilter) Matches(doc model.Document) bool {
	docValue, ok := doc.Field(f.field)
	return evaluated(f.op, ok && containsValue(f.value.ArrayValue(), docValue))
}

// NotInFilter matches present fields whose value equals no element of the
// operand array.
type NotInFilter struct {
	FieldFilter
}

func (f NotInFilter) Matches(doc model.Document) bool {
	docValue, ok := doc.Field(f.field)
	return evaluated(f.op, ok && !containsValue(f.value.ArrayValue(), docValue))
}

func containsValue(elements []model.Value, candidate model.Value) bool {
	for _, element := range elements {
		if element.Equal(candidate) {
			return true
		}
	}
	return false
}
