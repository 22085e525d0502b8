package mutation

import (
	"math"
	"time"

	"github.com/example/localdoc-engine/internal/assert"
	"github.com/example/localdoc-engine/internal/model"
)

// TransformOperation is a non-overwriting write primitive whose result can
// depend on the field's current value. hasPrevious distinguishes an absent
// field from one holding the zero Value.
type TransformOperation interface {
	// ApplyToLocalView computes the optimistic result of the transform on
	// the field's previous value before the server acknowledges it.
	ApplyToLocalView(previous model.Value, hasPrevious bool, localWriteTime time.Time) model.Value

	// ApplyToRemoteDocument computes the confirmed result of the transform
	// given the server's authoritative result value for it.
	ApplyToRemoteDocument(previous model.Value, hasPrevious bool, transformResult model.Value) model.Value

	// ComputeBaseValue returns the value to treat as the transform's
	// starting point for idempotent local re-application, or false when the
	// transform needs no base value.
	ComputeBaseValue(previous model.Value, hasPrevious bool) (model.Value, bool)

	// Equal reports structural equality against another operation.
	Equal(other TransformOperation) bool
}

// ServerTimestampOperation stamps a field with the server's commit time.
type ServerTimestampOperation struct{}

func (ServerTimestampOperation) ApplyToLocalView(previous model.Value, hasPrevious bool, localWriteTime time.Time) model.Value {
	var prev *model.Value
	if hasPrevious {
		prev = &previous
	}
	return model.ServerTimestamp(localWriteTime, prev)
}

func (ServerTimestampOperation) ApplyToRemoteDocument(_ model.Value, _ bool, transformResult model.Value) model.Value {
	return transformResult
}

func (ServerTimestampOperation) ComputeBaseValue(model.Value, bool) (model.Value, bool) {
	return model.Value{}, false
}

func (ServerTimestampOperation) Equal(other TransformOperation) bool {
	_, ok := other.(ServerTimestampOperation)
	return ok
}

// NumericIncrementOperation adds a numeric operand to the field's value,
// mirroring the backend's NUMERIC_ADD semantics: integer sums saturate at
// the int64 bounds, any double involvement makes the result a double.
type NumericIncrementOperation struct {
	operand model.Value
}

// NewNumericIncrementOperation builds an increment by operand, which must be
// an integer or double value.
func NewNumericIncrementOperation(operand model.Value) NumericIncrementOperation {
	assert.Hard(operand.IsNumber(), "increment operand must be numeric, got kind %d", operand.Kind())
	return NumericIncrementOperation{operand: operand}
}

// Operand returns the value added by this operation.
func (o NumericIncrementOperation) Operand() model.Value {
	return o.operand
}

// ComputeBaseValue keeps an already numeric previous value and coerces
// anything else, including absence, to integer zero, so a local increment on
// a missing or non-numeric field counts from zero like the backend does.
func (o NumericIncrementOperation) ComputeBaseValue(previous model.Value, hasPrevious bool) (model.Value, bool) {
	if hasPrevious && previous.IsNumber() {
		return previous, true
	}
	return model.Integer(0), true
}

func (o NumericIncrementOperation) ApplyToLocalView(previous model.Value, hasPrevious bool, _ time.Time) model.Value {
	baseValue, _ := o.ComputeBaseValue(previous, hasPrevious)

	// The sum stays an integer only when both the base and the operand are.
	if baseValue.IsInteger() && o.operand.IsInteger() {
		return model.Integer(safeIncrement(baseValue.IntegerValue(), o.operandAsInteger()))
	}
	if baseValue.IsInteger() {
		return model.Double(float64(baseValue.IntegerValue()) + o.operandAsDouble())
	}
	assert.Hard(baseValue.IsDouble(), "expected base value to be a double, got kind %d", baseValue.Kind())
	return model.Double(baseValue.DoubleValue() + o.operandAsDouble())
}

// ApplyToRemoteDocument returns the server's sum verbatim; the client never
// recomputes a committed increment.
func (o NumericIncrementOperation) ApplyToRemoteDocument(_ model.Value, _ bool, transformResult model.Value) model.Value {
	return transformResult
}

func (o NumericIncrementOperation) Equal(other TransformOperation) bool {
	inc, ok := other.(NumericIncrementOperation)
	return ok && o.operand.Equal(inc.operand)
}

func (o NumericIncrementOperation) operandAsInteger() int64 {
	switch {
	case o.operand.IsInteger():
		return o.operand.IntegerValue()
	case o.operand.IsDouble():
		return int64(o.operand.DoubleValue())
	}
	assert.Failf("increment operand is not numeric: kind %d", o.operand.Kind())
	return 0
}

func (o NumericIncrementOperation) operandAsDouble() float64 {
	switch {
	case o.operand.IsDouble():
		return o.operand.DoubleValue()
	case o.operand.IsInteger():
		return float64(o.operand.IntegerValue())
	}
	assert.Failf("increment operand is not numeric: kind %d", o.operand.Kind())
	return 0
}

// safeIncrement adds two int64 values, saturating to the int64 bounds
// instead of wrapping. See Hacker's Delight 2-12: overflow occurred iff both
// arguments have the opposite sign of the wrapped result.
func safeIncrement(x, y int64) int64 {
	r := x + y
	if ((x ^ r) & (y ^ r)) >= 0 {
		return r
	}
	if r >= 0 {
		return math.MinInt64
	}
	return math.MaxInt64
}

// ArrayUnionOperation appends each operand element not already present in
// the field's array, preserving first-occurrence order.
type ArrayUnionOperation struct {
	elements []model.Value
}

// NewArrayUnionOperation builds a union of elements.
func NewArrayUnionOperation(elements ...model.Value) ArrayUnionOperation {
	return ArrayUnionOperation{elements: append([]model.Value(nil), elements...)}
}

// Elements returns the operand elements.
func (o ArrayUnionOperation) Elements() []model.Value {
	return o.elements
}

func (o ArrayUnionOperation) ApplyToLocalView(previous model.Value, hasPrevious bool, _ time.Time) model.Value {
	return o.apply(previous, hasPrevious)
}

// ApplyToRemoteDocument recomputes the union locally: the server sends no
// usable result value for array transforms, so both modes are identical.
func (o ArrayUnionOperation) ApplyToRemoteDocument(previous model.Value, hasPrevious bool, _ model.Value) model.Value {
	return o.apply(previous, hasPrevious)
}

// ComputeBaseValue reports no base value; array transforms are idempotent.
func (o ArrayUnionOperation) ComputeBaseValue(model.Value, bool) (model.Value, bool) {
	return model.Value{}, false
}

func (o ArrayUnionOperation) Equal(other TransformOperation) bool {
	union, ok := other.(ArrayUnionOperation)
	return ok && elementsEqual(o.elements, union.elements)
}

func (o ArrayUnionOperation) apply(previous model.Value, hasPrevious bool) model.Value {
	result := coercedArray(previous, hasPrevious)
	for _, element := range o.elements {
		if !containsElement(result, element) {
			result = append(result, element)
		}
	}
	return model.Array(result...)
}

// ArrayRemoveOperation removes every element of the field's array that is
// deeply equal to any operand element.
type ArrayRemoveOperation struct {
	elements []model.Value
}

// NewArrayRemoveOperation builds a removal of elements.
func NewArrayRemoveOperation(elements ...model.Value) ArrayRemoveOperation {
	return ArrayRemoveOperation{elements: append([]model.Value(nil), elements...)}
}

// Elements returns the operand elements.
func (o ArrayRemoveOperation) Elements() []model.Value {
	return o.elements
}

func (o ArrayRemoveOperation) ApplyToLocalView(previous model.Value, hasPrevious bool, _ time.Time) model.Value {
	return o.apply(previous, hasPrevious)
}

// ApplyToRemoteDocument recomputes the removal locally, like ArrayUnion.
func (o ArrayRemoveOperation) ApplyToRemoteDocument(previous model.Value, hasPrevious bool, _ model.Value) model.Value {
	return o.apply(previous, hasPrevious)
}

// ComputeBaseValue reports no base value; array transforms are idempotent.
func (o ArrayRemoveOperation) ComputeBaseValue(model.Value, bool) (model.Value, bool) {
	return model.Value{}, false
}

func (o ArrayRemoveOperation) Equal(other TransformOperation) bool {
	remove, ok := other.(ArrayRemoveOperation)
	return ok && elementsEqual(o.elements, remove.elements)
}

func (o ArrayRemoveOperation) apply(previous model.Value, hasPrevious bool) model.Value {
	coerced := coercedArray(previous, hasPrevious)
	result := make([]model.Value, 0, len(coerced))
	for _, existing := range coerced {
		if !containsElement(o.elements, existing) {
			result = append(result, existing)
		}
	}
	return model.Array(result...)
}

// coercedArray returns a mutable copy of the previous value's elements when
// it is an array, and an empty slice for absence or any other kind.
func coercedArray(previous model.Value, hasPrevious bool) []model.Value {
	if hasPrevious && previous.Kind() == model.KindArray {
		return append([]model.Value(nil), previous.ArrayValue()...)
	}
	return nil
}

func containsElement(elements []model.Value, candidate model.Value) bool {
	for _, element := range elements {
		if element.Equal(candidate) {
			return true
		}
	}
	return false
}

func elementsEqual(x, y []model.Value) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if !x[i].Equal(y[i]) {
			return false
		}
	}
	return true
}
