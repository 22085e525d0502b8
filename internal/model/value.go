package model

import (
	"bytes"
	"encoding/hex"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/example/localdoc-engine/internal/assert"
)

// Kind enumerates the concrete value types a document field can hold.
type Kind uint8

const (
	KindNull Kind = iota
	KindBoolean
	KindInteger
	KindDouble
	KindTimestamp
	KindServerTimestamp
	KindString
	KindBytes
	KindReference
	KindGeoPoint
	KindArray
	KindMap
)

// Type order ranks used for cross-type comparison. The order is fixed by the
// backend; integers and doubles share the number rank.
const (
	TypeOrderNull      = 0
	TypeOrderBoolean   = 1
	TypeOrderNumber    = 2
	TypeOrderTimestamp = 3
	TypeOrderString    = 4
	TypeOrderBytes     = 5
	TypeOrderReference = 6
	TypeOrderGeoPoint  = 7
	TypeOrderArray     = 8
	TypeOrderMap       = 9
)

// GeoPoint is a geographical point value.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// Value is an immutable document field value. The zero value is Null. All
// structural edits return a new Value and share untouched subtrees with the
// receiver, so Values are safe to hold across calls without copying.
type Value struct {
	kind      Kind
	boolean   bool
	integer   int64
	double    float64
	timestamp time.Time
	str       string
	blob      []byte
	reference DocumentKey
	geo       GeoPoint
	array     []Value
	fields    map[string]Value
	previous  *Value
}

// Null returns the null value.
func Null() Value {
	return Value{kind: KindNull}
}

// Boolean returns a boolean value.
func Boolean(b bool) Value {
	return Value{kind: KindBoolean, boolean: b}
}

// Integer returns a 64-bit integer value.
func Integer(i int64) Value {
	return Value{kind: KindInteger, integer: i}
}

// Double returns a floating-point value.
func Double(d float64) Value {
	return Value{kind: KindDouble, double: d}
}

// Timestamp returns a timestamp value.
func Timestamp(t time.Time) Value {
	return Value{kind: KindTimestamp, timestamp: t}
}

// ServerTimestamp returns the sentinel for an uncommitted server-assigned
// write time. previous carries the value the field held before the write, if
// any, so the application can keep showing it until the write commits.
func ServerTimestamp(localWriteTime time.Time, previous *Value) Value {
	return Value{kind: KindServerTimestamp, timestamp: localWriteTime, previous: previous}
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Bytes returns a byte-blob value. The slice is copied.
func Bytes(b []byte) Value {
	return Value{kind: KindBytes, blob: append([]byte(nil), b...)}
}

// Reference returns a document-reference value.
func Reference(key DocumentKey) Value {
	return Value{kind: KindReference, reference: key}
}

// Geo returns a geographical point value.
func Geo(latitude, longitude float64) Value {
	return Value{kind: KindGeoPoint, geo: GeoPoint{Latitude: latitude, Longitude: longitude}}
}

// Array returns an array value holding the given elements in order. The
// slice is copied.
func Array(elements ...Value) Value {
	return Value{kind: KindArray, array: append([]Value(nil), elements...)}
}

// Map returns a map value holding the given fields. The map is copied.
func Map(fields map[string]Value) Value {
	copied := make(map[string]Value, len(fields))
	for name, value := range fields {
		copied[name] = value
	}
	return Value{kind: KindMap, fields: copied}
}

// EmptyMap returns a map value with no fields.
func EmptyMap() Value {
	return Value{kind: KindMap, fields: map[string]Value{}}
}

// Kind returns the concrete type of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// TypeOrder returns the backend comparison rank of the value.
func (v Value) TypeOrder() int {
	switch v.kind {
	case KindNull:
		return TypeOrderNull
	case KindBoolean:
		return TypeOrderBoolean
	case KindInteger, KindDouble:
		return TypeOrderNumber
	case KindTimestamp, KindServerTimestamp:
		return TypeOrderTimestamp
	case KindString:
		return TypeOrderString
	case KindBytes:
		return TypeOrderBytes
	case KindReference:
		return TypeOrderReference
	case KindGeoPoint:
		return TypeOrderGeoPoint
	case KindArray:
		return TypeOrderArray
	case KindMap:
		return TypeOrderMap
	}
	assert.Failf("unknown value kind %d", v.kind)
	return 0
}

// IsNumber reports whether the value is an integer or a double.
func (v Value) IsNumber() bool {
	return v.kind == KindInteger || v.kind == KindDouble
}

// IsInteger reports whether the value is an integer.
func (v Value) IsInteger() bool {
	return v.kind == KindInteger
}

// IsDouble reports whether the value is a double.
func (v Value) IsDouble() bool {
	return v.kind == KindDouble
}

// IsMap reports whether the value is a map.
func (v Value) IsMap() bool {
	return v.kind == KindMap
}

// BooleanValue returns the boolean payload.
func (v Value) BooleanValue() bool {
	assert.Hard(v.kind == KindBoolean, "BooleanValue called on kind %d", v.kind)
	return v.boolean
}

// IntegerValue returns the integer payload.
func (v Value) IntegerValue() int64 {
	assert.Hard(v.kind == KindInteger, "IntegerValue called on kind %d", v.kind)
	return v.integer
}

// DoubleValue returns the floating-point payload.
func (v Value) DoubleValue() float64 {
	assert.Hard(v.kind == KindDouble, "DoubleValue called on kind %d", v.kind)
	return v.double
}

// TimeValue returns the timestamp payload.
func (v Value) TimeValue() time.Time {
	assert.Hard(v.kind == KindTimestamp, "TimeValue called on kind %d", v.kind)
	return v.timestamp
}

// LocalWriteTime returns the local write time of a server-timestamp sentinel.
func (v Value) LocalWriteTime() time.Time {
	assert.Hard(v.kind == KindServerTimestamp, "LocalWriteTime called on kind %d", v.kind)
	return v.timestamp
}

// PreviousValue returns the value a server-timestamp sentinel replaced, if
// one was recorded.
func (v Value) PreviousValue() (Value, bool) {
	assert.Hard(v.kind == KindServerTimestamp, "PreviousValue called on kind %d", v.kind)
	if v.previous == nil {
		return Value{}, false
	}
	return *v.previous, true
}

// StringValue returns the string payload.
func (v Value) StringValue() string {
	assert.Hard(v.kind == KindString, "StringValue called on kind %d", v.kind)
	return v.str
}

// BytesValue returns the byte-blob payload. Callers must not modify it.
func (v Value) BytesValue() []byte {
	assert.Hard(v.kind == KindBytes, "BytesValue called on kind %d", v.kind)
	return v.blob
}

// ReferenceValue returns the document key of a reference value.
func (v Value) ReferenceValue() DocumentKey {
	assert.Hard(v.kind == KindReference, "ReferenceValue called on kind %d", v.kind)
	return v.reference
}

// GeoPointValue returns the geographical point payload.
func (v Value) GeoPointValue() GeoPoint {
	assert.Hard(v.kind == KindGeoPoint, "GeoPointValue called on kind %d", v.kind)
	return v.geo
}

// ArrayValue returns the elements of an array value. Callers must not modify
// the returned slice.
func (v Value) ArrayValue() []Value {
	assert.Hard(v.kind == KindArray, "ArrayValue called on kind %d", v.kind)
	return v.array
}

// MapValue returns the fields of a map value. Callers must not modify the
// returned map.
func (v Value) MapValue() map[string]Value {
	assert.Hard(v.kind == KindMap, "MapValue called on kind %d", v.kind)
	return v.fields
}

// Compare orders two values: across ranks strictly by type order, within a
// rank by the type-specific rule. Server-timestamp sentinels only compare
// against each other (by local write time); mixing one into an ordering
// against any other kind is a contract violation upstream.
func (v Value) Compare(other Value) int {
	if v.kind == KindServerTimestamp || other.kind == KindServerTimestamp {
		assert.Hard(v.kind == other.kind,
			"server timestamp sentinel compared against kind %d", otherKind(v, other))
		return compareTimes(v.timestamp, other.timestamp)
	}

	leftOrder, rightOrder := v.TypeOrder(), other.TypeOrder()
	if leftOrder != rightOrder {
		return compareInts(leftOrder, rightOrder)
	}

	switch leftOrder {
	case TypeOrderNull:
		return 0
	case TypeOrderBoolean:
		return compareBooleans(v.boolean, other.boolean)
	case TypeOrderNumber:
		return compareNumbers(v, other)
	case TypeOrderTimestamp:
		return compareTimes(v.timestamp, other.timestamp)
	case TypeOrderString:
		return strings.Compare(v.str, other.str)
	case TypeOrderBytes:
		return bytes.Compare(v.blob, other.blob)
	case TypeOrderReference:
		return v.reference.Compare(other.reference)
	case TypeOrderGeoPoint:
		if cmp := compareDoubles(v.geo.Latitude, other.geo.Latitude); cmp != 0 {
			return cmp
		}
		return compareDoubles(v.geo.Longitude, other.geo.Longitude)
	case TypeOrderArray:
		return compareArrays(v.array, other.array)
	case TypeOrderMap:
		return compareMaps(v.fields, other.fields)
	}
	assert.Failf("unhandled type order %d", leftOrder)
	return 0
}

// Equal reports deep structural equality. Integers and doubles live in one
// numeric domain, so Integer(1) equals Double(1).
func (v Value) Equal(other Value) bool {
	if v.kind == KindServerTimestamp || other.kind == KindServerTimestamp {
		if v.kind != other.kind {
			return false
		}
		return v.timestamp.Equal(other.timestamp)
	}
	if v.TypeOrder() != other.TypeOrder() {
		return false
	}
	return v.Compare(other) == 0
}

// Field returns the value at path. The empty path addresses the value
// itself. The result is absent when any traversed segment is missing or sits
// under a non-map value.
func (v Value) Field(path FieldPath) (Value, bool) {
	current := v
	for _, segment := range path {
		if current.kind != KindMap {
			return Value{}, false
		}
		child, ok := current.fields[segment]
		if !ok {
			return Value{}, false
		}
		current = child
	}
	return current, true
}

// Set returns a copy of the value with path set to value, creating
// intermediate maps as needed and replacing any non-map encountered along
// the path. Setting the empty path replaces the whole value.
func (v Value) Set(path FieldPath, value Value) Value {
	if path.Empty() {
		return value
	}

	head, rest := path[0], path[1:]
	child := value
	if !rest.Empty() {
		base := EmptyMap()
		if existing, ok := v.childMap(head); ok {
			base = existing
		}
		child = base.Set(rest, value)
	}

	fields := make(map[string]Value, len(v.mapFields())+1)
	for name, existing := range v.mapFields() {
		fields[name] = existing
	}
	fields[head] = child
	return Value{kind: KindMap, fields: fields}
}

// Delete returns a copy of the value with the leaf at path removed. Missing
// paths are a no-op; intermediate maps along the path are never removed.
func (v Value) Delete(path FieldPath) Value {
	assert.Hard(!path.Empty(), "cannot delete the document root")
	if v.kind != KindMap {
		return v
	}

	head, rest := path[0], path[1:]
	existing, ok := v.fields[head]
	if !ok {
		return v
	}

	if rest.Empty() {
		fields := make(map[string]Value, len(v.fields))
		for name, value := range v.fields {
			if name != head {
				fields[name] = value
			}
		}
		return Value{kind: KindMap, fields: fields}
	}

	if existing.kind != KindMap {
		return v
	}
	fields := make(map[string]Value, len(v.fields))
	for name, value := range v.fields {
		fields[name] = value
	}
	fields[head] = existing.Delete(rest)
	return Value{kind: KindMap, fields: fields}
}

// String renders a deterministic canonical form. The surrounding layers use
// these renderings as parts of cache keys, so the format must stay stable.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBoolean:
		return strconv.FormatBool(v.boolean)
	case KindInteger:
		return strconv.FormatInt(v.integer, 10)
	case KindDouble:
		return strconv.FormatFloat(v.double, 'g', -1, 64)
	case KindTimestamp:
		return v.timestamp.UTC().Format(time.RFC3339Nano)
	case KindServerTimestamp:
		return "<server-timestamp:" + v.timestamp.UTC().Format(time.RFC3339Nano) + ">"
	case KindString:
		return strconv.Quote(v.str)
	case KindBytes:
		return hex.EncodeToString(v.blob)
	case KindReference:
		return v.reference.String()
	case KindGeoPoint:
		return "geo(" + strconv.FormatFloat(v.geo.Latitude, 'g', -1, 64) + "," +
			strconv.FormatFloat(v.geo.Longitude, 'g', -1, 64) + ")"
	case KindArray:
		parts := make([]string, len(v.array))
		for i, element := range v.array {
			parts[i] = element.String()
		}
		return "[" + strings.Join(parts, ",") + "]"
	case KindMap:
		names := sortedFieldNames(v.fields)
		parts := make([]string, len(names))
		for i, name := range names {
			parts[i] = name + ":" + v.fields[name].String()
		}
		return "{" + strings.Join(parts, ",") + "}"
	}
	assert.Failf("unknown value kind %d", v.kind)
	return ""
}

func (v Value) childMap(name string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	child, ok := v.fields[name]
	if !ok || child.kind != KindMap {
		return Value{}, false
	}
	return child, true
}

func (v Value) mapFields() map[string]Value {
	if v.kind != KindMap {
		return nil
	}
	return v.fields
}

func otherKind(v, other Value) Kind {
	if v.kind == KindServerTimestamp {
		return other.kind
	}
	return v.kind
}

func compareInts(x, y int) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func compareBooleans(x, y bool) int {
	switch {
	case !x && y:
		return -1
	case x && !y:
		return 1
	}
	return 0
}

func compareTimes(x, y time.Time) int {
	switch {
	case x.Before(y):
		return -1
	case x.After(y):
		return 1
	}
	return 0
}

// compareNumbers orders integers and doubles as one numeric domain. NaN
// sorts before every other number and equals itself.
func compareNumbers(x, y Value) int {
	if x.kind == KindInteger && y.kind == KindInteger {
		switch {
		case x.integer < y.integer:
			return -1
		case x.integer > y.integer:
			return 1
		}
		return 0
	}
	return compareDoubles(x.asDouble(), y.asDouble())
}

func compareDoubles(x, y float64) int {
	if math.IsNaN(x) {
		if math.IsNaN(y) {
			return 0
		}
		return -1
	}
	if math.IsNaN(y) {
		return 1
	}
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func (v Value) asDouble() float64 {
	if v.kind == KindInteger {
		return float64(v.integer)
	}
	return v.double
}

func compareArrays(x, y []Value) int {
	for i := 0; i < len(x) && i < len(y); i++ {
		if cmp := x[i].Compare(y[i]); cmp != 0 {
			return cmp
		}
	}
	return compareInts(len(x), len(y))
}

func compareMaps(x, y map[string]Value) int {
	xNames, yNames := sortedFieldNames(x), sortedFieldNames(y)
	for i := 0; i < len(xNames) && i < len(yNames); i++ {
		if cmp := strings.Compare(xNames[i], yNames[i]); cmp != 0 {
			return cmp
		}
		if cmp := x[xNames[i]].Compare(y[yNames[i]]); cmp != 0 {
			return cmp
		}
	}
	return compareInts(len(xNames), len(yNames))
}

func sortedFieldNames(fields map[string]Value) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
