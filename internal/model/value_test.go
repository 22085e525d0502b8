package model

import (
	"math"
	"testing"
	"time"
)

func TestTypeOrderRanksCrossTypeComparison(t *testing.T) {
	// One representative per rank, in ascending backend order.
	ladder := []Value{
		Null(),
		Boolean(true),
		Integer(7),
		Timestamp(time.Unix(100, 0)),
		String("a"),
		Bytes([]byte{0x01}),
		Reference(DocumentKeyFromPath("rooms/eros")),
		Geo(1, 2),
		Array(Integer(1)),
		Map(map[string]Value{"a": Integer(1)}),
	}

	for i := range ladder {
		for j := range ladder {
			got := ladder[i].Compare(ladder[j])
			want := compareInts(i, j)
			if got != want {
				t.Fatalf("compare(%v, %v) = %d, want %d", ladder[i], ladder[j], got, want)
			}
		}
	}
}

func TestCompareNumbersUnifiesIntegersAndDoubles(t *testing.T) {
	cases := []struct {
		left, right Value
		want        int
	}{
		{Integer(1), Integer(2), -1},
		{Integer(2), Integer(2), 0},
		{Integer(3), Double(2.5), 1},
		{Double(1.5), Integer(2), -1},
		{Integer(1), Double(1.0), 0},
		{Double(math.NaN()), Double(-math.MaxFloat64), -1},
		{Double(math.NaN()), Double(math.NaN()), 0},
		{Double(math.Inf(1)), Integer(math.MaxInt64), 1},
	}

	for _, tc := range cases {
		if got := tc.left.Compare(tc.right); got != tc.want {
			t.Fatalf("compare(%v, %v) = %d, want %d", tc.left, tc.right, got, tc.want)
		}
	}
}

func TestCompareWithinRanks(t *testing.T) {
	cases := []struct {
		name        string
		left, right Value
		want        int
	}{
		{"booleans", Boolean(false), Boolean(true), -1},
		{"strings", String("abc"), String("abd"), -1},
		{"bytes by content", Bytes([]byte{0x01, 0x02}), Bytes([]byte{0x01, 0x03}), -1},
		{"bytes by length", Bytes([]byte{0x01}), Bytes([]byte{0x01, 0x00}), -1},
		{"timestamps", Timestamp(time.Unix(1, 0)), Timestamp(time.Unix(2, 0)), -1},
		{"references", Reference(DocumentKeyFromPath("rooms/eros")), Reference(DocumentKeyFromPath("rooms/other")), -1},
		{"geo latitude first", Geo(1, 9), Geo(2, 0), -1},
		{"geo longitude second", Geo(1, 1), Geo(1, 2), -1},
		{"arrays elementwise", Array(Integer(1), Integer(2)), Array(Integer(1), Integer(3)), -1},
		{"arrays by length", Array(Integer(1)), Array(Integer(1), Integer(0)), -1},
		{"maps by field name", Map(map[string]Value{"a": Integer(1)}), Map(map[string]Value{"b": Integer(0)}), -1},
		{"maps by value", Map(map[string]Value{"a": Integer(1)}), Map(map[string]Value{"a": Integer(2)}), -1},
		{"maps by size", Map(map[string]Value{"a": Integer(1)}), Map(map[string]Value{"a": Integer(1), "b": Integer(0)}), -1},
	}

	for _, tc := range cases {
		if got := tc.left.Compare(tc.right); got != tc.want {
			t.Fatalf("%s: compare = %d, want %d", tc.name, got, tc.want)
		}
		if got := tc.right.Compare(tc.left); got != -tc.want {
			t.Fatalf("%s: reversed compare = %d, want %d", tc.name, got, -tc.want)
		}
		if got := tc.left.Compare(tc.left); got != 0 {
			t.Fatalf("%s: self compare = %d, want 0", tc.name, got)
		}
	}
}

func TestEqualTreatsNumbersAsOneDomain(t *testing.T) {
	if !Integer(1).Equal(Double(1.0)) {
		t.Fatalf("expected Integer(1) to equal Double(1.0)")
	}
	if Integer(1).Equal(String("1")) {
		t.Fatalf("expected Integer(1) not to equal String(\"1\")")
	}
	if !Map(map[string]Value{"a": Array(Integer(1))}).Equal(Map(map[string]Value{"a": Array(Double(1))})) {
		t.Fatalf("expected nested numeric values to compare equal")
	}
}

func TestSetThenFieldRoundTrips(t *testing.T) {
	paths := []FieldPath{
		NewFieldPath("a"),
		NewFieldPath("a", "b"),
		NewFieldPath("x", "y", "z"),
	}
	base := Map(map[string]Value{"a": String("old"), "keep": Integer(9)})

	for _, path := range paths {
		updated := base.Set(path, Integer(42))
		got, ok := updated.Field(path)
		if !ok || !got.Equal(Integer(42)) {
			t.Fatalf("Set(%s) then Field: got %v, ok=%v", path, got, ok)
		}

		deleted := updated.Delete(path)
		if _, ok := deleted.Field(path); ok {
			t.Fatalf("Delete(%s) left the field in place", path)
		}
		if kept, ok := deleted.Field(NewFieldPath("keep")); !ok || !kept.Equal(Integer(9)) {
			t.Fatalf("Delete(%s) disturbed an unrelated field", path)
		}
	}
}

func TestSetDoesNotMutateReceiver(t *testing.T) {
	base := Map(map[string]Value{"a": Map(map[string]Value{"b": Integer(1)})})
	base.Set(NewFieldPath("a", "b"), Integer(2))
	base.Delete(NewFieldPath("a", "b"))

	got, ok := base.Field(NewFieldPath("a", "b"))
	if !ok || !got.Equal(Integer(1)) {
		t.Fatalf("receiver changed: got %v, ok=%v", got, ok)
	}
}

func TestSetReplacesNonMapIntermediates(t *testing.T) {
	base := Map(map[string]Value{"a": Integer(5)})
	updated := base.Set(NewFieldPath("a", "b"), String("deep"))

	got, ok := updated.Field(NewFieldPath("a", "b"))
	if !ok || !got.Equal(String("deep")) {
		t.Fatalf("expected intermediate to be replaced by a map, got %v, ok=%v", got, ok)
	}
}

func TestDeleteIsNoOpForMissingPaths(t *testing.T) {
	base := Map(map[string]Value{"a": Map(map[string]Value{"b": Integer(1)})})

	for _, path := range []FieldPath{NewFieldPath("missing"), NewFieldPath("a", "missing"), NewFieldPath("a", "b", "c")} {
		if got := base.Delete(path); !got.Equal(base) {
			t.Fatalf("Delete(%s) changed the value: %v", path, got)
		}
	}
}

func TestDeleteKeepsIntermediateMaps(t *testing.T) {
	base := Map(map[string]Value{"a": Map(map[string]Value{"b": Integer(1)})})
	got := base.Delete(NewFieldPath("a", "b"))

	inner, ok := got.Field(NewFieldPath("a"))
	if !ok || !inner.IsMap() || len(inner.MapValue()) != 0 {
		t.Fatalf("expected an empty intermediate map to remain, got %v, ok=%v", inner, ok)
	}
}

func TestFieldOnNonMapIsAbsent(t *testing.T) {
	if _, ok := Integer(1).Field(NewFieldPath("a")); ok {
		t.Fatalf("expected field lookup on a non-map value to be absent")
	}
	got, ok := Integer(1).Field(EmptyFieldPath())
	if !ok || !got.Equal(Integer(1)) {
		t.Fatalf("expected the empty path to address the value itself")
	}
}

func TestServerTimestampComparesByWriteTime(t *testing.T) {
	earlier := ServerTimestamp(time.Unix(1, 0), nil)
	later := ServerTimestamp(time.Unix(2, 0), nil)

	if got := earlier.Compare(later); got != -1 {
		t.Fatalf("compare = %d, want -1", got)
	}
	if earlier.Equal(Timestamp(time.Unix(1, 0))) {
		t.Fatalf("sentinel must not equal a concrete timestamp")
	}
}

func TestServerTimestampAgainstOtherKindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a contract violation")
		}
	}()
	ServerTimestamp(time.Unix(1, 0), nil).Compare(Integer(1))
}

func TestCanonicalStringIsDeterministic(t *testing.T) {
	value := Map(map[string]Value{
		"b": Array(Integer(1), Double(2.5), Null()),
		"a": String("x"),
	})

	want := `{a:"x",b:[1,2.5,null]}`
	for i := 0; i < 4; i++ {
		if got := value.String(); got != want {
			t.Fatalf("canonical string = %q, want %q", got, want)
		}
	}
}
