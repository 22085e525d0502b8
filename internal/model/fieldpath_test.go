package model

import "testing"

func TestFieldPathCompare(t *testing.T) {
	cases := []struct {
		left, right FieldPath
		want        int
	}{
		{NewFieldPath("a"), NewFieldPath("b"), -1},
		{NewFieldPath("a"), NewFieldPath("a"), 0},
		{NewFieldPath("a"), NewFieldPath("a", "b"), -1},
		{NewFieldPath("a", "z"), NewFieldPath("b"), -1},
		{EmptyFieldPath(), NewFieldPath("a"), -1},
	}

	for _, tc := range cases {
		if got := tc.left.Compare(tc.right); got != tc.want {
			t.Fatalf("compare(%s, %s) = %d, want %d", tc.left, tc.right, got, tc.want)
		}
		if got := tc.right.Compare(tc.left); got != -tc.want {
			t.Fatalf("reversed compare(%s, %s) = %d, want %d", tc.right, tc.left, got, -tc.want)
		}
	}
}

func TestFieldPathFromDotSeparated(t *testing.T) {
	path := FieldPathFromDotSeparated("a.b.c")
	if !path.Equal(NewFieldPath("a", "b", "c")) {
		t.Fatalf("parsed path = %s", path)
	}
}

func TestFieldMaskDeduplicates(t *testing.T) {
	mask := NewFieldMask(
		FieldPathFromDotSeparated("a.b"),
		NewFieldPath("c"),
		NewFieldPath("a", "b"),
	)

	if got := len(mask.Paths()); got != 2 {
		t.Fatalf("mask holds %d paths, want 2", got)
	}
	if !mask.Contains(NewFieldPath("a", "b")) || !mask.Contains(NewFieldPath("c")) {
		t.Fatalf("mask is missing an inserted path: %v", mask.Paths())
	}
	if mask.Contains(NewFieldPath("a")) {
		t.Fatalf("mask must not contain a prefix of an inserted path")
	}
}

func TestFieldMaskEqualIgnoresOrder(t *testing.T) {
	left := NewFieldMask(NewFieldPath("a"), NewFieldPath("b"))
	right := NewFieldMask(NewFieldPath("b"), NewFieldPath("a"))

	if !left.Equal(right) {
		t.Fatalf("masks with the same paths in different order must be equal")
	}
	if left.Equal(NewFieldMask(NewFieldPath("a"))) {
		t.Fatalf("masks of different size must not be equal")
	}
}

func TestDocumentKeyOrdering(t *testing.T) {
	eros := DocumentKeyFromPath("rooms/eros")
	other := DocumentKeyFromPath("rooms/other")
	nested := DocumentKeyFromPath("rooms/eros/messages/1")

	if got := eros.Compare(other); got != -1 {
		t.Fatalf("compare = %d, want -1", got)
	}
	if got := eros.Compare(nested); got != -1 {
		t.Fatalf("prefix key should sort first, got %d", got)
	}
	if !eros.Equal(DocumentKeyFromPath("rooms/eros")) {
		t.Fatalf("equal keys reported unequal")
	}
	if eros.String() != "rooms/eros" {
		t.Fatalf("canonical path = %q", eros.String())
	}
}

func TestDocumentKeyRequiresEvenSegments(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a contract violation")
		}
	}()
	NewDocumentKey("rooms")
}
