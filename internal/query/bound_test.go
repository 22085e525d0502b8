package query

import (
	"testing"
	"time"

	"github.com/example/localdoc-engine/internal/model"
)

func TestBoundInclusiveAndExclusiveEdges(t *testing.T) {
	orderBy := []OrderBy{Asc(model.NewFieldPath("count"))}
	doc := cursorDoc(map[string]model.Value{"count": model.Integer(5)})

	// before=true admits the exact position (start-at); before=false
	// excludes it (start-after).
	if !NewBound([]model.Value{model.Integer(5)}, true).SortsBeforeDocument(orderBy, doc) {
		t.Fatalf("inclusive bound must admit an exact match")
	}
	if NewBound([]model.Value{model.Integer(5)}, false).SortsBeforeDocument(orderBy, doc) {
		t.Fatalf("exclusive bound must reject an exact match")
	}
	if !NewBound([]model.Value{model.Integer(4)}, false).SortsBeforeDocument(orderBy, doc) {
		t.Fatalf("bound below the document must sort before it")
	}
	if NewBound([]model.Value{model.Integer(6)}, true).SortsBeforeDocument(orderBy, doc) {
		t.Fatalf("bound above the document must not sort before it")
	}
}

func TestBoundDescendingFlipsComparison(t *testing.T) {
	orderBy := []OrderBy{Desc(model.NewFieldPath("count"))}
	doc := cursorDoc(map[string]model.Value{"count": model.Integer(5)})

	if !NewBound([]model.Value{model.Integer(6)}, false).SortsBeforeDocument(orderBy, doc) {
		t.Fatalf("descending: a larger bound value sorts before the document")
	}
	if NewBound([]model.Value{model.Integer(4)}, true).SortsBeforeDocument(orderBy, doc) {
		t.Fatalf("descending: a smaller bound value sorts after the document")
	}
}

func TestBoundLexicographicShortCircuit(t *testing.T) {
	orderBy := []OrderBy{Asc(model.NewFieldPath("a")), Asc(model.NewFieldPath("b"))}
	doc := cursorDoc(map[string]model.Value{"a": model.Integer(1), "b": model.Integer(1)})

	// The first component already decides; the second would point the other
	// way and must be ignored.
	bound := NewBound([]model.Value{model.Integer(0), model.Integer(9)}, false)
	if !bound.SortsBeforeDocument(orderBy, doc) {
		t.Fatalf("first differing component must decide the comparison")
	}
}

func TestBoundPositionMayBeShorterThanOrderBy(t *testing.T) {
	orderBy := []OrderBy{Asc(model.NewFieldPath("a")), Asc(model.NewFieldPath("b"))}
	doc := cursorDoc(map[string]model.Value{"a": model.Integer(1), "b": model.Integer(1)})

	if !NewBound([]model.Value{model.Integer(1)}, true).SortsBeforeDocument(orderBy, doc) {
		t.Fatalf("a prefix position equal on its components is inclusive")
	}
}

func TestBoundComparesDocumentKeys(t *testing.T) {
	orderBy := []OrderBy{Asc(model.KeyFieldPath)}
	doc := cursorDoc(nil)

	before := NewBound([]model.Value{model.Reference(model.DocumentKeyFromPath("rooms/a"))}, false)
	if !before.SortsBeforeDocument(orderBy, doc) {
		t.Fatalf("key bound below the document key must sort before it")
	}
	after := NewBound([]model.Value{model.Reference(model.DocumentKeyFromPath("rooms/z"))}, true)
	if after.SortsBeforeDocument(orderBy, doc) {
		t.Fatalf("key bound above the document key must not sort before it")
	}
}

func TestBoundRejectsNonKeyValueOnKeyPath(t *testing.T) {
	orderBy := []OrderBy{Asc(model.KeyFieldPath)}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected a contract violation")
		}
	}()
	NewBound([]model.Value{model.Integer(1)}, true).SortsBeforeDocument(orderBy, cursorDoc(nil))
}

func TestBoundRejectsOversizedPosition(t *testing.T) {
	orderBy := []OrderBy{Asc(model.NewFieldPath("a"))}
	bound := NewBound([]model.Value{model.Integer(1), model.Integer(2)}, true)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected a contract violation")
		}
	}()
	bound.SortsBeforeDocument(orderBy, cursorDoc(map[string]model.Value{"a": model.Integer(1)}))
}

func TestBoundCanonicalString(t *testing.T) {
	bound := NewBound([]model.Value{model.Integer(1), model.String("x")}, true)
	if got := bound.CanonicalString(); got != `b:1"x"` {
		t.Fatalf("canonical string = %q", got)
	}

	after := NewBound(nil, false)
	if got := after.CanonicalString(); got != "a:" {
		t.Fatalf("canonical string = %q", got)
	}
}

func TestBoundEqual(t *testing.T) {
	left := NewBound([]model.Value{model.Integer(1)}, true)
	if !left.Equal(NewBound([]model.Value{model.Integer(1)}, true)) {
		t.Fatalf("identical bounds unequal")
	}
	if left.Equal(NewBound([]model.Value{model.Integer(1)}, false)) {
		t.Fatalf("bounds with different edges equal")
	}
	if left.Equal(NewBound([]model.Value{model.Integer(2)}, true)) {
		t.Fatalf("bounds with different positions equal")
	}
}

func cursorDoc(fields map[string]model.Value) model.Document {
	data := model.EmptyMap()
	if fields != nil {
		data = model.Map(fields)
	}
	return model.NewDocument(
		model.DocumentKeyFromPath("rooms/eros"),
		model.NewSnapshotVersion(time.Unix(1, 0)),
		model.DocumentStateSynced,
		data,
	)
}
