package query

import "github.com/example/localdoc-engine/internal/model"

// Direction orders a sort key ascending or descending.
type Direction int8

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

// OrderBy is a single sort key of a query: a field path (possibly the key
// sentinel) and a direction.
type OrderBy struct {
	Field     model.FieldPath
	Direction Direction
}

// Asc returns an ascending sort key on field.
func Asc(field model.FieldPath) OrderBy {
	return OrderBy{Field: field, Direction: Ascending}
}

// Desc returns a descending sort key on field.
func Desc(field model.FieldPath) OrderBy {
	return OrderBy{Field: field, Direction: Descending}
}
