package mutation

import (
	"fmt"

	"github.com/example/localdoc-engine/internal/model"
)

// Precondition restricts which document states a mutation may be applied to.
// The zero value places no restriction.
type Precondition struct {
	exists     *bool
	updateTime *model.SnapshotVersion
}

// NonePrecondition returns the unrestricted precondition.
func NonePrecondition() Precondition {
	return Precondition{}
}

// ExistsPrecondition requires the document to exist (or not).
func ExistsPrecondition(exists bool) Precondition {
	return Precondition{exists: &exists}
}

// UpdateTimePrecondition requires the document to exist at exactly the given
// version.
func UpdateTimePrecondition(version model.SnapshotVersion) Precondition {
	return Precondition{updateTime: &version}
}

// IsNone reports whether the precondition places no restriction.
func (p Precondition) IsNone() bool {
	return p.exists == nil && p.updateTime == nil
}

// IsValidFor evaluates the precondition against the current document state.
// A nil maybeDoc means the slot was never read and counts as absent.
func (p Precondition) IsValidFor(maybeDoc model.MaybeDocument) bool {
	switch {
	case p.updateTime != nil:
		doc, ok := maybeDoc.(model.Document)
		return ok && doc.Version().Equal(*p.updateTime)
	case p.exists != nil:
		_, isDoc := maybeDoc.(model.Document)
		if *p.exists {
			return isDoc
		}
		return !isDoc
	default:
		return true
	}
}

// Equal reports structural equality.
func (p Precondition) Equal(other Precondition) bool {
	if (p.exists == nil) != (other.exists == nil) || (p.updateTime == nil) != (other.updateTime == nil) {
		return false
	}
	if p.exists != nil && *p.exists != *other.exists {
		return false
	}
	if p.updateTime != nil && !p.updateTime.Equal(*other.updateTime) {
		return false
	}
	return true
}

func (p Precondition) String() string {
	switch {
	case p.updateTime != nil:
		return fmt.Sprintf("Precondition{updateTime=%v}", p.updateTime.Time())
	case p.exists != nil:
		return fmt.Sprintf("Precondition{exists=%v}", *p.exists)
	default:
		return "Precondition{none}"
	}
}
