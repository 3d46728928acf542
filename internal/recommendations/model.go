package recommendations

import "time"

// Relation is the kind of link from the origin product to the target product.
// Only the integer code is stored and returned; display labels belong to clients.
type Relation int

const (
	RelationCrossSell Relation = 1
	RelationUpSell    Relation = 2
	RelationAccessory Relation = 3
)

// Valid reports whether r is one of the defined relation codes.
func (r Relation) Valid() bool {
	switch r {
	case RelationCrossSell, RelationUpSell, RelationAccessory:
		return true
	default:
		return false
	}
}

// State is the lifecycle of a record. Transitions only go Active -> Deleted.
type State int

const (
	StateActive State = iota
	StateDeleted
)

// Recommendation links an origin product to a target product.
type Recommendation struct {
	ID            int64
	ProductOrigin int64
	ProductTarget int64
	Relation      Relation
	Dislike       int64
	State         State
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsDeleted reports whether the record has been soft deleted.
func (r Recommendation) IsDeleted() bool {
	return r.State == StateDeleted
}

// Fields are the client-replaceable attributes of a recommendation.
type Fields struct {
	ProductOrigin int64
	ProductTarget int64
	Relation      Relation
}

// Filter narrows Search. Nil fields are not applied.
type Filter struct {
	ProductOrigin *int64
	Relation      *Relation
}

func (f Filter) matches(rec Recommendation) bool {
	if f.ProductOrigin != nil && rec.ProductOrigin != *f.ProductOrigin {
		return false
	}
	if f.Relation != nil && rec.Relation != *f.Relation {
		return false
	}
	return true
}
