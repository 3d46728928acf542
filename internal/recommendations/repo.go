package recommendations

import "context"

// Repo defines persistence operations for recommendations. Implementations
// must make each call atomic with respect to other calls on the same id and
// must hide soft-deleted records from every read and mutation except Reset.
type Repo interface {
	Create(ctx context.Context, fields Fields) (Recommendation, error)
	GetByID(ctx context.Context, id int64) (Recommendation, error)
	Update(ctx context.Context, id int64, fields Fields) (Recommendation, error)
	// SoftDelete marks the record deleted. Missing or already deleted ids are not an error.
	SoftDelete(ctx context.Context, id int64) error
	IncrementDislike(ctx context.Context, id int64) (Recommendation, error)
	// Search returns active records matching filter in ascending id order.
	Search(ctx context.Context, filter Filter) ([]Recommendation, error)
	// Reset drops every record and restarts id assignment at 1.
	Reset(ctx context.Context) error
}
