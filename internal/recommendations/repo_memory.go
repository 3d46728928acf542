package recommendations

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryRepo keeps recommendations in process memory. A single RWMutex
// serializes writers; readers copy records out under the read lock.
type MemoryRepo struct {
	mu      sync.RWMutex
	records map[int64]Recommendation
	order   []int64
	nextID  int64
	now     func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		records: make(map[int64]Recommendation),
		nextID:  1,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepo) Create(ctx context.Context, fields Fields) (Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return Recommendation{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	rec := Recommendation{
		ID:            r.nextID,
		ProductOrigin: fields.ProductOrigin,
		ProductTarget: fields.ProductTarget,
		Relation:      fields.Relation,
		State:         StateActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.nextID++
	r.records[rec.ID] = rec
	r.order = append(r.order, rec.ID)
	return rec, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id int64) (Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return Recommendation{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeLocked(id)
}

func (r *MemoryRepo) Update(ctx context.Context, id int64, fields Fields) (Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return Recommendation{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, err := r.activeLocked(id)
	if err != nil {
		return Recommendation{}, err
	}
	rec.ProductOrigin = fields.ProductOrigin
	rec.ProductTarget = fields.ProductTarget
	rec.Relation = fields.Relation
	rec.UpdatedAt = r.now()
	r.records[id] = rec
	return rec, nil
}

func (r *MemoryRepo) SoftDelete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, err := r.activeLocked(id)
	if err != nil {
		return nil
	}
	rec.State = StateDeleted
	rec.UpdatedAt = r.now()
	r.records[id] = rec
	return nil
}

func (r *MemoryRepo) IncrementDislike(ctx context.Context, id int64) (Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return Recommendation{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, err := r.activeLocked(id)
	if err != nil {
		return Recommendation{}, err
	}
	rec.Dislike++
	rec.UpdatedAt = r.now()
	r.records[id] = rec
	return rec, nil
}

func (r *MemoryRepo) Search(ctx context.Context, filter Filter) ([]Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Recommendation, 0, len(r.order))
	for _, id := range r.order {
		rec := r.records[id]
		if rec.IsDeleted() || !filter.matches(rec) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *MemoryRepo) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = make(map[int64]Recommendation)
	r.order = nil
	r.nextID = 1
	return nil
}

// Len returns the number of stored records, soft-deleted ones included.
func (r *MemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func (r *MemoryRepo) activeLocked(id int64) (Recommendation, error) {
	rec, ok := r.records[id]
	if !ok || rec.IsDeleted() {
		return Recommendation{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return rec, nil
}
