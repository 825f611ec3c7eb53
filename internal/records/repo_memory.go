package records

import (
	"context"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	nextID  int64
	records []Record
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Exists(ctx context.Context, key DuplicateKey) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	key.Date = dateOnly(key.Date)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if KeyOf(rec) == key {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepo) Create(ctx context.Context, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if _, err := tableFor(rec.Kind); err != nil {
		return Record{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	rec.ID = r.nextID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	r.records = append(r.records, rec)
	return rec, nil
}

// List returns a copy of the stored records of the given kind.
func (r *MemoryRepo) List(kind Kind) []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Record
	for _, rec := range r.records {
		if rec.Kind == kind {
			out = append(out, rec)
		}
	}
	return out
}
