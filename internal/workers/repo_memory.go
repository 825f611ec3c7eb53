package workers

import (
	"context"
	"strings"
	"sync"

	"hse-backend/internal/shared/util"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	nextID  int64
	workers map[string]Worker
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{workers: make(map[string]Worker)}
}

// Add stores a worker keyed by its CIN, assigning an ID when missing.
func (r *MemoryRepo) Add(w Worker) Worker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w.ID == 0 {
		r.nextID++
		w.ID = r.nextID
	} else if w.ID > r.nextID {
		r.nextID = w.ID
	}
	r.workers[cinKey(w.CIN)] = w
	return w
}

func (r *MemoryRepo) FindByCIN(ctx context.Context, cin string) (Worker, error) {
	if err := ctx.Err(); err != nil {
		return Worker{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workers[cinKey(cin)]
	if !ok {
		return Worker{}, ErrNotFound
	}
	return w, nil
}

// cinKey folds accents then keeps uppercase ASCII letters and digits, the
// same canonical form the import pipeline produces. PGRepo applies the
// equivalent folding in SQL.
func cinKey(cin string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(util.FoldAccents(cin)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
