package access

import (
	"context"
	"sync"
)

type membership struct {
	projectID int64
	userID    string
}

type MemoryRepo struct {
	mu      sync.RWMutex
	members map[membership]struct{}
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{members: make(map[membership]struct{})}
}

// Grant adds userID to the project.
func (r *MemoryRepo) Grant(projectID int64, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[membership{projectID: projectID, userID: userID}] = struct{}{}
}

func (r *MemoryRepo) IsMember(ctx context.Context, projectID int64, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[membership{projectID: projectID, userID: userID}]
	return ok, nil
}
