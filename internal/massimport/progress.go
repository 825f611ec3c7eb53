package massimport

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Progress statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Progress is the pollable state of one run.
type Progress struct {
	Status     string     `json:"status"`
	Processed  int        `json:"processed"`
	Total      int        `json:"total"`
	Failed     int        `json:"failed"`
	Imported   int        `json:"imported"`
	Updated    int        `json:"updated"`
	StartedAt  time.Time  `json:"started_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	FinishedAt *time.Time `json:"finished_at"`
	Error      string     `json:"error,omitempty"`
}

// ProgressStore keeps run progress for pollers. Every write refreshes the
// record's retention window.
type ProgressStore interface {
	Init(ctx context.Context, runID string, p Progress) error
	Get(ctx context.Context, runID string) (Progress, error)
	// Update applies fn to the stored record. A missing record starts from zero.
	Update(ctx context.Context, runID string, fn func(*Progress)) error
}

const (
	DefaultProgressTTL = time.Hour
	maxTrackedRuns     = 4096
)

// MemoryProgressStore is an in-process ProgressStore with a TTL per record.
type MemoryProgressStore struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, Progress]
	now   func() time.Time
}

func NewMemoryProgressStore(ttl time.Duration) *MemoryProgressStore {
	if ttl <= 0 {
		ttl = DefaultProgressTTL
	}
	return &MemoryProgressStore{
		cache: expirable.NewLRU[string, Progress](maxTrackedRuns, nil, ttl),
		now:   time.Now,
	}
}

func (s *MemoryProgressStore) Init(ctx context.Context, runID string, p Progress) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p.UpdatedAt = s.now().UTC()
	if p.StartedAt.IsZero() {
		p.StartedAt = p.UpdatedAt
	}
	s.cache.Add(runID, p)
	return nil
}

func (s *MemoryProgressStore) Get(ctx context.Context, runID string) (Progress, error) {
	if err := ctx.Err(); err != nil {
		return Progress{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.cache.Get(strings.TrimSpace(runID))
	if !ok {
		return Progress{}, ErrProgressNotFound
	}
	return p, nil
}

func (s *MemoryProgressStore) Update(ctx context.Context, runID string, fn func(*Progress)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, _ := s.cache.Get(runID)
	fn(&p)
	p.UpdatedAt = s.now().UTC()
	s.cache.Add(runID, p)
	return nil
}
