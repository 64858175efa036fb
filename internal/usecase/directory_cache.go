package usecase

import (
	"sync"
	"time"

	"resume-ledger-backend/internal/domain"
)

// DirectoryCache holds the last reconciled directory. Each refresh takes a
// generation number when it starts; a result is only accepted if no newer
// refresh has been stored, so overlapping refreshes resolve to the most
// recently started one.
type DirectoryCache struct {
	mu        sync.RWMutex
	next      uint64
	stored    uint64
	resumes   []domain.Resume
	updatedAt time.Time
	loaded    bool
}

func NewDirectoryCache() *DirectoryCache {
	return &DirectoryCache{}
}

// Begin reserves a generation for a refresh that is about to start.
func (c *DirectoryCache) Begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	return c.next
}

// Store publishes resumes for gen. It reports false when a newer generation
// already landed.
func (c *DirectoryCache) Store(gen uint64, resumes []domain.Resume) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen <= c.stored {
		return false
	}
	c.stored = gen
	c.resumes = resumes
	c.updatedAt = time.Now()
	c.loaded = true
	return true
}

// Load returns a copy of the cached directory and whether one exists.
func (c *DirectoryCache) Load() ([]domain.Resume, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil, time.Time{}, false
	}
	out := make([]domain.Resume, len(c.resumes))
	copy(out, c.resumes)
	return out, c.updatedAt, true
}
