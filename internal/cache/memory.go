package cache

import (
	"context"
	"sync"
	"time"

	"research-match/internal/domain/matching"

	"github.com/google/uuid"
)

type pairKey struct {
	student uuid.UUID
	project uuid.UUID
}

type scoreEntry struct {
	score     matching.MatchScore
	createdAt time.Time
	expiresAt time.Time
}

// MemoryScoreCache is the in-process score store. Expiry is lazy: Get treats
// an expired entry as a miss and deletes it opportunistically, while Stats
// reports expired entries without removing them so the metric shows
// accumulated garbage.
type MemoryScoreCache struct {
	mu      sync.RWMutex
	entries map[pairKey]scoreEntry
	now     func() time.Time
}

func NewMemoryScoreCache() *MemoryScoreCache {
	return &MemoryScoreCache{
		entries: make(map[pairKey]scoreEntry),
		now:     time.Now,
	}
}

func (c *MemoryScoreCache) Get(_ context.Context, studentID, projectID uuid.UUID) (matching.MatchScore, bool, error) {
	key := pairKey{student: studentID, project: projectID}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return matching.MatchScore{}, false, nil
	}
	if !e.expiresAt.After(c.now()) {
		c.mu.Lock()
		// Re-check: a concurrent Put may have refreshed the entry.
		if cur, ok := c.entries[key]; ok && !cur.expiresAt.After(c.now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return matching.MatchScore{}, false, nil
	}
	return e.score, true, nil
}

func (c *MemoryScoreCache) Put(_ context.Context, studentID, projectID uuid.UUID, score matching.MatchScore, ttl time.Duration) error {
	now := c.now()
	c.mu.Lock()
	c.entries[pairKey{student: studentID, project: projectID}] = scoreEntry{
		score:     score,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
	c.mu.Unlock()
	return nil
}

func (c *MemoryScoreCache) Invalidate(_ context.Context, studentID, projectID uuid.UUID) error {
	c.mu.Lock()
	delete(c.entries, pairKey{student: studentID, project: projectID})
	c.mu.Unlock()
	return nil
}

func (c *MemoryScoreCache) InvalidateByStudent(_ context.Context, studentID uuid.UUID) error {
	c.mu.Lock()
	for k := range c.entries {
		if k.student == studentID {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
	return nil
}

func (c *MemoryScoreCache) InvalidateByProject(_ context.Context, projectID uuid.UUID) error {
	c.mu.Lock()
	for k := range c.entries {
		if k.project == projectID {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
	return nil
}

func (c *MemoryScoreCache) Stats(_ context.Context) (matching.CacheStats, error) {
	now := c.now()
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := matching.CacheStats{TotalEntries: len(c.entries)}
	for _, e := range c.entries {
		if !e.expiresAt.After(now) {
			st.ExpiredEntries++
		}
	}
	return st, nil
}

func (c *MemoryScoreCache) ClearAll(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[pairKey]scoreEntry)
	c.mu.Unlock()
	return nil
}

type batchKey struct {
	kind string // "project" or "student"
	id   uuid.UUID
}

type batchEntry struct {
	ranking   []matching.RankedStudent
	createdAt time.Time
	expiresAt time.Time
}

// MemoryBatchCache stores full ranked candidate lists. The list is sorted at
// write time; readers truncate their own copy.
type MemoryBatchCache struct {
	mu      sync.RWMutex
	entries map[batchKey]batchEntry
	now     func() time.Time
}

func NewMemoryBatchCache() *MemoryBatchCache {
	return &MemoryBatchCache{
		entries: make(map[batchKey]batchEntry),
		now:     time.Now,
	}
}

func (c *MemoryBatchCache) GetProjectRanking(_ context.Context, projectID uuid.UUID) ([]matching.RankedStudent, bool, error) {
	key := batchKey{kind: "project", id: projectID}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.After(c.now()) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && !cur.expiresAt.After(c.now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}

	out := make([]matching.RankedStudent, len(e.ranking))
	copy(out, e.ranking)
	return out, true, nil
}

func (c *MemoryBatchCache) PutProjectRanking(_ context.Context, projectID uuid.UUID, ranking []matching.RankedStudent, ttl time.Duration) error {
	stored := make([]matching.RankedStudent, len(ranking))
	copy(stored, ranking)

	now := c.now()
	c.mu.Lock()
	c.entries[batchKey{kind: "project", id: projectID}] = batchEntry{
		ranking:   stored,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
	c.mu.Unlock()
	return nil
}

func (c *MemoryBatchCache) InvalidateByStudent(_ context.Context, studentID uuid.UUID) error {
	c.mu.Lock()
	delete(c.entries, batchKey{kind: "student", id: studentID})
	c.mu.Unlock()
	return nil
}

func (c *MemoryBatchCache) InvalidateByProject(_ context.Context, projectID uuid.UUID) error {
	c.mu.Lock()
	delete(c.entries, batchKey{kind: "project", id: projectID})
	c.mu.Unlock()
	return nil
}

func (c *MemoryBatchCache) Stats(_ context.Context) (matching.CacheStats, error) {
	now := c.now()
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := matching.CacheStats{TotalEntries: len(c.entries)}
	for _, e := range c.entries {
		if !e.expiresAt.After(now) {
			st.ExpiredEntries++
		}
	}
	return st, nil
}

func (c *MemoryBatchCache) ClearAll(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[batchKey]batchEntry)
	c.mu.Unlock()
	return nil
}
