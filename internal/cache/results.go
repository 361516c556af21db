package cache

import (
	"sync"

	"github.com/practicepulse/backend/internal/types"
)

// ResultCache keeps computed analysis results in memory so reads and
// live pushes never wait on the store. The store remains the durable
// copy; this cache is repopulated as analyses run.
type ResultCache struct {
	mu        sync.RWMutex
	snapshots map[string]types.AnalysisSnapshot
	cohorts   map[string]types.CohortResult

	latestSnapshotID string
	latestCohortID   string
}

// NewResultCache creates an empty result cache
func NewResultCache() *ResultCache {
	return &ResultCache{
		snapshots: make(map[string]types.AnalysisSnapshot),
		cohorts:   make(map[string]types.CohortResult),
	}
}

// PutSnapshot stores a snapshot and marks it as the most recent
func (c *ResultCache) PutSnapshot(snap types.AnalysisSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[snap.ID] = snap
	c.latestSnapshotID = snap.ID
}

// GetSnapshot returns a cached snapshot by ID
func (c *ResultCache) GetSnapshot(id string) (types.AnalysisSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.snapshots[id]
	return snap, ok
}

// LatestSnapshot returns the most recently stored snapshot
func (c *ResultCache) LatestSnapshot() (types.AnalysisSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.snapshots[c.latestSnapshotID]
	return snap, ok
}

// PutCohort stores a follow-up cohort result and marks it as the most
// recent
func (c *ResultCache) PutCohort(result types.CohortResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cohorts[result.ID] = result
	c.latestCohortID = result.ID
}

// GetCohort returns a cached cohort result by ID
func (c *ResultCache) GetCohort(id string) (types.CohortResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.cohorts[id]
	return result, ok
}

// LatestCohort returns the most recently stored cohort result
func (c *ResultCache) LatestCohort() (types.CohortResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.cohorts[c.latestCohortID]
	return result, ok
}

// Size returns the number of cached snapshots and cohort results
func (c *ResultCache) Size() (int, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshots), len(c.cohorts)
}
