package workflow

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is the LRU plan cache: built plans are keyed by
// (workflow_name, hash(plan)) so an unchanged workflow definition never
// pays the builder's dependency resolution twice within the process
// lifetime. Reads and writes are mutex-protected; golang-lru's Cache type
// is not safe for concurrent use on its own.
type Cache struct {
	mu        sync.Mutex
	lru       *lru.Cache[string, *ExecutionPlan]
	maxSize   int
	hitCount  int
	missCount int
}

// NewCache constructs a Cache with the given maximum size (the spec's
// default is 2).
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 2
	}
	c, err := lru.New[string, *ExecutionPlan](maxSize)
	if err != nil {
		// lru.New only errors on a non-positive size, already guarded above.
		panic(err)
	}
	return &Cache{lru: c, maxSize: maxSize}
}

// Get looks up a cached plan by workflow name and plan hash.
func (c *Cache) Get(workflowName, planHash string) (*ExecutionPlan, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	plan, ok := c.lru.Get(workflowName + ":" + planHash)
	if ok {
		c.hitCount++
	} else {
		c.missCount++
	}
	return plan, ok
}

// Put caches a built plan under its workflow name and plan hash.
func (c *Cache) Put(workflowName, planHash string, plan *ExecutionPlan) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(workflowName+":"+planHash, plan)
}

// Clear empties the cache and resets its hit/miss counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.hitCount = 0
	c.missCount = 0
}

// Stats is the cache's point-in-time hit/miss snapshot.
type Stats struct {
	Size      int
	MaxSize   int
	HitCount  int
	MissCount int
	HitRate   float64
}

// Stats returns the cache's current statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := c.hitCount + c.missCount
	rate := 0.0
	if total > 0 {
		rate = float64(c.hitCount) / float64(total)
	}
	return Stats{
		Size:      c.lru.Len(),
		MaxSize:   c.maxSize,
		HitCount:  c.hitCount,
		MissCount: c.missCount,
		HitRate:   rate,
	}
}

// HashDefinition hashes only the identity-relevant parts of a workflow
// definition — task ids, depends_on, and declared parameters — never
// runtime inputs, so two requests against the same workflow config hash
// identically regardless of the data they carry.
func HashDefinition(def Definition) string {
	type keyTask struct {
		ID         string                 `json:"id"`
		Layer      string                 `json:"layer"`
		DependsOn  []string               `json:"depends_on"`
		Parameters map[string]interface{} `json:"parameters"`
	}
	var tasks []keyTask
	for _, layer := range def.Layers {
		for _, t := range layer.Tasks {
			deps := append([]string(nil), t.DependsOn...)
			sort.Strings(deps)
			tasks = append(tasks, keyTask{ID: t.ID, Layer: layer.Layer, DependsOn: deps, Parameters: t.Parameters})
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })

	payload, _ := json.Marshal(struct {
		Tasks      []keyTask              `json:"tasks"`
		Parameters map[string]interface{} `json:"parameters"`
	}{Tasks: tasks, Parameters: def.Parameters})

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])[:16]
}
