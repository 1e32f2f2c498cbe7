package cache

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Policy decides which entry is "oldest" when the budget is exceeded.
type Policy string

const (
	// FIFO evicts in insertion order; hits do not refresh an entry.
	FIFO Policy = "fifo"
	// LRU refreshes an entry on every hit.
	LRU Policy = "lru"
)

// ParsePolicy converts a config string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case FIFO, "":
		return FIFO, nil
	case LRU:
		return LRU, nil
	default:
		return "", fmt.Errorf("unknown cache policy: %q", s)
	}
}

// ReleaseFunc is called exactly once for every entry leaving the cache.
// It runs with the cache lock held and must not call back into the cache.
type ReleaseFunc[K comparable, V any] func(key K, value V, size int64)

type entry[V any] struct {
	value V
	size  int64
}

// Budgeted is a thread-safe cache that tracks the summed size of its entries
// against a byte budget. It never evicts on its own; callers decide when to
// call EvictOldest so that eviction happens before new work starts.
type Budgeted[K comparable, V any] struct {
	mu        sync.Mutex
	items     *simplelru.LRU[K, entry[V]]
	policy    Policy
	budget    int64
	footprint int64
	evictions int64
	release   ReleaseFunc[K, V]
}

// New creates an empty cache. release may be nil.
func New[K comparable, V any](policy Policy, budget int64, release ReleaseFunc[K, V]) (*Budgeted[K, V], error) {
	if budget <= 0 {
		return nil, fmt.Errorf("cache budget must be positive, got %d", budget)
	}
	if policy != FIFO && policy != LRU {
		return nil, fmt.Errorf("unknown cache policy: %q", policy)
	}
	c := &Budgeted[K, V]{
		policy:  policy,
		budget:  budget,
		release: release,
	}
	// entry count is unbounded; the byte budget is enforced by EvictOldest
	items, err := simplelru.NewLRU[K, entry[V]](math.MaxInt32, c.onEvict)
	if err != nil {
		return nil, err
	}
	c.items = items
	return c, nil
}

func (c *Budgeted[K, V]) onEvict(key K, e entry[V]) {
	c.footprint -= e.size
	if c.release != nil {
		c.release(key, e.value, e.size)
	}
}

// Get returns a cached value. Under LRU it also marks the entry as recent.
func (c *Budgeted[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var (
		e  entry[V]
		ok bool
	)
	if c.policy == LRU {
		e, ok = c.items.Get(key)
	} else {
		e, ok = c.items.Peek(key)
	}
	return e.value, ok
}

// Contains reports presence without touching recency.
func (c *Budgeted[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Contains(key)
}

// SizeOf returns the recorded size of key.
func (c *Budgeted[K, V]) SizeOf(key K) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items.Peek(key)
	return e.size, ok
}

// Add inserts value as the newest entry and adds size to the footprint.
// An existing entry under key is released first.
func (c *Budgeted[K, V]) Add(key K, value V, size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.Remove(key)
	c.items.Add(key, entry[V]{value: value, size: size})
	c.footprint += size
}

// OverBudget reports whether the footprint exceeds the budget.
func (c *Budgeted[K, V]) OverBudget() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.footprint > c.budget
}

// EvictOldest removes the single oldest entry when the footprint exceeds the
// budget. It returns the evicted key and its size.
func (c *Budgeted[K, V]) EvictOldest() (key K, size int64, evicted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.footprint <= c.budget {
		return key, 0, false
	}
	k, e, ok := c.items.RemoveOldest()
	if !ok {
		return key, 0, false
	}
	c.evictions++
	return k, e.size, true
}

// Eviction records one entry removed for budget reasons.
type Eviction[K comparable] struct {
	Key  K
	Size int64
}

// Trim evicts oldest entries until the footprint fits the budget. It stops
// early when the oldest entry is keep, so a newly added entry survives even
// if it alone exceeds the budget.
func (c *Budgeted[K, V]) Trim(keep K) []Eviction[K] {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Eviction[K]
	for c.footprint > c.budget {
		k, _, ok := c.items.GetOldest()
		if !ok || k == keep {
			break
		}
		_, e, _ := c.items.RemoveOldest()
		c.evictions++
		out = append(out, Eviction[K]{Key: k, Size: e.size})
	}
	return out
}

// Remove releases one entry and reports whether it was present.
func (c *Budgeted[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Remove(key)
}

// Purge releases every entry and zeroes the footprint.
func (c *Budgeted[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.Purge()
	c.footprint = 0
}

// Keys returns the cached keys from oldest to newest.
func (c *Budgeted[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Keys()
}

// Len returns the number of entries.
func (c *Budgeted[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Len()
}

// Footprint returns the summed size of all entries.
func (c *Budgeted[K, V]) Footprint() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.footprint
}

// Budget returns the configured byte budget.
func (c *Budgeted[K, V]) Budget() int64 {
	return c.budget
}

// Policy returns the eviction policy.
func (c *Budgeted[K, V]) Policy() Policy {
	return c.policy
}

// Evictions returns how many entries were evicted for budget reasons.
func (c *Budgeted[K, V]) Evictions() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictions
}
