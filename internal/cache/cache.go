// Package cache implements the two-tier child-node cache of spec.md
// section 4.7: tier 1 is keyed by the resolved parent (its fingerprint),
// tier 2 holds a bounded number of "variations" of that parent's result
// — one per distinct (filter, size-limit) combination a caller has
// requested — each an LRU within its parent's bucket.
package cache

import (
	"container/list"
	"context"
	"sync"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

// DefaultMaxParents bounds how many distinct parents' results the cache
// retains before evicting the least-recently-used one.
const DefaultMaxParents = 32

// DefaultMaxVariationsPerParent bounds how many (filter, size-limit)
// variations are retained per parent.
const DefaultMaxVariationsPerParent = 2

// Entry is one cached level result: the fully materialized node slice a
// getNodes call produced, ready to be replayed to any number of callers
// (spec.md section 4.7's "Sharing"). Streaming channels can't be
// replayed once drained, so the cache stores the realized slice instead
// and Replay hands out a fresh channel per caller.
type Entry struct {
	Nodes []hxtypes.HierarchyNode
}

// Replay streams entry's nodes over a fresh channel, respecting ctx
// cancellation, so a single cached Entry can back any number of
// concurrent callers without them interfering with each other.
func Replay(ctx context.Context, entry Entry) <-chan hxtypes.HierarchyNode {
	out := make(chan hxtypes.HierarchyNode)
	go func() {
		defer close(out)
		for _, n := range entry.Nodes {
			select {
			case out <- n:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

type tier2Item struct {
	variationKey string
	entry        Entry
}

type tier2 struct {
	order *list.List
	items map[string]*list.Element
}

func newTier2() *tier2 {
	return &tier2{order: list.New(), items: make(map[string]*list.Element)}
}

// get returns a variation, moving it to the most-recently-used position.
func (t *tier2) get(variationKey string) (Entry, bool) {
	el, ok := t.items[variationKey]
	if !ok {
		return Entry{}, false
	}
	t.order.MoveToFront(el)
	return el.Value.(*tier2Item).entry, true
}

// put inserts or replaces a variation, evicting the least-recently-used
// one if this parent's bucket is already at capacity.
func (t *tier2) put(variationKey string, entry Entry, maxVariations int) {
	if el, ok := t.items[variationKey]; ok {
		el.Value.(*tier2Item).entry = entry
		t.order.MoveToFront(el)
		return
	}
	el := t.order.PushFront(&tier2Item{variationKey: variationKey, entry: entry})
	t.items[variationKey] = el
	for t.order.Len() > maxVariations {
		oldest := t.order.Back()
		if oldest == nil {
			break
		}
		t.order.Remove(oldest)
		delete(t.items, oldest.Value.(*tier2Item).variationKey)
	}
}

type parentItem struct {
	parentKey string
	tier2     *tier2
}

// Cache is the two-tier LRU. The zero value is not usable; use New.
// Grounded on internal/graph/kahn.go's ProcessingQueue, a
// container/list-backed queue repurposed here as an LRU eviction list
// (the front of each list is the most-recently-used entry, the back is
// the next eviction candidate).
type Cache struct {
	mu sync.Mutex

	maxParents             int
	maxVariationsPerParent int

	order   *list.List
	parents map[string]*list.Element
}

// New creates a Cache. maxParents/maxVariationsPerParent <= 0 fall back
// to the package defaults.
func New(maxParents, maxVariationsPerParent int) *Cache {
	if maxParents <= 0 {
		maxParents = DefaultMaxParents
	}
	if maxVariationsPerParent <= 0 {
		maxVariationsPerParent = DefaultMaxVariationsPerParent
	}
	return &Cache{
		maxParents:             maxParents,
		maxVariationsPerParent: maxVariationsPerParent,
		order:                  list.New(),
		parents:                make(map[string]*list.Element),
	}
}

// Get looks up a cached entry for (parentKey, variationKey), promoting
// both the parent bucket and the variation within it to
// most-recently-used.
func (c *Cache) Get(parentKey, variationKey string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.parents[parentKey]
	if !ok {
		return Entry{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*parentItem).tier2.get(variationKey)
}

// Put stores entry under (parentKey, variationKey). Callers must only
// call Put after a level resolves successfully: a failed level must
// leave no cached entry (spec.md section 4.7's cache invariant), so the
// provider never calls Put on an error path.
func (c *Cache) Put(parentKey, variationKey string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.parents[parentKey]
	if !ok {
		el = c.order.PushFront(&parentItem{parentKey: parentKey, tier2: newTier2()})
		c.parents[parentKey] = el
		for c.order.Len() > c.maxParents {
			oldest := c.order.Back()
			if oldest == nil {
				break
			}
			c.order.Remove(oldest)
			delete(c.parents, oldest.Value.(*parentItem).parentKey)
		}
	} else {
		c.order.MoveToFront(el)
	}
	el.Value.(*parentItem).tier2.put(variationKey, entry, c.maxVariationsPerParent)
}

// InvalidateParent drops every variation cached for parentKey, used when
// a single parent's subtree is known stale (e.g. HierarchyChanged for a
// specific node).
func (c *Cache) InvalidateParent(parentKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.parents[parentKey]; ok {
		c.order.Remove(el)
		delete(c.parents, parentKey)
	}
}

// Clear drops every cached entry, used when the formatter or the
// identifier-path filter changes (spec.md section 4.7: either
// invalidates the whole cache, since both affect every cached node).
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = list.New()
	c.parents = make(map[string]*list.Element)
}

// Len reports how many distinct parents currently have cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
