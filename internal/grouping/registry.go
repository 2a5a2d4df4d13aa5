// Package grouping implements the handler chain that turns a level's flat
// instance-node stream into class/base-class/property/label grouping
// nodes (spec.md section 4.5). Grounded on internal/graph/types.go's
// parent/children adjacency (a grouping node's Registry entry is exactly
// that shape, generalized from table names to node keys) and
// internal/graph/kahn.go's queue-processing pattern, reused conceptually
// as "each handler sees all nodes again" (a handler chain run in a fixed
// order over the same working set, not a one-pass filter).
package grouping

import (
	"sync"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

// Registry holds the children a grouping node owns, keyed by the
// grouping node's own fingerprint. A grouping node's children are never
// re-queried: they were already fetched and classified while building
// the level that produced the grouping node, so internal/provider serves
// them straight out of the Registry instead of re-running the pipeline
// (spec.md section 4.7's "shared replayable" contract applied to
// grouping nodes specifically, since they have no backing query of
// their own).
type Registry struct {
	mu       sync.Mutex
	children map[string][]hxtypes.HierarchyNode
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{children: make(map[string][]hxtypes.HierarchyNode)}
}

func (r *Registry) store(key hxtypes.NodeKey, children []hxtypes.HierarchyNode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.children[key.Fingerprint()] = children
}

// Children returns the children previously stored for a grouping node's
// key, if any.
func (r *Registry) Children(key hxtypes.NodeKey) ([]hxtypes.HierarchyNode, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.children[key.Fingerprint()]
	return c, ok
}

// Forget drops a previously stored entry, used when the cache evicts or
// invalidates the corresponding tier-1 entry (internal/cache) so the
// Registry doesn't grow unbounded across many getNodes calls.
func (r *Registry) Forget(key hxtypes.NodeKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.children, key.Fingerprint())
}
