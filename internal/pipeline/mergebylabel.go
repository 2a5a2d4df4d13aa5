package pipeline

import (
	"context"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

// mergeKey is the (label, mergeByLabelId) pair instance nodes collapse
// on (spec.md section 4.4 step 4). Merging is opt-in: a node with an
// empty MergeByLabelID never merges, even with an identically labeled
// sibling, since most definitions don't declare a merge id at all.
type mergeKey struct {
	label         string
	mergeByLabelID string
}

// MergeByLabel collapses instance nodes sharing (label, mergeByLabelId)
// into one node with the union of their instance keys, preserving
// stable insertion order: a sorted set keyed by the pair accumulates
// insertions, merging into the existing entry on collision. Non-instance
// nodes (generic, info) pass through untouched in their original
// relative position.
//
// This buffers its entire input before emitting, since any later node
// may collide with an earlier one — the same reason
// elliotchance/orderedmap/v2 is the right fit here (spec.md section
// 4.4 step 4's "sorted set... merging into the existing entry on
// collision" is exactly an ordered map keyed by the pair).
func MergeByLabel() Stage {
	return func(ctx context.Context, in <-chan hxtypes.HierarchyNode) <-chan hxtypes.HierarchyNode {
		out := make(chan hxtypes.HierarchyNode)
		go func() {
			defer close(out)

			// passthrough records non-mergeable nodes at the position
			// they were seen, by index into a combined ordered sequence.
			type slot struct {
				passthrough *hxtypes.HierarchyNode
				mergeKey    *mergeKey
			}
			var sequence []slot
			merged := orderedmap.NewOrderedMap[mergeKey, hxtypes.HierarchyNode]()

			for node := range in {
				if !node.IsInstanceNode() || node.Processing.MergeByLabelID == "" {
					n := node
					sequence = append(sequence, slot{passthrough: &n})
					continue
				}

				key := mergeKey{label: node.Label, mergeByLabelID: node.Processing.MergeByLabelID}
				if existing, ok := merged.Get(key); ok {
					existing.Key.InstanceKeys = existing.Key.InstanceKeys.Union(node.Key.InstanceKeys)
					merged.Set(key, existing)
					continue
				}
				merged.Set(key, node)
				k := key
				sequence = append(sequence, slot{mergeKey: &k})
			}

			for _, s := range sequence {
				var node hxtypes.HierarchyNode
				if s.passthrough != nil {
					node = *s.passthrough
				} else {
					node, _ = merged.Get(*s.mergeKey)
				}
				if !emit(ctx, out, node) {
					return
				}
			}
		}()
		return out
	}
}
