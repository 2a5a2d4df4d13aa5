package grouping

import "github.com/dbsmedya/hierarchyengine/internal/hxtypes"

// groupByLabel implements spec.md section 4.5's label handler: collapse
// same-label siblings into one label-grouping node, in first-seen order.
// Distinct from internal/pipeline's MergeByLabel stage, which collapses
// same-(label, mergeByLabelId) *instance* nodes into a single instance
// node before grouping ever runs; this handler instead wraps otherwise
// distinct instance/grouped nodes that merely share a display label.
func groupByLabel(nodes []hxtypes.HierarchyNode) []group {
	var order []string
	buckets := make(map[string][]hxtypes.HierarchyNode)
	for _, n := range nodes {
		if _, ok := buckets[n.Label]; !ok {
			order = append(order, n.Label)
		}
		buckets[n.Label] = append(buckets[n.Label], n)
	}

	groups := make([]group, 0, len(order))
	for _, label := range order {
		members := buckets[label]
		if len(members) < 2 {
			// A label with only one member has no siblings to collapse
			// with; keep it as a bare passthrough rather than wrapping a
			// single node in its own label group.
			continue
		}
		groups = append(groups, group{
			node:     hxtypes.HierarchyNode{Key: hxtypes.LabelGroupingKey(label, ""), Label: label},
			children: members,
		})
	}
	return groups
}

// passthroughSingletons returns the nodes groupByLabel chose not to wrap
// (labels with exactly one member), preserving first-seen order.
func passthroughSingletons(nodes []hxtypes.HierarchyNode) []hxtypes.HierarchyNode {
	counts := make(map[string]int)
	for _, n := range nodes {
		counts[n.Label]++
	}
	var out []hxtypes.HierarchyNode
	for _, n := range nodes {
		if counts[n.Label] < 2 {
			out = append(out, n)
		}
	}
	return out
}
