package grouping

import "github.com/dbsmedya/hierarchyengine/internal/hxtypes"

// groupByClass implements spec.md section 4.5's class handler: one
// class-grouping node per distinct instance class represented among
// nodes, in first-seen order.
func groupByClass(nodes []hxtypes.HierarchyNode, cfg *hxtypes.ByClassParams) []group {
	var order []string
	buckets := make(map[string][]hxtypes.HierarchyNode)
	for _, n := range nodes {
		cls := instanceClassName(n)
		if cls == "" {
			continue
		}
		if _, ok := buckets[cls]; !ok {
			order = append(order, cls)
		}
		buckets[cls] = append(buckets[cls], n)
	}

	groups := make([]group, 0, len(order))
	for _, cls := range order {
		members := buckets[cls]
		groups = append(groups, group{
			node: hxtypes.HierarchyNode{
				Key:        hxtypes.ClassGroupingKey(cls),
				Label:      cls,
				AutoExpand: resolveAutoExpand(cfg.AutoExpand, len(members)),
			},
			children: members,
		})
	}
	return groups
}
