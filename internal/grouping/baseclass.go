package grouping

import (
	"context"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
	"github.com/dbsmedya/hierarchyengine/internal/metadata"
)

// groupByBaseClasses implements spec.md section 4.5's base-class
// handler: for each declared full class name, in declaration order
// (most-base to most-specific), every node whose actual class strictly
// derives from it and that has not already been claimed by an earlier
// (more general) entry is assigned to that entry's group. Nodes
// matching none of the declared classes are returned as ungrouped.
func groupByBaseClasses(ctx context.Context, nodes []hxtypes.HierarchyNode, cfg *hxtypes.ByBaseClassesParams, inspector metadata.Inspector) (groups []group, ungrouped []hxtypes.HierarchyNode) {
	claimed := make([]bool, len(nodes))

	for _, baseClassName := range cfg.FullClassNames {
		var members []hxtypes.HierarchyNode
		for i, n := range nodes {
			if claimed[i] {
				continue
			}
			cls := instanceClassName(n)
			if cls == "" || cls == baseClassName {
				continue
			}
			derives, err := inspector.ClassDerivesFrom(ctx, cls, baseClassName)
			if err != nil || !derives {
				continue
			}
			claimed[i] = true
			members = append(members, n)
		}
		if len(members) == 0 {
			continue
		}
		groups = append(groups, group{
			node: hxtypes.HierarchyNode{
				Key:        hxtypes.ClassGroupingKey(baseClassName),
				Label:      baseClassName,
				AutoExpand: resolveAutoExpand(cfg.AutoExpand, len(members)),
			},
			children: members,
		})
	}

	for i, n := range nodes {
		if !claimed[i] {
			ungrouped = append(ungrouped, n)
		}
	}
	return groups, ungrouped
}

func instanceClassName(n hxtypes.HierarchyNode) string {
	keys := n.InstanceKeys().Slice()
	if len(keys) == 0 {
		return ""
	}
	return keys[0].ClassName
}
