package grouping

import "github.com/dbsmedya/hierarchyengine/internal/hxtypes"

// group is the internal working representation of one grouping node
// being assembled: its (not yet registered) node value plus the
// children it currently owns. Children may themselves be groups
// produced by a deeper handler in the chain.
type group struct {
	node     hxtypes.HierarchyNode
	children []hxtypes.HierarchyNode
}

// finalizeAndRegister applies hideIfNoSiblings and hideIfOneGroupedNode
// (spec.md section 4.5) to the groups one handler invocation just built,
// returning the surviving nodes (policy-dropped groups contribute their
// children directly instead) and registering every surviving group's
// children into registry so internal/provider can serve them without a
// fresh query. "Siblings" is scoped to the groups this single handler
// produced, since hideIfNoSiblings/hideIfOneGroupedNode are declared per
// grouping dimension (byClass.hideIfNoSiblings etc.), not across the
// whole level.
func finalizeAndRegister(groups []group, hideIfNoSiblings, hideIfOneGroupedNode bool, registry *Registry) []hxtypes.HierarchyNode {
	if hideIfNoSiblings && len(groups) == 1 {
		return promote(groups[0])
	}

	var out []hxtypes.HierarchyNode
	for _, g := range groups {
		if hideIfOneGroupedNode && len(g.children) == 1 {
			out = append(out, promote(g)...)
			continue
		}
		node := finalizeGroup(g)
		registry.store(node.Key, g.children)
		out = append(out, node)
	}
	return out
}

// promote drops g's own node and returns its children directly, used by
// both hideIfNoSiblings (drop the lone group) and hideIfOneGroupedNode
// (drop a group wrapping a single node).
func promote(g group) []hxtypes.HierarchyNode {
	return g.children
}

// finalizeGroup stamps a group node's GroupedInstanceKeys (the union of
// its children's contributed instance keys, spec.md invariant 2) and
// returns it; callers are responsible for registering g.children into a
// Registry under g.node.Key.
func finalizeGroup(g group) hxtypes.HierarchyNode {
	keys := hxtypes.NewNodeKeySet()
	for _, child := range g.children {
		keys = keys.Union(child.InstanceKeys())
	}
	g.node.GroupedInstanceKeys = keys
	g.node.Children = childrenState(len(g.children))
	return g.node
}

func childrenState(n int) hxtypes.ChildrenState {
	if n == 0 {
		return hxtypes.ChildrenNo
	}
	return hxtypes.ChildrenYes
}

// resolveAutoExpand applies a ByClassParams/ByBaseClassesParams/
// ByPropertiesParams.AutoExpand policy to a just-built group.
func resolveAutoExpand(policy hxtypes.AutoExpandPolicy, childCount int) *bool {
	var expand bool
	switch policy {
	case hxtypes.AutoExpandAlways:
		expand = true
	case hxtypes.AutoExpandSingleChild:
		expand = childCount == 1
	default:
		expand = false
	}
	return &expand
}
