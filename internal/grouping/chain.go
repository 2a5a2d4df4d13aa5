package grouping

import (
	"context"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
	"github.com/dbsmedya/hierarchyengine/internal/metadata"
)

// chainContext carries the values that stay fixed across one Apply
// call's whole recursive descent through the handler chain.
type chainContext struct {
	ctx       context.Context
	inspector metadata.Inspector
	formatter Formatter
	registry  *Registry
	ancestor  *hxtypes.NodeKey
}

// reparentAll stamps every node as a direct child of parent, used
// wherever a batch of nodes is about to leave the chain (at a leaf, or
// rejoining the working set after a group was policy-dropped).
func reparentAll(nodes []hxtypes.HierarchyNode, parent *hxtypes.HierarchyNode, ancestor *hxtypes.NodeKey) []hxtypes.HierarchyNode {
	out := make([]hxtypes.HierarchyNode, len(nodes))
	for i, n := range nodes {
		out[i] = reparent(n, parent, ancestor)
	}
	return out
}

func isPropertyGroupingKind(k hxtypes.KeyKind) bool {
	switch k {
	case hxtypes.KindPropertyValueGrouping, hxtypes.KindPropertyRangeGrouping, hxtypes.KindPropertyOtherGrouping:
		return true
	default:
		return false
	}
}

// groupChain runs the fixed base-class -> class -> property -> label
// handler chain (spec.md section 4.5) over nodes, a flat set of instance
// nodes subject to grouping that share one definition's GroupingParams.
// parentKind is the Key.Kind of the node these nodes are about to become
// children of; it disables the handlers the parent's own kind already
// satisfies ("a class-grouping parent disables further base-class/class
// grouping", etc.). immediateParent is that same node, used to stamp
// ParentKeys/NonGroupingAncestor on every node this call produces.
//
// Every handler below resolves its hideIfNoSiblings/hideIfOneGroupedNode
// policy BEFORE recursing into a surviving group's children: those
// policies only depend on sibling/child counts known the instant a group
// is built, and deciding first means a policy-dropped group's children
// are recursed (and therefore reparented) exactly once, as children of
// whatever they actually end up under — never first assuming the
// dropped group existed and then silently leaving stale ParentKeys
// behind (spec.md invariant 1).
func groupChain(cc chainContext, nodes []hxtypes.HierarchyNode, params *hxtypes.GroupingParams, parentKind hxtypes.KeyKind, immediateParent *hxtypes.HierarchyNode) []hxtypes.HierarchyNode {
	if len(nodes) == 0 {
		return nil
	}
	if params == nil {
		return reparentAll(nodes, immediateParent, cc.ancestor)
	}

	working := nodes
	var out []hxtypes.HierarchyNode

	if params.ByBaseClasses != nil && parentKind != hxtypes.KindClassGrouping {
		var rejoin []hxtypes.HierarchyNode
		groups, ungrouped := groupByBaseClasses(cc.ctx, working, params.ByBaseClasses, cc.inspector)
		cfg := params.ByBaseClasses

		if cfg.HideIfNoSiblings && len(groups) == 1 {
			rejoin = append(rejoin, groups[0].children...)
		} else {
			for _, g := range groups {
				if cfg.HideIfOneGroupedNode && len(g.children) == 1 {
					rejoin = append(rejoin, g.children...)
					continue
				}
				g.node = reparent(g.node, immediateParent, cc.ancestor)
				g.children = groupRemainder(cc, g.children, params, hxtypes.KindClassGrouping, &g.node)
				out = append(out, finalizeAndRegisterOne(g, cc.registry))
			}
		}
		working = append(rejoin, ungrouped...)
	}

	out = append(out, groupRemainder(cc, working, params, parentKind, immediateParent)...)
	return out
}

// finalizeAndRegisterOne finalizes a single already-surviving group
// (GroupedInstanceKeys/Children computed, Registry updated). Unlike
// finalizeAndRegister, the hideIfNoSiblings/hideIfOneGroupedNode
// decision has already been made by the caller.
func finalizeAndRegisterOne(g group, registry *Registry) hxtypes.HierarchyNode {
	node := finalizeGroup(g)
	registry.store(node.Key, g.children)
	return node
}

// groupRemainder applies class grouping (if enabled and not disabled by
// the parent's own kind), then recurses into property/label grouping.
func groupRemainder(cc chainContext, nodes []hxtypes.HierarchyNode, params *hxtypes.GroupingParams, parentKind hxtypes.KeyKind, immediateParent *hxtypes.HierarchyNode) []hxtypes.HierarchyNode {
	if len(nodes) == 0 {
		return nil
	}

	if params.ByClass != nil && parentKind != hxtypes.KindClassGrouping {
		var out, rejoin []hxtypes.HierarchyNode
		groups := groupByClass(nodes, params.ByClass)
		cfg := params.ByClass

		if cfg.HideIfNoSiblings && len(groups) == 1 {
			rejoin = append(rejoin, groups[0].children...)
		} else {
			for _, g := range groups {
				if cfg.HideIfOneGroupedNode && len(g.children) == 1 {
					rejoin = append(rejoin, g.children...)
					continue
				}
				g.node = reparent(g.node, immediateParent, cc.ancestor)
				g.children = groupByPropertiesThenLabel(cc, g.children, params, hxtypes.KindClassGrouping, &g.node)
				out = append(out, finalizeAndRegisterOne(g, cc.registry))
			}
		}
		if len(rejoin) > 0 {
			out = append(out, groupByPropertiesThenLabel(cc, rejoin, params, parentKind, immediateParent)...)
		}
		return out
	}

	return groupByPropertiesThenLabel(cc, nodes, params, parentKind, immediateParent)
}

func groupByPropertiesThenLabel(cc chainContext, nodes []hxtypes.HierarchyNode, params *hxtypes.GroupingParams, parentKind hxtypes.KeyKind, immediateParent *hxtypes.HierarchyNode) []hxtypes.HierarchyNode {
	if len(nodes) == 0 {
		return nil
	}
	if params.ByProperties != nil && !isPropertyGroupingKind(parentKind) {
		return groupByPropertiesChain(cc, nodes, params, 0, parentKind, immediateParent)
	}
	return groupByLabelIfEnabled(cc, nodes, params, parentKind, immediateParent)
}

// groupByPropertiesChain nests one grouping layer per declared property
// group spec, in declaration order, before handing the fully-bucketed
// leaves to label grouping.
func groupByPropertiesChain(cc chainContext, nodes []hxtypes.HierarchyNode, params *hxtypes.GroupingParams, specIndex int, parentKind hxtypes.KeyKind, immediateParent *hxtypes.HierarchyNode) []hxtypes.HierarchyNode {
	cfg := params.ByProperties
	if specIndex >= len(cfg.PropertyGroups) {
		return groupByLabelIfEnabled(cc, nodes, params, parentKind, immediateParent)
	}

	spec := cfg.PropertyGroups[specIndex]
	groups := groupByPropertyStep(cc.ctx, nodes, cfg.FullClassName, spec, cc.formatter)

	var out, rejoin []hxtypes.HierarchyNode
	if cfg.HideIfNoSiblings && len(groups) == 1 {
		rejoin = append(rejoin, groups[0].children...)
	} else {
		for _, g := range groups {
			if cfg.HideIfOneGroupedNode && len(g.children) == 1 {
				rejoin = append(rejoin, g.children...)
				continue
			}
			g.node = reparent(g.node, immediateParent, cc.ancestor)
			g.node.AutoExpand = resolveAutoExpand(cfg.AutoExpand, len(g.children))
			kind := g.node.Key.Kind
			g.children = groupByPropertiesChain(cc, g.children, params, specIndex+1, kind, &g.node)
			out = append(out, finalizeAndRegisterOne(g, cc.registry))
		}
	}
	if len(rejoin) > 0 {
		out = append(out, groupByPropertiesChain(cc, rejoin, params, specIndex+1, parentKind, immediateParent)...)
	}
	return out
}

func groupByLabelIfEnabled(cc chainContext, nodes []hxtypes.HierarchyNode, params *hxtypes.GroupingParams, parentKind hxtypes.KeyKind, immediateParent *hxtypes.HierarchyNode) []hxtypes.HierarchyNode {
	if !params.ByLabel || parentKind == hxtypes.KindLabelGrouping {
		return reparentAll(nodes, immediateParent, cc.ancestor)
	}

	groups := groupByLabel(nodes)
	var out []hxtypes.HierarchyNode
	for _, g := range groups {
		g.node = reparent(g.node, immediateParent, cc.ancestor)
		g.children = reparentAll(g.children, &g.node, cc.ancestor)
		out = append(out, finalizeAndRegisterOne(g, cc.registry))
	}
	singletons := reparentAll(passthroughSingletons(nodes), immediateParent, cc.ancestor)
	return append(out, singletons...)
}
