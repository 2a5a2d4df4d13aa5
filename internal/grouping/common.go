package grouping

import "github.com/dbsmedya/hierarchyengine/internal/hxtypes"

// reparent stamps child.ParentKeys/NonGroupingAncestor as a direct child
// of parent (a just-built grouping node, or the level's original
// parent). ancestor is the single non-grouping ancestor for the whole
// chain invocation (spec.md section 4.5, "nonGroupingAncestor — the
// nearest non-grouping ancestor"): grouping nodes never reset it, so it
// is computed once per Apply call and threaded through every depth of
// recursion unchanged.
func reparent(child hxtypes.HierarchyNode, parent *hxtypes.HierarchyNode, ancestor *hxtypes.NodeKey) hxtypes.HierarchyNode {
	child = child.WithParentKeys(parent)
	if child.Key.IsGroupingKey() {
		child.NonGroupingAncestor = ancestor
	}
	return child
}

// nonGroupingAncestorKey returns the ancestor key new grouping nodes at
// the top of one Apply call should record: the level's own parent key,
// or nil at the root.
func nonGroupingAncestorKey(parent *hxtypes.HierarchyNode) *hxtypes.NodeKey {
	if parent == nil {
		return nil
	}
	k := parent.Key
	return &k
}
