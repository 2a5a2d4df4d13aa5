package hxtypes

// ChildrenState is the tri-state described in spec.md section 3: a node's
// children are unknown until probed, then resolved to either "no children"
// or a known boolean/list state.
type ChildrenState int

const (
	// ChildrenUnknown means the node's child count has not been determined.
	ChildrenUnknown ChildrenState = iota
	// ChildrenNo means the node is known to have no children.
	ChildrenNo
	// ChildrenYes means the node is known to have at least one child.
	ChildrenYes
)

// ProcessingParams carries the per-definition behaviors applied by the
// streaming pipeline (spec.md section 3, "Processing params").
type ProcessingParams struct {
	HideIfNoChildren bool
	HideInHierarchy  bool
	MergeByLabelID   string
	Grouping         *GroupingParams
}

// GroupingParams declares which grouping stages apply to nodes produced
// by a definition (spec.md section 4.5).
type GroupingParams struct {
	ByLabel        bool
	ByClass        *ByClassParams
	ByBaseClasses  *ByBaseClassesParams
	ByProperties   *ByPropertiesParams
}

// ByClassParams configures plain class grouping.
type ByClassParams struct {
	HideIfNoSiblings    bool
	HideIfOneGroupedNode bool
	AutoExpand          AutoExpandPolicy
}

// ByBaseClassesParams configures base-class grouping.
type ByBaseClassesParams struct {
	FullClassNames       []string
	HideIfNoSiblings     bool
	HideIfOneGroupedNode bool
	AutoExpand           AutoExpandPolicy
}

// PropertyGroupSpec is one property-value grouping declaration.
type PropertyGroupSpec struct {
	FullClassName string
	PropertyName  string
	Ranges        []PropertyRangeSpec
}

// PropertyRangeSpec is a single `[From, To]` bucket for ranged property
// grouping, with its display label.
type PropertyRangeSpec struct {
	FromValue string
	ToValue   string
	Label     string
}

// ByPropertiesParams configures property grouping.
type ByPropertiesParams struct {
	FullClassName        string
	PropertyGroups        []PropertyGroupSpec
	HideIfNoSiblings      bool
	HideIfOneGroupedNode  bool
	AutoExpand            AutoExpandPolicy
}

// AutoExpandPolicy mirrors spec.md section 4.5's "always"/"single-child"/
// "never" grouping auto-expand policy.
type AutoExpandPolicy int

const (
	AutoExpandNever AutoExpandPolicy = iota
	AutoExpandAlways
	AutoExpandSingleChild
)

// FilteringProps is produced by the filtering overlay (spec.md section 3).
type FilteringProps struct {
	IsFilterTarget               bool
	FilterTargetOptions          map[string]any
	HasFilterTargetAncestor      bool
	FilteredChildrenIdentifierPaths []IdentifierPath
}

// HierarchyNode is the public node shape returned by a provider (spec.md
// section 3 "Node identity and shape").
type HierarchyNode struct {
	Key        NodeKey
	Label      string
	ParentKeys []NodeKey

	Children         ChildrenState
	AutoExpand       *bool
	ExtendedData     map[string]any
	Processing       ProcessingParams
	Filtering        FilteringProps

	// GroupedInstanceKeys is populated on grouping nodes: the union of
	// instance keys of all non-grouping descendants (spec.md invariant 2).
	GroupedInstanceKeys NodeKeySet

	// NonGroupingAncestor records the nearest non-grouping ancestor key,
	// used by the filtering overlay's depth computations (spec.md 4.5).
	NonGroupingAncestor *NodeKey
}

// WithParentKeys returns a copy of the node with ParentKeys set to
// parent.ParentKeys with parent.Key appended, per spec.md invariant 1.
func (n HierarchyNode) WithParentKeys(parent *HierarchyNode) HierarchyNode {
	if parent == nil {
		n.ParentKeys = nil
		return n
	}
	pk := make([]NodeKey, len(parent.ParentKeys)+1)
	copy(pk, parent.ParentKeys)
	pk[len(parent.ParentKeys)] = parent.Key
	n.ParentKeys = pk
	return n
}

// IsInstanceNode reports whether the node is backed by instance keys.
func (n HierarchyNode) IsInstanceNode() bool {
	return n.Key.Kind == KindInstances
}

// IsGeneric reports whether the node is a synthetic generic node.
func (n HierarchyNode) IsGeneric() bool {
	return n.Key.Kind == KindGeneric
}

// InstanceKeys returns the set of instance keys a node contributes to an
// ancestor grouping node's GroupedInstanceKeys: its own keys for an
// instance node, or its already-accumulated GroupedInstanceKeys for a
// grouping node.
func (n HierarchyNode) InstanceKeys() NodeKeySet {
	if n.IsInstanceNode() {
		return n.Key.InstanceKeys
	}
	return n.GroupedInstanceKeys
}

// Depth returns the node's distance from the root (len(ParentKeys)).
func (n HierarchyNode) Depth() int {
	return len(n.ParentKeys)
}
