package hxtypes

// HierarchyNodeIdentifier identifies one step of a root-to-leaf filter
// path: either a generic identifier or an instance identifier (spec.md
// section 3, "Identifier paths").
type HierarchyNodeIdentifier struct {
	// Generic
	ID     string
	Source string

	// Instance
	ClassName string
	IModelKey string

	IsInstance bool
}

// GenericIdentifier builds a generic-node path identifier.
func GenericIdentifier(id, source string) HierarchyNodeIdentifier {
	return HierarchyNodeIdentifier{ID: id, Source: source}
}

// InstanceIdentifier builds an instance-node path identifier.
func InstanceIdentifier(className, id, imodelKey string) HierarchyNodeIdentifier {
	return HierarchyNodeIdentifier{ID: id, ClassName: className, IModelKey: imodelKey, IsInstance: true}
}

// RevealOption drives the overlay's reveal-by-depth auto-expand rule
// (spec.md section 4.6).
type RevealOption struct {
	// Depth reveals the node at this distance from the root.
	Depth *int
	// DepthInPath reveals the node at this distance along the matched path.
	DepthInPath *int
}

// PathOptions is per-path configuration driving auto-expand/reveal
// behavior (spec.md section 3, "Path option").
type PathOptions struct {
	AutoExpand bool
	Reveal     *RevealOption
}

// IdentifierPath is an ordered root-to-leaf sequence of identifiers with
// optional per-path options.
type IdentifierPath struct {
	Path    []HierarchyNodeIdentifier
	Options PathOptions
}
