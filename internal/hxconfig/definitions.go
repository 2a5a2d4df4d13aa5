package hxconfig

// DefinitionsDocument is the root of a hierarchy-definitions YAML file: a
// named set of hierarchy definitions, generalizing JobConfig.Relations'
// table-dependency tree into predicate-driven level definitions (spec.md
// section 4.1).
type DefinitionsDocument struct {
	Hierarchies map[string]HierarchyDefinition `yaml:"hierarchies" mapstructure:"hierarchies"`
}

// HierarchyDefinition is one named hierarchy's ordered list of root-level
// definitions.
type HierarchyDefinition struct {
	RootLevels []LevelDefinition `yaml:"root_levels" mapstructure:"root_levels"`
}

// LevelDefinition declares one hierarchy-level entry: a predicate over the
// parent node plus the child-producing query or generic-node spec, nested
// recursively the way Relation nests sub-Relations.
type LevelDefinition struct {
	// ID names the definition for logging/debugging.
	ID string `yaml:"id" mapstructure:"id"`

	// Predicate restricts when this definition applies to a parent node.
	Predicate PredicateSpec `yaml:"predicate" mapstructure:"predicate"`

	// OnlyIfNotHandled marks this definition as a fallback: it is skipped
	// if any earlier-ordered definition at the same level already
	// matched the same parent (spec.md section 4.1).
	OnlyIfNotHandled bool `yaml:"only_if_not_handled" mapstructure:"only_if_not_handled"`

	// Generic declares a synthetic node instead of an instance query.
	Generic *GenericNodeSpec `yaml:"generic,omitempty" mapstructure:"generic"`

	// Query declares the ECSQL-like query producing instance nodes.
	Query *QuerySpec `yaml:"query,omitempty" mapstructure:"query"`

	// Processing carries hideInHierarchy/hideIfNoChildren/grouping/merge.
	Processing ProcessingSpec `yaml:"processing,omitempty" mapstructure:"processing"`

	// Children nests the definitions that apply one level below nodes
	// produced here, mirroring Relation.Relations.
	Children []LevelDefinition `yaml:"children,omitempty" mapstructure:"children"`
}

// PredicateSpec matches a parent node before a definition is considered.
type PredicateSpec struct {
	// ParentNodeID matches a generic parent node's ID.
	ParentNodeID string `yaml:"parent_node_id,omitempty" mapstructure:"parent_node_id"`
	// ParentInstancesOfClass matches an instance parent by class name.
	ParentInstancesOfClass string `yaml:"parent_instances_of_class,omitempty" mapstructure:"parent_instances_of_class"`
	// IsRoot matches only the synthetic root parent.
	IsRoot bool `yaml:"is_root,omitempty" mapstructure:"is_root"`
}

// GenericNodeSpec declares a synthetic, non-instance node.
type GenericNodeSpec struct {
	NodeID string `yaml:"node_id" mapstructure:"node_id"`
	Label  string `yaml:"label" mapstructure:"label"`
}

// QuerySpec declares an instance-producing ECSQL-like query (spec.md
// section 4.2).
type QuerySpec struct {
	FullClassName string `yaml:"full_class_name" mapstructure:"full_class_name"`
	Where         string `yaml:"where,omitempty" mapstructure:"where"`
	OrderBy       string `yaml:"order_by,omitempty" mapstructure:"order_by"`
}

// ProcessingSpec is the YAML-level mirror of hxtypes.ProcessingParams.
type ProcessingSpec struct {
	HideIfNoChildren bool              `yaml:"hide_if_no_children,omitempty" mapstructure:"hide_if_no_children"`
	HideInHierarchy  bool              `yaml:"hide_in_hierarchy,omitempty" mapstructure:"hide_in_hierarchy"`
	MergeByLabelID   string            `yaml:"merge_by_label_id,omitempty" mapstructure:"merge_by_label_id"`
	Grouping         *GroupingSpec     `yaml:"grouping,omitempty" mapstructure:"grouping"`
}

// GroupingSpec is the YAML-level mirror of hxtypes.GroupingParams. It is
// also the JSON payload serialized into the query factory's Grouping
// selector column (spec.md section 4.2), so every field carries matching
// json/yaml/mapstructure tags.
type GroupingSpec struct {
	ByLabel       bool               `json:"by_label,omitempty" yaml:"by_label,omitempty" mapstructure:"by_label"`
	ByClass       *ByClassSpec       `json:"by_class,omitempty" yaml:"by_class,omitempty" mapstructure:"by_class"`
	ByBaseClasses *ByBaseClassesSpec `json:"by_base_classes,omitempty" yaml:"by_base_classes,omitempty" mapstructure:"by_base_classes"`
	ByProperties  *ByPropertiesSpec  `json:"by_properties,omitempty" yaml:"by_properties,omitempty" mapstructure:"by_properties"`
}

// ByClassSpec configures plain class grouping.
type ByClassSpec struct {
	HideIfNoSiblings     bool   `json:"hide_if_no_siblings,omitempty" yaml:"hide_if_no_siblings,omitempty" mapstructure:"hide_if_no_siblings"`
	HideIfOneGroupedNode bool   `json:"hide_if_one_grouped_node,omitempty" yaml:"hide_if_one_grouped_node,omitempty" mapstructure:"hide_if_one_grouped_node"`
	AutoExpand           string `json:"auto_expand,omitempty" yaml:"auto_expand,omitempty" mapstructure:"auto_expand"` // never, always, single-child
}

// ByBaseClassesSpec configures base-class grouping.
type ByBaseClassesSpec struct {
	FullClassNames       []string `json:"full_class_names" yaml:"full_class_names" mapstructure:"full_class_names"`
	HideIfNoSiblings     bool     `json:"hide_if_no_siblings,omitempty" yaml:"hide_if_no_siblings,omitempty" mapstructure:"hide_if_no_siblings"`
	HideIfOneGroupedNode bool     `json:"hide_if_one_grouped_node,omitempty" yaml:"hide_if_one_grouped_node,omitempty" mapstructure:"hide_if_one_grouped_node"`
	AutoExpand           string   `json:"auto_expand,omitempty" yaml:"auto_expand,omitempty" mapstructure:"auto_expand"`
}

// ByPropertiesSpec configures property grouping.
type ByPropertiesSpec struct {
	FullClassName        string              `json:"full_class_name" yaml:"full_class_name" mapstructure:"full_class_name"`
	PropertyGroups        []PropertyGroupSpec `json:"property_groups" yaml:"property_groups" mapstructure:"property_groups"`
	HideIfNoSiblings      bool                `json:"hide_if_no_siblings,omitempty" yaml:"hide_if_no_siblings,omitempty" mapstructure:"hide_if_no_siblings"`
	HideIfOneGroupedNode  bool                `json:"hide_if_one_grouped_node,omitempty" yaml:"hide_if_one_grouped_node,omitempty" mapstructure:"hide_if_one_grouped_node"`
	AutoExpand            string             `json:"auto_expand,omitempty" yaml:"auto_expand,omitempty" mapstructure:"auto_expand"`
}

// PropertyGroupSpec is one property-value grouping declaration.
type PropertyGroupSpec struct {
	PropertyName string             `json:"property_name" yaml:"property_name" mapstructure:"property_name"`
	Ranges       []PropertyRangeYAML `json:"ranges,omitempty" yaml:"ranges,omitempty" mapstructure:"ranges"`
}

// PropertyRangeYAML is a single `[From, To]` bucket with its display label.
type PropertyRangeYAML struct {
	From  string `json:"from" yaml:"from" mapstructure:"from"`
	To    string `json:"to" yaml:"to" mapstructure:"to"`
	Label string `json:"label" yaml:"label" mapstructure:"label"`
}

// Flatten collects every LevelDefinition in the hierarchy, root levels
// and nested children alike, into one declaration-ordered slice. A
// parent is matched purely by predicate against the node the engine is
// resolving children for (internal/hierarchy.Resolver), not by its
// position in this tree, so the tree's only remaining purpose once
// loaded is documentation; resolution always works off the flat list.
func (d *HierarchyDefinition) Flatten() []LevelDefinition {
	var out []LevelDefinition
	flattenInto(&out, d.RootLevels)
	return out
}

func flattenInto(out *[]LevelDefinition, levels []LevelDefinition) {
	for _, lvl := range levels {
		*out = append(*out, lvl)
		flattenInto(out, lvl.Children)
	}
}

// GetHierarchy retrieves a named hierarchy definition.
func (d *DefinitionsDocument) GetHierarchy(name string) (*HierarchyDefinition, error) {
	hd, ok := d.Hierarchies[name]
	if !ok {
		return nil, &NotFoundError{Kind: "hierarchy", Name: name}
	}
	return &hd, nil
}

// ListHierarchies returns all hierarchy names defined in the document.
func (d *DefinitionsDocument) ListHierarchies() []string {
	names := make([]string, 0, len(d.Hierarchies))
	for name := range d.Hierarchies {
		names = append(names, name)
	}
	return names
}

// NotFoundError reports a missing named entry in a definitions document.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return e.Kind + " " + e.Name + " not found in definitions document"
}
