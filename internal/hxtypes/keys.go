// Package hxtypes contains shared types used across the hierarchy engine
// to avoid import cycles between the pipeline, grouping, filtering and
// provider packages.
package hxtypes

import (
	"fmt"
	"sort"
	"strings"
)

// KeyKind tags the variant held by a NodeKey.
type KeyKind int

const (
	// KindGeneric identifies a synthetic node declared by a definition.
	KindGeneric KeyKind = iota
	// KindInstances identifies a node backed by one or more instance keys.
	KindInstances
	// KindClassGrouping identifies a class (or base-class) grouping node.
	KindClassGrouping
	// KindLabelGrouping identifies a label grouping node.
	KindLabelGrouping
	// KindPropertyValueGrouping identifies a property-value grouping node.
	KindPropertyValueGrouping
	// KindPropertyRangeGrouping identifies a property-range grouping node.
	KindPropertyRangeGrouping
	// KindPropertyOtherGrouping identifies the catch-all "Other" property bucket.
	KindPropertyOtherGrouping
)

func (k KeyKind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindInstances:
		return "instances"
	case KindClassGrouping:
		return "class-grouping"
	case KindLabelGrouping:
		return "label-grouping"
	case KindPropertyValueGrouping:
		return "property-value-grouping"
	case KindPropertyRangeGrouping:
		return "property-range-grouping"
	case KindPropertyOtherGrouping:
		return "property-other-grouping"
	default:
		return "unknown"
	}
}

// InstanceKey identifies a single row in the underlying data source.
type InstanceKey struct {
	ClassName string
	ID        string
	IModelKey string
}

// String renders the instance key for logging and fingerprinting.
func (k InstanceKey) String() string {
	if k.IModelKey == "" {
		return k.ClassName + ":" + k.ID
	}
	return k.IModelKey + "/" + k.ClassName + ":" + k.ID
}

// PropertyGroup identifies one property that contributed to a
// property-other-grouping bucket.
type PropertyGroup struct {
	ClassName string
	Name      string
}

// NodeKey is a tagged union over the seven key variants described in
// spec.md section 3. Only the fields relevant to Kind are meaningful.
type NodeKey struct {
	Kind KeyKind

	// Generic
	ID     string
	Source string

	// Instances
	InstanceKeys NodeKeySet

	// ClassGrouping
	ClassName string

	// LabelGrouping
	Label   string
	GroupID string

	// PropertyValueGrouping / PropertyRangeGrouping
	PropertyClassName       string
	PropertyName            string
	FormattedPropertyValue  string
	FromValue               string
	ToValue                 string

	// PropertyOtherGrouping
	Properties []PropertyGroup
}

// GenericKey builds a Generic node key.
func GenericKey(id, source string) NodeKey {
	return NodeKey{Kind: KindGeneric, ID: id, Source: source}
}

// InstancesKey builds an Instances node key from a set of instance keys.
func InstancesKey(keys ...InstanceKey) NodeKey {
	set := NewNodeKeySet()
	set.AddAll(keys)
	return NodeKey{Kind: KindInstances, InstanceKeys: set}
}

// ClassGroupingKey builds a class (or base-class) grouping key.
func ClassGroupingKey(className string) NodeKey {
	return NodeKey{Kind: KindClassGrouping, ClassName: className}
}

// LabelGroupingKey builds a label grouping key.
func LabelGroupingKey(label, groupID string) NodeKey {
	return NodeKey{Kind: KindLabelGrouping, Label: label, GroupID: groupID}
}

// PropertyValueGroupingKey builds a property-value grouping key.
func PropertyValueGroupingKey(propertyClassName, propertyName, formattedValue string) NodeKey {
	return NodeKey{
		Kind:                   KindPropertyValueGrouping,
		PropertyClassName:      propertyClassName,
		PropertyName:           propertyName,
		FormattedPropertyValue: formattedValue,
	}
}

// PropertyRangeGroupingKey builds a property-range grouping key.
func PropertyRangeGroupingKey(propertyClassName, propertyName, from, to string) NodeKey {
	return NodeKey{
		Kind:              KindPropertyRangeGrouping,
		PropertyClassName: propertyClassName,
		PropertyName:      propertyName,
		FromValue:         from,
		ToValue:           to,
	}
}

// PropertyOtherGroupingKey builds the catch-all property-other grouping key.
func PropertyOtherGroupingKey(props ...PropertyGroup) NodeKey {
	cp := make([]PropertyGroup, len(props))
	copy(cp, props)
	return NodeKey{Kind: KindPropertyOtherGrouping, Properties: cp}
}

// IsGroupingKey reports whether the key belongs to any grouping variant.
func (k NodeKey) IsGroupingKey() bool {
	switch k.Kind {
	case KindClassGrouping, KindLabelGrouping, KindPropertyValueGrouping,
		KindPropertyRangeGrouping, KindPropertyOtherGrouping:
		return true
	default:
		return false
	}
}

// Equal reports whether two keys denote the same node identity.
func (k NodeKey) Equal(other NodeKey) bool {
	if k.Kind != other.Kind {
		return false
	}
	switch k.Kind {
	case KindGeneric:
		return k.ID == other.ID && k.Source == other.Source
	case KindInstances:
		return k.InstanceKeys.Equal(other.InstanceKeys)
	case KindClassGrouping:
		return k.ClassName == other.ClassName
	case KindLabelGrouping:
		return k.Label == other.Label && k.GroupID == other.GroupID
	case KindPropertyValueGrouping:
		return k.PropertyClassName == other.PropertyClassName &&
			k.PropertyName == other.PropertyName &&
			k.FormattedPropertyValue == other.FormattedPropertyValue
	case KindPropertyRangeGrouping:
		return k.PropertyClassName == other.PropertyClassName &&
			k.PropertyName == other.PropertyName &&
			k.FromValue == other.FromValue && k.ToValue == other.ToValue
	case KindPropertyOtherGrouping:
		if len(k.Properties) != len(other.Properties) {
			return false
		}
		for i := range k.Properties {
			if k.Properties[i] != other.Properties[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Fingerprint renders a stable, deterministic string identity for the key.
// It is the building block for cache fingerprints (internal/fingerprint)
// and for merge/grouping bucket identities.
func (k NodeKey) Fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|", k.Kind)
	switch k.Kind {
	case KindGeneric:
		fmt.Fprintf(&b, "%s|%s", k.ID, k.Source)
	case KindInstances:
		b.WriteString(k.InstanceKeys.Fingerprint())
	case KindClassGrouping:
		b.WriteString(k.ClassName)
	case KindLabelGrouping:
		fmt.Fprintf(&b, "%s|%s", k.Label, k.GroupID)
	case KindPropertyValueGrouping:
		fmt.Fprintf(&b, "%s|%s|%s", k.PropertyClassName, k.PropertyName, k.FormattedPropertyValue)
	case KindPropertyRangeGrouping:
		fmt.Fprintf(&b, "%s|%s|%s|%s", k.PropertyClassName, k.PropertyName, k.FromValue, k.ToValue)
	case KindPropertyOtherGrouping:
		parts := make([]string, len(k.Properties))
		for i, p := range k.Properties {
			parts[i] = p.ClassName + "." + p.Name
		}
		sort.Strings(parts)
		b.WriteString(strings.Join(parts, ","))
	}
	return b.String()
}

// NodeKeySet is a deduplicating, insertion-ordered set of InstanceKeys.
// It backs both an Instances node's own key and a grouping node's
// groupedInstanceKeys (the union of all descendant instance keys).
type NodeKeySet struct {
	order []InstanceKey
	index map[string]int
}

// NewNodeKeySet creates an empty instance-key set.
func NewNodeKeySet() NodeKeySet {
	return NodeKeySet{index: make(map[string]int)}
}

// Add inserts a key if not already present, preserving insertion order.
func (s *NodeKeySet) Add(k InstanceKey) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	fp := k.String()
	if _, ok := s.index[fp]; ok {
		return
	}
	s.index[fp] = len(s.order)
	s.order = append(s.order, k)
}

// AddAll inserts every key in keys, preserving first-seen order.
func (s *NodeKeySet) AddAll(keys []InstanceKey) {
	for _, k := range keys {
		s.Add(k)
	}
}

// Union returns a new set containing every key from s and other.
func (s NodeKeySet) Union(other NodeKeySet) NodeKeySet {
	out := NewNodeKeySet()
	out.AddAll(s.order)
	out.AddAll(other.order)
	return out
}

// Len returns the number of distinct instance keys in the set.
func (s NodeKeySet) Len() int { return len(s.order) }

// Slice returns the keys in insertion order. The returned slice must not
// be mutated by the caller.
func (s NodeKeySet) Slice() []InstanceKey { return s.order }

// Equal reports whether two sets contain the same keys (order-independent).
func (s NodeKeySet) Equal(other NodeKeySet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, k := range s.order {
		if _, ok := other.index[k.String()]; !ok {
			return false
		}
	}
	return true
}

// Fingerprint renders a stable identity for the set, independent of
// insertion order (the spec defines groupedInstanceKeys as a union, so
// two equal sets built in different orders must fingerprint identically).
func (s NodeKeySet) Fingerprint() string {
	parts := make([]string, len(s.order))
	for i, k := range s.order {
		parts[i] = k.String()
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
