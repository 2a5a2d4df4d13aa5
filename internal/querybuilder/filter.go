package querybuilder

// PropertyValueType names the strict types a filter rule's value is
// compared as (spec.md section 4.2, "values strictly typed per
// property").
type PropertyValueType string

const (
	TypeString   PropertyValueType = "string"
	TypeInt      PropertyValueType = "int"
	TypeFloat    PropertyValueType = "float"
	TypeBoolean  PropertyValueType = "boolean"
	TypePoint2d  PropertyValueType = "point2d"
	TypePoint3d  PropertyValueType = "point3d"
	TypeDateTime PropertyValueType = "datetime"
	TypeID       PropertyValueType = "id"
)

// FilterOperator names the comparison operators a filter rule may use.
type FilterOperator string

const (
	OpEqual          FilterOperator = "equal"
	OpNotEqual       FilterOperator = "not-equal"
	OpLess           FilterOperator = "less"
	OpLessOrEqual    FilterOperator = "less-or-equal"
	OpGreater        FilterOperator = "greater"
	OpGreaterOrEqual FilterOperator = "greater-or-equal"
	OpLike           FilterOperator = "like"
	OpIn             FilterOperator = "in"
	OpIsNull         FilterOperator = "is-null"
	OpIsNotNull      FilterOperator = "is-not-null"
)

// RuleKind tags the variant held by a Rule.
type RuleKind int

const (
	RuleCompare RuleKind = iota
	RuleAnd
	RuleOr
	RuleNot
)

// Point2d is a two-component point value for component-wise BETWEEN
// comparisons.
type Point2d struct{ X, Y float64 }

// Point3d is a three-component point value for component-wise BETWEEN
// comparisons.
type Point3d struct{ X, Y, Z float64 }

// Rule is one node of a filter rule tree: either a leaf property
// comparison or a logical combinator over child rules.
type Rule struct {
	Kind RuleKind

	// RuleCompare fields.
	PropertyClassName string
	PropertyName      string
	PropertyType      PropertyValueType
	Operator          FilterOperator
	Value             any
	Values            []any // for OpIn

	// RuleAnd / RuleOr / RuleNot fields.
	Children []Rule
}

// And builds a conjunction rule.
func And(children ...Rule) Rule { return Rule{Kind: RuleAnd, Children: children} }

// Or builds a disjunction rule.
func Or(children ...Rule) Rule { return Rule{Kind: RuleOr, Children: children} }

// Not negates a rule.
func Not(child Rule) Rule { return Rule{Kind: RuleNot, Children: []Rule{child}} }

// Compare builds a single property-comparison leaf rule.
func Compare(className, property string, propType PropertyValueType, op FilterOperator, value any) Rule {
	return Rule{
		Kind:              RuleCompare,
		PropertyClassName: className,
		PropertyName:      property,
		PropertyType:      propType,
		Operator:          op,
		Value:             value,
	}
}

// CompareIn builds an IN leaf rule.
func CompareIn(className, property string, propType PropertyValueType, values []any) Rule {
	return Rule{
		Kind:              RuleCompare,
		PropertyClassName: className,
		PropertyName:      property,
		PropertyType:      propType,
		Operator:          OpIn,
		Values:            values,
	}
}

// RelatedInstanceSpec declares one relationship-traversal step the filter
// must join through before a property comparison applies.
type RelatedInstanceSpec struct {
	RelationshipClassName string
	TargetClassName       string
	IsForwardDirection    bool
}

// GenericInstanceFilter is the platform-neutral filter input compiled
// into a `{from, joins, where}` SQL fragment (spec.md section 4.2).
type GenericInstanceFilter struct {
	PropertyClassNames []string
	FilteredClassNames []string
	RelatedInstances   []RelatedInstanceSpec
	Rule               Rule
}

// UnknownSchemaOrClassError is raised when a filter references a class or
// schema the metadata graph does not know, per spec.md section 4.2/4.9.
type UnknownSchemaOrClassError struct {
	FullClassName string
}

func (e *UnknownSchemaOrClassError) Error() string {
	return "unknown schema or class: " + e.FullClassName
}

// UnsupportedFilterPropertyError is raised when a filter rule targets a
// struct, array, or non-existent property (spec.md section 4.2, "Struct/
// array/non-existent properties raise errors").
type UnsupportedFilterPropertyError struct {
	ClassName    string
	PropertyName string
	Reason       string
}

func (e *UnsupportedFilterPropertyError) Error() string {
	return "unsupported filter property " + e.ClassName + "." + e.PropertyName + ": " + e.Reason
}
