// Package querybuilder is the Node Select Query Factory: it produces
// ECSQL-like text with a fixed column order forming a contract with the
// pipeline's parse stage, and compiles the platform-neutral
// GenericInstanceFilter into a `{from, joins, where}` fragment (spec.md
// section 4.2).
package querybuilder

// InstanceNodeColumns is the fixed SELECT column order every instance
// node query must produce, in the exact order the parse stage expects.
var InstanceNodeColumns = []string{
	"FullClassName",
	"ECInstanceId",
	"DisplayLabel",
	"HasChildren",
	"HideIfNoChildren",
	"HideNodeInHierarchy",
	"Grouping",
	"MergeByLabelId",
	"ExtendedData",
	"AutoExpand",
	"SupportsFiltering",
}

// FilteringInfoColumns is the fixed column set of the FilteringInfo CTE
// joined onto an instance-node query when an identifier-path filter is
// active (spec.md section 4.6 / wire surface).
var FilteringInfoColumns = []string{
	"ECInstanceId",
	"IsFilterTarget",
	"FilterTargetOptions",
	"FilterClassName",
	"FilterValidPathIndex",
	"FilterIdentifiersCountAfter",
}
