package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"

	"github.com/dbsmedya/hierarchyengine/internal/hxconfig"
)

// definitionStyle highlights a level definition's predicate the way
// Styles highlights a node kind.
var definitionStyle = color.New(color.FgCyan)

// Plan prints a hierarchy definition's root-to-leaf shape: one line per
// LevelDefinition, indented by nesting depth, showing its predicate,
// whether it is generic or query-backed, and its onlyIfNotHandled/
// processing flags. Mirrors cmd/goarchive/cmd/plan.go's copy/delete
// order listing, generalized from a flat table order to a recursive
// definition tree.
func Plan(w io.Writer, name string, hd *hxconfig.HierarchyDefinition) {
	Header(w, "Hierarchy Plan: %s", name)
	fmt.Fprintln(w)
	Section(w, "Root Levels")
	for _, lvl := range hd.RootLevels {
		planLevel(w, lvl, 0)
	}
}

func planLevel(w io.Writer, lvl hxconfig.LevelDefinition, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s- %s %s\n", indent, definitionStyle.Sprint(lvl.ID), planFlags(lvl))
	for _, child := range lvl.Children {
		planLevel(w, child, depth+1)
	}
}

func planFlags(lvl hxconfig.LevelDefinition) string {
	var flags []string
	flags = append(flags, planPredicate(lvl.Predicate))
	if lvl.Generic != nil {
		flags = append(flags, fmt.Sprintf("generic=%s", lvl.Generic.NodeID))
	}
	if lvl.Query != nil {
		flags = append(flags, fmt.Sprintf("query=%s", lvl.Query.FullClassName))
	}
	if lvl.OnlyIfNotHandled {
		flags = append(flags, "onlyIfNotHandled")
	}
	if lvl.Processing.HideInHierarchy {
		flags = append(flags, "hideInHierarchy")
	}
	if lvl.Processing.HideIfNoChildren {
		flags = append(flags, "hideIfNoChildren")
	}
	if lvl.Processing.Grouping != nil {
		flags = append(flags, "grouped")
	}
	return "[" + strings.Join(flags, ", ") + "]"
}

func planPredicate(p hxconfig.PredicateSpec) string {
	switch {
	case p.IsRoot:
		return "root"
	case p.ParentNodeID != "":
		return "parent=" + p.ParentNodeID
	case p.ParentInstancesOfClass != "":
		return "parentClass=" + p.ParentInstancesOfClass
	default:
		return "unmatched"
	}
}
