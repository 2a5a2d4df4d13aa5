// Package render draws hierarchy nodes and hierarchy-level definitions
// as an ASCII tree for cmd/hiertree, the way internal/mermaidascii drew
// dependency graphs for goarchive's `plan` command. Grounded on
// internal/mermaidascii/{diagram,render,root}.go's "parse a declarative
// structure, walk it, emit aligned text" shape and on
// cmd/goarchive/cmd/plan.go's printHeader/printSection/printOrderItem
// helpers, generalized from table dependency rows to hierarchy nodes.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

// Styles maps a node kind to the gookit/color style used to print its
// label. Exported so a CLI flag (e.g. --no-color) can swap in a no-op
// style set.
var Styles = map[hxtypes.KeyKind]color.Style{
	hxtypes.KindGeneric:               color.New(color.FgCyan),
	hxtypes.KindInstances:             color.New(color.FgWhite),
	hxtypes.KindClassGrouping:         color.New(color.FgYellow, color.OpBold),
	hxtypes.KindLabelGrouping:         color.New(color.FgYellow),
	hxtypes.KindPropertyValueGrouping: color.New(color.FgMagenta),
	hxtypes.KindPropertyRangeGrouping: color.New(color.FgMagenta),
	hxtypes.KindPropertyOtherGrouping: color.New(color.FgMagenta, color.OpItalic),
}

// filterTargetStyle highlights a node whose Filtering.IsFilterTarget is
// set (spec.md section 4.6), regardless of its kind's own style.
var filterTargetStyle = color.New(color.FgGreen, color.OpBold)

// Node prints one node of a hierarchy level: its key-kind colored label,
// indented by its depth, followed by a bracketed summary of children
// state and instance count. depth is the node's distance from the
// level's own parent (0 for a direct child).
func Node(w io.Writer, n hxtypes.HierarchyNode, depth int) {
	indent := strings.Repeat("  ", depth)
	label := n.Label
	if label == "" {
		label = "(no label)"
	}

	style := styleFor(n)
	fmt.Fprintf(w, "%s%s %s\n", indent, style.Sprint(label), summary(n))
}

func styleFor(n hxtypes.HierarchyNode) color.Style {
	if n.Filtering.IsFilterTarget {
		return filterTargetStyle
	}
	if s, ok := Styles[n.Key.Kind]; ok {
		return s
	}
	return color.New()
}

// summary formats the bracketed detail suffix printed after a node's
// label: its key kind, children state, and instance-key count when
// non-zero.
func summary(n hxtypes.HierarchyNode) string {
	parts := []string{n.Key.Kind.String()}

	switch n.Children {
	case hxtypes.ChildrenYes:
		parts = append(parts, "children=yes")
	case hxtypes.ChildrenNo:
		parts = append(parts, "children=no")
	default:
		parts = append(parts, "children=unknown")
	}

	if keys := n.InstanceKeys(); keys.Len() > 0 {
		parts = append(parts, fmt.Sprintf("instances=%d", keys.Len()))
	}
	if n.Filtering.IsFilterTarget {
		parts = append(parts, "filter-target")
	}
	if n.AutoExpand != nil && *n.AutoExpand {
		parts = append(parts, "auto-expand")
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

// Tree prints a fully-resolved tree of nodes in declaration order,
// reading each node's depth off its own ParentKeys length relative to
// the root call, the same way internal/mermaidascii's renderer walks a
// pre-parsed diagram rather than re-deriving structure from raw text.
func Tree(w io.Writer, nodes []hxtypes.HierarchyNode, baseDepth int) {
	for _, n := range nodes {
		Node(w, n, n.Depth()-baseDepth)
	}
}

// Header prints a boxed title line, matching
// cmd/goarchive/cmd/plan.go's printHeader texture but using
// mattn/go-runewidth for the title's display width instead of plan.go's
// hand-rolled visualWidth, since a node label may contain multi-byte
// characters a plain rune count would mis-size.
func Header(w io.Writer, format string, args ...any) {
	title := fmt.Sprintf(format, args...)
	width := runewidth.StringWidth(title) + 4
	fmt.Fprintln(w, strings.Repeat("=", width))
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, strings.Repeat("=", width))
}

// Section prints an underlined section title.
func Section(w io.Writer, title string) {
	fmt.Fprintf(w, "[%s]\n", title)
	fmt.Fprintln(w, strings.Repeat("-", runewidth.StringWidth(title)+2))
}
