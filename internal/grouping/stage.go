package grouping

import (
	"context"
	"encoding/json"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
	"github.com/dbsmedya/hierarchyengine/internal/metadata"
)

// Stage implements internal/pipeline.GroupingStage: it structurally
// satisfies that interface's Apply method without internal/pipeline
// needing to import this package (dependency inversion already set up
// on the pipeline side, see internal/pipeline/level.go).
type Stage struct {
	Inspector metadata.Inspector
	Formatter Formatter
	Registry  *Registry
}

// NewStage creates a grouping Stage. formatter may be nil, in which case
// property values are rendered with fmt's default verb.
func NewStage(inspector metadata.Inspector, formatter Formatter, registry *Registry) *Stage {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Stage{Inspector: inspector, Formatter: formatter, Registry: registry}
}

// Apply partitions in into grouping-subject instance nodes and
// pass-through nodes (generic, info, or instance nodes with no
// Grouping params declared), runs the handler chain over each distinct
// GroupingParams bucket found among the subject nodes (preserving
// multiple concurrent definitions' independent grouping configs at one
// level), and emits the result (spec.md section 4.5).
func (s *Stage) Apply(ctx context.Context, parent *hxtypes.HierarchyNode, in <-chan hxtypes.HierarchyNode) <-chan hxtypes.HierarchyNode {
	out := make(chan hxtypes.HierarchyNode)
	go func() {
		defer close(out)

		var passthrough []hxtypes.HierarchyNode
		var order []string
		buckets := make(map[string][]hxtypes.HierarchyNode)
		params := make(map[string]*hxtypes.GroupingParams)

		for n := range in {
			if !subjectToGrouping(n) {
				passthrough = append(passthrough, n)
				continue
			}
			key := groupingParamsFingerprint(n.Processing.Grouping)
			if _, ok := buckets[key]; !ok {
				order = append(order, key)
				params[key] = n.Processing.Grouping
			}
			buckets[key] = append(buckets[key], n)
		}

		for _, n := range passthrough {
			select {
			case out <- n:
			case <-ctx.Done():
				return
			}
		}

		cc := chainContext{
			ctx:       ctx,
			inspector: s.Inspector,
			formatter: s.Formatter,
			registry:  s.Registry,
			ancestor:  nonGroupingAncestorKey(parent),
		}

		for _, key := range order {
			result := groupChain(cc, buckets[key], params[key], noGroupingParentKind(parent), parent)
			for _, n := range result {
				select {
				case out <- n:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func subjectToGrouping(n hxtypes.HierarchyNode) bool {
	if !n.IsInstanceNode() {
		return false
	}
	g := n.Processing.Grouping
	if g == nil {
		return false
	}
	return g.ByLabel || g.ByClass != nil || g.ByBaseClasses != nil || g.ByProperties != nil
}

// noGroupingParentKind returns parent's Key.Kind, or a sentinel neutral
// kind at the root: parent is always a non-grouping node by
// construction (a grouping node's children are served from Registry
// without ever re-running Apply), so no handler is disabled at the top
// of one Apply call.
func noGroupingParentKind(parent *hxtypes.HierarchyNode) hxtypes.KeyKind {
	if parent == nil {
		return hxtypes.KindGeneric
	}
	return parent.Key.Kind
}

// groupingParamsFingerprint serializes a GroupingParams value for
// bucketing; it is an internal grouping key, not a wire format, so a
// plain JSON encoding is sufficient.
func groupingParamsFingerprint(g *hxtypes.GroupingParams) string {
	if g == nil {
		return ""
	}
	b, err := json.Marshal(g)
	if err != nil {
		return ""
	}
	return string(b)
}
