package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/dbsmedya/hierarchyengine/internal/hxconfig"
	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

// decodeGrouping parses the query factory's JSON-encoded Grouping
// column (an hxconfig.GroupingSpec) into the pipeline-facing
// hxtypes.GroupingParams shape (spec.md section 4.2/4.5).
func decodeGrouping(raw any) (*hxtypes.GroupingParams, error) {
	var b []byte
	switch v := raw.(type) {
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return nil, fmt.Errorf("expected string/[]byte Grouping column, got %T", raw)
	}
	if len(b) == 0 {
		return nil, nil
	}

	var spec hxconfig.GroupingSpec
	if err := json.Unmarshal(b, &spec); err != nil {
		return nil, err
	}
	return groupingParamsFromSpec(&spec), nil
}

// ProcessingParamsFromSpec converts a definition's declared
// hxconfig.ProcessingSpec into the pipeline-facing hxtypes.ProcessingParams
// shape. Query definitions get this for free via decodeGrouping's
// round-trip through the Grouping SQL column; internal/provider calls
// this directly for generic node definitions, which have no row to
// decode from.
func ProcessingParamsFromSpec(spec hxconfig.ProcessingSpec) hxtypes.ProcessingParams {
	return hxtypes.ProcessingParams{
		HideIfNoChildren: spec.HideIfNoChildren,
		HideInHierarchy:  spec.HideInHierarchy,
		MergeByLabelID:   spec.MergeByLabelID,
		Grouping:         groupingParamsFromSpec(spec.Grouping),
	}
}

func groupingParamsFromSpec(spec *hxconfig.GroupingSpec) *hxtypes.GroupingParams {
	if spec == nil {
		return nil
	}
	params := &hxtypes.GroupingParams{ByLabel: spec.ByLabel}

	if c := spec.ByClass; c != nil {
		params.ByClass = &hxtypes.ByClassParams{
			HideIfNoSiblings:     c.HideIfNoSiblings,
			HideIfOneGroupedNode: c.HideIfOneGroupedNode,
			AutoExpand:           autoExpandPolicy(c.AutoExpand),
		}
	}
	if bc := spec.ByBaseClasses; bc != nil {
		params.ByBaseClasses = &hxtypes.ByBaseClassesParams{
			FullClassNames:       bc.FullClassNames,
			HideIfNoSiblings:     bc.HideIfNoSiblings,
			HideIfOneGroupedNode: bc.HideIfOneGroupedNode,
			AutoExpand:           autoExpandPolicy(bc.AutoExpand),
		}
	}
	if bp := spec.ByProperties; bp != nil {
		groups := make([]hxtypes.PropertyGroupSpec, len(bp.PropertyGroups))
		for i, g := range bp.PropertyGroups {
			ranges := make([]hxtypes.PropertyRangeSpec, len(g.Ranges))
			for j, r := range g.Ranges {
				ranges[j] = hxtypes.PropertyRangeSpec{FromValue: r.From, ToValue: r.To, Label: r.Label}
			}
			groups[i] = hxtypes.PropertyGroupSpec{
				FullClassName: bp.FullClassName,
				PropertyName:  g.PropertyName,
				Ranges:        ranges,
			}
		}
		params.ByProperties = &hxtypes.ByPropertiesParams{
			FullClassName:        bp.FullClassName,
			PropertyGroups:       groups,
			HideIfNoSiblings:     bp.HideIfNoSiblings,
			HideIfOneGroupedNode: bp.HideIfOneGroupedNode,
			AutoExpand:           autoExpandPolicy(bp.AutoExpand),
		}
	}
	return params
}

func autoExpandPolicy(s string) hxtypes.AutoExpandPolicy {
	switch s {
	case "always":
		return hxtypes.AutoExpandAlways
	case "single-child":
		return hxtypes.AutoExpandSingleChild
	default:
		return hxtypes.AutoExpandNever
	}
}
