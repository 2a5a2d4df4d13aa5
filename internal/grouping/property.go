package grouping

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

// Formatter renders a raw property value as display text, standing in
// for spec.md section 6's external primitive-value formatter capability.
type Formatter func(ctx context.Context, raw any) (string, error)

// defaultFormatter stringifies with fmt's default verb, used when no
// Formatter is configured.
func defaultFormatter(_ context.Context, raw any) (string, error) {
	if raw == nil {
		return "", nil
	}
	if s, ok := raw.(string); ok {
		return s, nil
	}
	return fmt.Sprintf("%v", raw), nil
}

const (
	unspecifiedBucketLabel = "Unspecified"
	otherBucketLabel       = "Other"
)

// propBucket is one property-grouping bucket being assembled: its node
// key/label plus the members collected so far. hxtypes.NodeKey embeds a
// NodeKeySet (which holds a map), so it cannot itself be a Go map key;
// buckets are indexed by the key's string Fingerprint instead.
type propBucket struct {
	key   hxtypes.NodeKey
	label string
}

// groupByPropertyStep builds one property grouping layer for a single
// declared property group spec (spec.md section 4.5's property
// handler): null/missing values fall into "Unspecified", out-of-range
// values with Ranges configured fall into "Other", everything else
// buckets by formatted value or by its matching range.
//
// Raw values are read from each node's ExtendedData, keyed by property
// name: the fixed 11-column SELECT contract (internal/querybuilder)
// does not carry arbitrary grouped-property values on the wire, so a
// definition that groups by property is expected to populate
// ExtendedData[propertyName] via its parseNode hook (pipeline.ParseHook,
// applied by pipeline.ParseSource) the same way it would populate any other extended
// data field.
func groupByPropertyStep(ctx context.Context, nodes []hxtypes.HierarchyNode, className string, spec hxtypes.PropertyGroupSpec, formatter Formatter) []group {
	if formatter == nil {
		formatter = defaultFormatter
	}

	var order []string
	descriptors := make(map[string]propBucket)
	buckets := make(map[string][]hxtypes.HierarchyNode)

	add := func(k hxtypes.NodeKey, label string, n hxtypes.HierarchyNode) {
		fp := k.Fingerprint()
		if _, ok := descriptors[fp]; !ok {
			descriptors[fp] = propBucket{key: k, label: label}
			order = append(order, fp)
		}
		buckets[fp] = append(buckets[fp], n)
	}

	for _, n := range nodes {
		raw, has := n.ExtendedData[spec.PropertyName]
		if !has || raw == nil {
			add(hxtypes.PropertyValueGroupingKey(className, spec.PropertyName, unspecifiedBucketLabel), unspecifiedBucketLabel, n)
			continue
		}

		if len(spec.Ranges) > 0 {
			if rg, ok := matchRange(raw, spec.Ranges); ok {
				add(hxtypes.PropertyRangeGroupingKey(className, spec.PropertyName, rg.FromValue, rg.ToValue), rg.Label, n)
				continue
			}
			add(hxtypes.PropertyOtherGroupingKey(hxtypes.PropertyGroup{ClassName: className, Name: spec.PropertyName}), otherBucketLabel, n)
			continue
		}

		formatted, err := formatter(ctx, raw)
		if err != nil || formatted == "" {
			add(hxtypes.PropertyValueGroupingKey(className, spec.PropertyName, unspecifiedBucketLabel), unspecifiedBucketLabel, n)
			continue
		}
		add(hxtypes.PropertyValueGroupingKey(className, spec.PropertyName, formatted), formatted, n)
	}

	groups := make([]group, 0, len(order))
	for _, fp := range order {
		d := descriptors[fp]
		groups = append(groups, group{
			node:     hxtypes.HierarchyNode{Key: d.key, Label: d.label},
			children: buckets[fp],
		})
	}
	return groups
}

// matchRange finds the first declared range containing raw's numeric
// value, returning false if raw isn't numeric or no range matches.
func matchRange(raw any, ranges []hxtypes.PropertyRangeSpec) (hxtypes.PropertyRangeSpec, bool) {
	v, ok := toFloat(raw)
	if !ok {
		return hxtypes.PropertyRangeSpec{}, false
	}
	for _, r := range ranges {
		from, fromOK := parseFloat(r.FromValue)
		to, toOK := parseFloat(r.ToValue)
		if fromOK && v < from {
			continue
		}
		if toOK && v > to {
			continue
		}
		return r, true
	}
	return hxtypes.PropertyRangeSpec{}, false
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		return parseFloat(v)
	default:
		return 0, false
	}
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
