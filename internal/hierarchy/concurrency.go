package hierarchy

import (
	"github.com/sourcegraph/conc/iter"
)

// mapGroupsConcurrently resolves each instance-class group's matching
// definitions concurrently (each call may hit internal/metadata's
// Inspector, a potentially I/O-bound operation), using
// sourcegraph/conc/iter.Map to fan out while preserving the groups'
// declaration order in the returned slice — spec.md section 4.1's
// "requested... concurrently... preserving definition-declaration order
// on the way back out."
func mapGroupsConcurrently(groups []InstanceGroup, f func(InstanceGroup) ([]Definition, error)) ([][]Definition, error) {
	type result struct {
		defs []Definition
		err  error
	}

	results := iter.Map(groups, func(g *InstanceGroup) result {
		defs, err := f(*g)
		return result{defs: defs, err: err}
	})

	out := make([][]Definition, len(results))
	for i, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		out[i] = r.defs
	}
	return out, nil
}
