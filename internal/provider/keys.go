package provider

import (
	"context"

	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
)

// GetNodeInstanceKeys is equivalent to walking GetNodes and, for
// instance and grouping nodes, yielding each contained instance key
// (spec.md section 6). It streams keys directly off the node channel as
// nodes arrive rather than collecting the full node slice first, so a
// caller only interested in keys never holds more than one level's
// nodes (already cached/materialized internally) translated into keys
// at a time.
func (p *Provider) GetNodeInstanceKeys(ctx context.Context, opts GetNodeInstanceKeysOptions) (<-chan hxtypes.InstanceKey, error) {
	nodes, err := p.GetNodes(ctx, GetNodesOptions{
		ParentNode:     opts.ParentNode,
		InstanceFilter: opts.InstanceFilter,
	})
	if err != nil {
		return nil, err
	}

	out := make(chan hxtypes.InstanceKey)
	go func() {
		defer close(out)
		for node := range nodes {
			for _, k := range node.InstanceKeys().Slice() {
				select {
				case out <- k:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
