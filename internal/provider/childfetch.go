package provider

import (
	"context"

	"github.com/dbsmedya/hierarchyengine/internal/filtering"
	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
	"github.com/dbsmedya/hierarchyengine/internal/pipeline"
)

// childFetcher builds the pipeline.ChildFetcher a level's own
// RunLevel call uses for both hide-in-hierarchy (batched, stopOnFirstChild
// false) and determine-children (single parent, stopOnFirstChild true).
// A fetch failure for one parent degrades to "no children for that
// parent" rather than aborting the whole batch, matching
// HideInHierarchy's own documented degrade-on-error behavior.
func (p *Provider) childFetcher(overlay *filtering.Overlay) pipeline.ChildFetcher {
	return func(ctx context.Context, parents []hxtypes.HierarchyNode, stopOnFirstChild bool) (<-chan hxtypes.HierarchyNode, error) {
		out := make(chan hxtypes.HierarchyNode)
		go func() {
			defer close(out)
			for i := range parents {
				parent := parents[i]
				nodes, err := p.childrenOf(ctx, overlay, &parent)
				if err != nil {
					continue
				}
				if stopOnFirstChild && len(nodes) > 1 {
					nodes = nodes[:1]
				}
				for _, n := range nodes {
					select {
					case out <- n:
					case <-ctx.Done():
						return
					}
				}
				if stopOnFirstChild && len(nodes) > 0 {
					return
				}
			}
		}()
		return out, nil
	}
}

// childrenOf resolves a single parent's children: served straight from
// the grouping Registry for a grouping-key parent (its children were
// already fetched and classified while building the level that produced
// it, internal/grouping.Registry's own contract), or through the normal
// cached/single-flighted level resolution for every other parent shape.
func (p *Provider) childrenOf(ctx context.Context, overlay *filtering.Overlay, parent *hxtypes.HierarchyNode) ([]hxtypes.HierarchyNode, error) {
	if parent.Key.IsGroupingKey() {
		children, _ := p.registry.Children(parent.Key)
		return children, nil
	}

	ch, err := p.resolveLevel(ctx, overlay, parent, GetNodesOptions{ParentNode: parent})
	if err != nil {
		return nil, err
	}
	var out []hxtypes.HierarchyNode
	for n := range ch {
		out = append(out, n)
	}
	return out, nil
}
