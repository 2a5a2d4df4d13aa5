package provider

import (
	"context"
	"sort"
	"sync"

	"github.com/dbsmedya/hierarchyengine/internal/grouping"
	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
	"github.com/dbsmedya/hierarchyengine/internal/pipeline"
)

// HierarchyProvider is the subset of Provider's surface a MergingProvider
// fans requests out to. Provider satisfies it; tests may supply a fake.
type HierarchyProvider interface {
	GetNodes(ctx context.Context, req GetNodesOptions) (<-chan hxtypes.HierarchyNode, error)
	SetFormatter(f grouping.Formatter)
	SetHierarchySearch(paths []hxtypes.IdentifierPath)
	Dispose() error
}

// MergingProvider concatenates nodes from several providers asked for
// the children of the same parent, then re-sorts the combined set by
// label (spec.md section 4.8, "Provider Merger" / section 2's component
// table). Grounded on internal/archiver/orchestrator.go's top-level
// coordinator shape, generalized from "own every sub-component" to "fan
// the same request out to every member and recombine the results".
type MergingProvider struct {
	providers []*Provider
}

// NewMergingProvider constructs a MergingProvider over providers, in the
// order whose output determines tie-breaking when two nodes share a
// label (stable sort preserves provider-declaration order, mirroring
// spec.md section 5's "between multiple definitions ... order is
// preserved").
func NewMergingProvider(providers ...*Provider) *MergingProvider {
	return &MergingProvider{providers: providers}
}

// GetNodes requests req.ParentNode's children from every member
// provider concurrently, concatenates their streams, and re-sorts the
// combined result by natural-case-insensitive label (the same rule
// internal/pipeline.Sort applies within a single provider's level).
func (m *MergingProvider) GetNodes(ctx context.Context, req GetNodesOptions) (<-chan hxtypes.HierarchyNode, error) {
	type result struct {
		nodes []hxtypes.HierarchyNode
		err   error
	}
	results := make([]result, len(m.providers))

	var wg sync.WaitGroup
	for i, p := range m.providers {
		wg.Add(1)
		go func(i int, p *Provider) {
			defer wg.Done()
			ch, err := p.GetNodes(ctx, req)
			if err != nil {
				results[i] = result{err: err}
				return
			}
			var nodes []hxtypes.HierarchyNode
			for n := range ch {
				nodes = append(nodes, n)
			}
			results[i] = result{nodes: nodes}
		}(i, p)
	}
	wg.Wait()

	var combined []hxtypes.HierarchyNode
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		combined = append(combined, r.nodes...)
	}
	sort.SliceStable(combined, func(i, j int) bool {
		return pipeline.NaturalLess(combined[i].Label, combined[j].Label)
	})

	out := make(chan hxtypes.HierarchyNode)
	go func() {
		defer close(out)
		for _, n := range combined {
			select {
			case out <- n:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// SetFormatter propagates to every member provider (spec.md section
// 4.8, "propagates setFormatter/setHierarchySearch/dispose to each
// child").
func (m *MergingProvider) SetFormatter(f func(ctx context.Context, raw any) (string, error)) {
	for _, p := range m.providers {
		p.SetFormatter(f)
	}
}

// SetHierarchySearch propagates to every member provider.
func (m *MergingProvider) SetHierarchySearch(paths []hxtypes.IdentifierPath) {
	for _, p := range m.providers {
		p.SetHierarchySearch(paths)
	}
}

// Dispose disposes every member provider, collecting the first error
// encountered but still attempting to dispose the rest.
func (m *MergingProvider) Dispose() error {
	var first error
	for _, p := range m.providers {
		if err := p.Dispose(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
