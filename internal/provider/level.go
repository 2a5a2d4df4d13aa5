package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/dbsmedya/hierarchyengine/internal/cache"
	"github.com/dbsmedya/hierarchyengine/internal/filtering"
	"github.com/dbsmedya/hierarchyengine/internal/fingerprint"
	"github.com/dbsmedya/hierarchyengine/internal/hierarchy"
	"github.com/dbsmedya/hierarchyengine/internal/hxconfig"
	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
	"github.com/dbsmedya/hierarchyengine/internal/pipeline"
	"github.com/dbsmedya/hierarchyengine/internal/querybuilder"
	"github.com/dbsmedya/hierarchyengine/internal/queryexec"
)

// GetNodes resolves one hierarchy level below req.ParentNode (spec.md
// section 4.8). The returned channel is closed once the level is fully
// streamed, an error, or ctx cancellation.
func (p *Provider) GetNodes(ctx context.Context, req GetNodesOptions) (<-chan hxtypes.HierarchyNode, error) {
	overlay := p.currentOverlay()
	return p.resolveLevel(ctx, overlay, req.ParentNode, req)
}

// deriveState resolves the filtering.MatchState a level's children
// should run under: the overlay's root state at the root, or a state
// rebuilt straight from the parent's own public
// FilteredChildrenIdentifierPaths/HasFilterTargetAncestor fields
// otherwise, so a caller resuming a branch across two separate GetNodes
// calls needs nothing beyond the node it already has (spec.md section
// 4.6).
func (p *Provider) deriveState(overlay *filtering.Overlay, parent *hxtypes.HierarchyNode) filtering.MatchState {
	if parent == nil {
		return overlay.RootState()
	}
	return filtering.StateFromChildPaths(parent.Filtering.FilteredChildrenIdentifierPaths, parent.Filtering.HasFilterTargetAncestor)
}

// resolveLevel implements the cache/single-flight/replay sequence of
// spec.md section 4.7: a cache hit replays immediately; otherwise the
// level is resolved under the per-key lock, written to the cache only
// on success (a failed level leaves no cached entry), and then
// replayed. ignoreCache bypasses the read but still performs the write.
func (p *Provider) resolveLevel(ctx context.Context, overlay *filtering.Overlay, parent *hxtypes.HierarchyNode, req GetNodesOptions) (<-chan hxtypes.HierarchyNode, error) {
	parentKey := fingerprint.Parent(parent)
	filterJSON, err := encodeFilter(req.InstanceFilter)
	if err != nil {
		return nil, err
	}
	variationKey := fingerprint.Variation(filterJSON, req.HierarchyLevelSizeLimit)

	if !req.IgnoreCache {
		if entry, ok := p.cacheStore.Get(parentKey, variationKey); ok {
			return cache.Replay(ctx, entry), nil
		}
	}

	lockKey := parentKey + "|" + variationKey
	var entry cache.Entry
	err = p.locks.Do(ctx, lockKey, func() error {
		if !req.IgnoreCache {
			if e, ok := p.cacheStore.Get(parentKey, variationKey); ok {
				entry = e
				return nil
			}
		}
		state := p.deriveState(overlay, parent)
		nodes, runErr := p.runLevel(ctx, overlay, state, parent, req)
		if runErr != nil {
			return runErr
		}
		entry = cache.Entry{Nodes: nodes}
		p.cacheStore.Put(parentKey, variationKey, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cache.Replay(ctx, entry), nil
}

// runLevel resolves the matching definitions for parent, builds one
// source per definition, concatenates them in declaration order, and
// drives the fixed pipeline (internal/pipeline.RunLevel) to completion,
// fully materializing the result for caching (spec.md section 4.7's
// "fully materialized node slice").
func (p *Provider) runLevel(ctx context.Context, overlay *filtering.Overlay, state filtering.MatchState, parent *hxtypes.HierarchyNode, req GetNodesOptions) ([]hxtypes.HierarchyNode, error) {
	defs, err := p.resolver.Resolve(ctx, p.defs, parent)
	if err != nil {
		return nil, err
	}
	defs = overlay.MatchGenericDefinitions(state, defs)

	sources := make([]<-chan hxtypes.HierarchyNode, 0, len(defs))
	errSources := make([]<-chan error, 0, len(defs))
	for _, def := range defs {
		src, errCh, buildErr := p.sourceFor(ctx, def, overlay, state, req)
		if buildErr != nil {
			if unk, ok := buildErr.(*querybuilder.UnknownSchemaOrClassError); ok {
				sources = append(sources, oneNodeChan(pipeline.UnknownClassNode(unk)))
				errSources = append(errSources, nil)
				continue
			}
			return nil, buildErr
		}
		sources = append(sources, src)
		errSources = append(errSources, errCh)
	}

	prepared := p.prepareLevel(ctx, overlay, state, parent, sequentialMerge(ctx, sources, errSources))

	final := pipeline.RunLevel(ctx, prepared, pipeline.RunLevelOptions{
		Parent:       parent,
		PostHook:     p.postHook(state),
		ChildFetcher: p.childFetcher(overlay),
		Grouping:     p.grouping,
		AutoExpand:   overlay.AutoExpandForGroup,
		Yielder:      p.yielder,
	})

	var out []hxtypes.HierarchyNode
	for n := range final {
		out = append(out, n)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// sequentialMerge concatenates sources in order (definition-declaration
// order, spec.md section 4.4's ordering guarantee), surfacing the first
// non-nil error any definition's errSources channel reports. Running
// definitions sequentially rather than fanning them out concurrently
// keeps row order stable for the final stable-sort stage's tie-breaking,
// at the cost of not overlapping separate definitions' own query
// latency — acceptable since a level's definition count and row limits
// are both small.
func sequentialMerge(ctx context.Context, sources []<-chan hxtypes.HierarchyNode, errSources []<-chan error) <-chan hxtypes.HierarchyNode {
	out := make(chan hxtypes.HierarchyNode)
	go func() {
		defer close(out)
		for i, src := range sources {
			for n := range src {
				select {
				case out <- n:
				case <-ctx.Done():
					return
				}
			}
			if errSources[i] == nil {
				continue
			}
			if err, ok := <-errSources[i]; ok && err != nil {
				return
			}
		}
	}()
	return out
}

func oneNodeChan(n hxtypes.HierarchyNode) <-chan hxtypes.HierarchyNode {
	ch := make(chan hxtypes.HierarchyNode, 1)
	ch <- n
	close(ch)
	return ch
}

// sourceFor builds one definition's node source: a single synthetic
// node for a generic definition, or a query-backed stream of parsed
// instance nodes for a query definition.
func (p *Provider) sourceFor(ctx context.Context, def hierarchy.Definition, overlay *filtering.Overlay, state filtering.MatchState, req GetNodesOptions) (<-chan hxtypes.HierarchyNode, <-chan error, error) {
	if def.IsGeneric() {
		return oneNodeChan(buildGenericNode(def.Level.Generic, def.Level.Processing)), nil, nil
	}

	spec := *def.Level.Query
	spec.Where = substituteParentIDs(spec.Where, def.ContextInstanceIDs)

	targetIDs, restrict := overlay.TargetInstanceIDs(state)
	filterCtx := querybuilder.FilteringContext{
		Active:                  overlay.Configured(),
		HasFilterTargetAncestor: state.HasFilterTargetAncestor(),
	}
	if restrict {
		filterCtx.TargetIDs = targetIDs
	}

	query, err := p.factory.BuildInstanceNodesQuery(ctx, &spec, def.Level.Processing, req.InstanceFilter, filterCtx)
	if err != nil {
		return nil, nil, err
	}

	limit := req.HierarchyLevelSizeLimit
	if limit == 0 {
		limit = p.defaultRowLimit
	}
	if limit < 0 {
		limit = 0
	}

	rows, err := p.runner.Run(ctx, query, queryexec.Options{StatementTimeoutSeconds: p.statementTimeoutSeconds}, limit)
	if err != nil {
		return nil, nil, err
	}

	nodes, errCh := pipeline.ParseSource(ctx, rows, spec.FullClassName, nil, nil, p.yielder)
	return nodes, errCh, nil
}

// buildGenericNode constructs the synthetic node a GenericNodeSpec
// declares (spec.md section 4.1). Its children are always unknown until
// probed: a generic definition declares no query of its own, so whether
// it has children depends entirely on whatever definitions match it as
// a parent.
func buildGenericNode(spec *hxconfig.GenericNodeSpec, processing hxconfig.ProcessingSpec) hxtypes.HierarchyNode {
	return hxtypes.HierarchyNode{
		Key:        hxtypes.GenericKey(spec.NodeID, ""),
		Label:      spec.Label,
		Children:   hxtypes.ChildrenUnknown,
		Processing: pipeline.ProcessingParamsFromSpec(processing),
	}
}

// substituteParentIDs replaces the {{parentIds}} token in where (if
// present) with a literal comma-joined, single-quoted ID list, narrowing
// a definition matched via parentInstancesOfClass to just the children
// of the specific parent instances resolved for this call. Query
// definitions never bind parameters through QuerySpec.Where otherwise,
// so a simple text substitution is sufficient.
func substituteParentIDs(where string, ids []string) string {
	if !strings.Contains(where, "{{parentIds}}") {
		return where
	}
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = "'" + strings.ReplaceAll(id, "'", "''") + "'"
	}
	list := strings.Join(quoted, ", ")
	if list == "" {
		list = "NULL"
	}
	return strings.ReplaceAll(where, "{{parentIds}}", list)
}

func encodeFilter(filter *querybuilder.GenericInstanceFilter) (string, error) {
	if filter == nil {
		return "", nil
	}
	b, err := json.Marshal(filter)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
