// Package provider implements the Hierarchy Provider (spec.md section
// 4.8): the public entry point that ties the hierarchy definitions
// resolver, the query builder/runner, the streaming pipeline, the
// grouping stage, the filtering overlay and the child-node cache
// together into one getNodes/getNodeInstanceKeys surface. Grounded on
// internal/archiver/orchestrator.go's ArchiveOrchestrator: a single
// constructor validates and owns every sub-component, instead of each
// caller wiring the pipeline by hand.
package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/dbsmedya/hierarchyengine/internal/backpressure"
	"github.com/dbsmedya/hierarchyengine/internal/cache"
	"github.com/dbsmedya/hierarchyengine/internal/filtering"
	"github.com/dbsmedya/hierarchyengine/internal/grouping"
	"github.com/dbsmedya/hierarchyengine/internal/hierarchy"
	"github.com/dbsmedya/hierarchyengine/internal/hxconfig"
	"github.com/dbsmedya/hierarchyengine/internal/hxlock"
	"github.com/dbsmedya/hierarchyengine/internal/hxlog"
	"github.com/dbsmedya/hierarchyengine/internal/hxtypes"
	"github.com/dbsmedya/hierarchyengine/internal/metadata"
	"github.com/dbsmedya/hierarchyengine/internal/pipeline"
	"github.com/dbsmedya/hierarchyengine/internal/querybuilder"
	"github.com/dbsmedya/hierarchyengine/internal/queryexec"
	"github.com/dbsmedya/hierarchyengine/internal/queryrunner"
)

// Options configures a Provider. Executor, Inspector and Hierarchy are
// required; everything else defaults to a sensible standalone value so
// Provider is usable in tests without a real database.
type Options struct {
	Executor  queryexec.Executor
	Inspector metadata.Inspector
	Hierarchy *hxconfig.HierarchyDefinition

	// Locks, when non-nil, is reused as-is (e.g. to share one DB-backed
	// SingleFlight across several Providers). Defaults to an in-process
	// hxlock.New(nil).
	Locks *hxlock.SingleFlight

	// Cache defaults to cache.New(0, 0) (package defaults).
	Cache *cache.Cache

	// Logger defaults to hxlog.NewDefault().
	Logger *hxlog.Logger

	// Yielder defaults to backpressure.New() when nil; Options offers no
	// way to switch yielding off.
	Yielder pipeline.Yielder

	// Paths seeds the identifier-path filtering overlay (spec.md section
	// 4.6). Empty/nil means unfiltered.
	Paths []hxtypes.IdentifierPath

	// DefaultRowLimit is applied when a GetNodes call doesn't specify its
	// own HierarchyLevelSizeLimit. Zero means unbounded.
	DefaultRowLimit int

	// StatementTimeoutSeconds is forwarded to the executor on every query.
	StatementTimeoutSeconds int
}

// Provider is the hierarchy provider (spec.md section 4.8). The zero
// value is not usable; construct with New.
type Provider struct {
	executor  queryexec.Executor
	inspector metadata.Inspector
	defs      []hxconfig.LevelDefinition

	resolver *hierarchy.Resolver
	factory  *querybuilder.Factory
	runner   *queryrunner.Runner

	cacheStore *cache.Cache
	locks      *hxlock.SingleFlight
	registry   *grouping.Registry
	grouping   *grouping.Stage
	formatter  *formatterBox

	logger                  *hxlog.Logger
	yielder                 pipeline.Yielder
	defaultRowLimit         int
	statementTimeoutSeconds int

	mu        sync.Mutex
	overlay   *filtering.Overlay
	listeners []ChangeListener
	disposed  bool
}

// New validates opts and constructs a Provider, wiring every
// sub-component the way ArchiveOrchestrator's constructor wires its own
// (graph, dbManager, logger) before Initialize ever runs a job.
func New(opts Options) (*Provider, error) {
	if opts.Executor == nil {
		return nil, fmt.Errorf("provider: executor is required")
	}
	if opts.Inspector == nil {
		return nil, fmt.Errorf("provider: inspector is required")
	}
	if opts.Hierarchy == nil {
		return nil, fmt.Errorf("provider: hierarchy definition is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = hxlog.NewDefault()
	}
	locks := opts.Locks
	if locks == nil {
		locks = hxlock.New(nil)
	}
	cacheStore := opts.Cache
	if cacheStore == nil {
		cacheStore = cache.New(0, 0)
	}
	yielder := opts.Yielder
	if yielder == nil {
		yielder = backpressure.New()
	}

	formatter := newFormatterBox(nil)
	registry := grouping.NewRegistry()

	p := &Provider{
		executor:                opts.Executor,
		inspector:                opts.Inspector,
		defs:                     opts.Hierarchy.Flatten(),
		resolver:                 hierarchy.NewResolver(opts.Inspector),
		factory:                  querybuilder.NewFactory(opts.Inspector),
		runner:                   queryrunner.New(opts.Executor),
		cacheStore:               cacheStore,
		locks:                    locks,
		registry:                 registry,
		grouping:                 grouping.NewStage(opts.Inspector, formatter.call, registry),
		formatter:                formatter,
		logger:                   logger,
		yielder:                  yielder,
		defaultRowLimit:          opts.DefaultRowLimit,
		statementTimeoutSeconds:  opts.StatementTimeoutSeconds,
		overlay:                  filtering.New(opts.Paths, opts.Inspector),
	}
	return p, nil
}

// ChangeReason names why HierarchyChanged fired (spec.md section 4.8).
type ChangeReason int

const (
	// ChangeFormatter fires when SetFormatter replaces the primitive
	// value formatter.
	ChangeFormatter ChangeReason = iota
	// ChangeHierarchySearch fires when SetHierarchySearch replaces the
	// identifier-path filter.
	ChangeHierarchySearch
)

// ChangeEvent is delivered to every listener registered via
// OnHierarchyChanged.
type ChangeEvent struct {
	Reason ChangeReason
}

// ChangeListener observes HierarchyChanged events.
type ChangeListener func(ChangeEvent)

// OnHierarchyChanged registers listener and returns a function that
// unregisters it.
func (p *Provider) OnHierarchyChanged(listener ChangeListener) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, listener)
	idx := len(p.listeners) - 1
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if idx < len(p.listeners) {
			p.listeners[idx] = nil
		}
	}
}

func (p *Provider) fireChanged(reason ChangeReason) {
	p.mu.Lock()
	listeners := make([]ChangeListener, len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()
	for _, l := range listeners {
		if l != nil {
			l(ChangeEvent{Reason: reason})
		}
	}
}

// SetFormatter replaces the primitive-value formatter used for property
// grouping labels (spec.md section 4.8: "changing the formatter ...
// invalidates all cached entries and fires hierarchyChanged exactly
// once").
func (p *Provider) SetFormatter(f grouping.Formatter) {
	p.formatter.set(f)
	p.cacheStore.Clear()
	p.fireChanged(ChangeFormatter)
}

// SetHierarchySearch replaces the identifier-path filter overlay
// (spec.md section 4.8, same cache-invalidation/event contract as
// SetFormatter).
func (p *Provider) SetHierarchySearch(paths []hxtypes.IdentifierPath) {
	overlay := filtering.New(paths, p.inspector)
	p.mu.Lock()
	p.overlay = overlay
	p.mu.Unlock()
	p.cacheStore.Clear()
	p.fireChanged(ChangeHierarchySearch)
}

func (p *Provider) currentOverlay() *filtering.Overlay {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.overlay
}

// Dispose releases resources the Provider owns: the cache is cleared,
// and the underlying executor is closed if it implements io.Closer (e.g.
// queryexec.MySQLExecutor). The grouping registry is not cleared.
// Dispose is idempotent.
func (p *Provider) Dispose() error {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return nil
	}
	p.disposed = true
	p.mu.Unlock()

	p.cacheStore.Clear()
	if closer, ok := p.executor.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// formatterBox lets Provider hot-swap the grouping.Formatter a
// long-lived grouping.Stage calls, since grouping.Stage's own Formatter
// field is fixed at construction time.
type formatterBox struct {
	mu sync.RWMutex
	f  grouping.Formatter
}

func newFormatterBox(f grouping.Formatter) *formatterBox {
	return &formatterBox{f: f}
}

func (b *formatterBox) set(f grouping.Formatter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.f = f
}

func (b *formatterBox) call(ctx context.Context, raw any) (string, error) {
	b.mu.RLock()
	f := b.f
	b.mu.RUnlock()
	if f == nil {
		if raw == nil {
			return "", nil
		}
		if s, ok := raw.(string); ok {
			return s, nil
		}
		return fmt.Sprintf("%v", raw), nil
	}
	return f(ctx, raw)
}
