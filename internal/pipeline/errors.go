// Package pipeline implements the fixed 10-stage streaming pipeline
// (spec.md section 4.4): parse, pre-process, hide-in-hierarchy,
// merge-by-label, determine-children, hide-if-no-children, grouping,
// post-process, sort, finalize — composed as channel-based stages over
// hxtypes.HierarchyNode, generalizing internal/archiver/orchestrator.go's
// fixed discover→copy→verify→delete phase sequence into an arbitrary
// number of stages chained the same way.
package pipeline

import (
	"github.com/dbsmedya/hierarchyengine/internal/querybuilder"
	"github.com/dbsmedya/hierarchyengine/internal/queryrunner"
)

// RowsLimitExceededError, UnknownSchemaOrClassError and
// UnsupportedFilterPropertyError are the three typed errors spec.md
// section 7 names. They are defined in the lower layers that actually
// detect them (internal/queryrunner, internal/querybuilder) and
// re-exported here as aliases so call sites working at the pipeline
// level can name them uniformly as pipeline.*Error, matching spec.md's
// single error taxonomy without pipeline, queryrunner and querybuilder
// importing each other in a cycle.
type (
	RowsLimitExceededError        = queryrunner.RowsLimitExceededError
	UnknownSchemaOrClassError     = querybuilder.UnknownSchemaOrClassError
	UnsupportedFilterPropertyError = querybuilder.UnsupportedFilterPropertyError
)
