package queryrunner

import "fmt"

// RowsLimitExceededError is raised when a hierarchy level's query would
// stream more rows than the configured limit allows (spec.md section
// 4.3). The runner detects this without pre-materializing rows: it
// counts what it has already streamed and fails as soon as one more row
// would exceed the limit.
//
// This is the canonical definition; internal/pipeline/errors.go re-exports
// it as a type alias so callers working at the pipeline layer can name it
// pipeline.RowsLimitExceededError without internal/queryrunner importing
// internal/pipeline (which would cycle, since pipeline depends on
// queryrunner to stream rows).
type RowsLimitExceededError struct {
	Limit int
}

func (e *RowsLimitExceededError) Error() string {
	return fmt.Sprintf("rows limit of %d exceeded", e.Limit)
}
