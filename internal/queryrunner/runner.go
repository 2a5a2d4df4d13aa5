// Package queryrunner wraps internal/queryexec.Executor with per-level
// row-limit enforcement (spec.md section 4.3): it streams rows exactly
// as the underlying executor produces them, counting as it goes, and
// fails with RowsLimitExceededError the moment one more row would push
// the count past the configured limit — without ever buffering the full
// result set to decide. The shape mirrors internal/archiver/batch.go's
// RootIDFetcher.FetchNextBatch (bounded per-call fetch) and
// discovery.go's chunked rows.Next() scan loop, generalized from a
// fixed LIMIT clause to a post-hoc running-count check so the runner
// stays agnostic to how the SQL itself is built.
package queryrunner

import (
	"context"

	"github.com/dbsmedya/hierarchyengine/internal/queryexec"
)

// Runner executes queries through an Executor, enforcing a row limit
// per call.
type Runner struct {
	executor queryexec.Executor
}

// New creates a Runner backed by the given Executor.
func New(executor queryexec.Executor) *Runner {
	return &Runner{executor: executor}
}

// Run executes query and returns a RowStream that raises
// RowsLimitExceededError{limit} once streaming would yield more than
// limit rows. A limit of zero or less means unbounded (spec.md section
// 4.3, "unbounded by default").
func (r *Runner) Run(ctx context.Context, query queryexec.Query, opts queryexec.Options, limit int) (queryexec.RowStream, error) {
	inner, err := r.executor.Query(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return inner, nil
	}
	return &limitedRowStream{inner: inner, limit: limit}, nil
}

// limitedRowStream decorates a queryexec.RowStream with a running row
// count, never materializing rows ahead of the caller's own Next/Scan
// pace.
type limitedRowStream struct {
	inner queryexec.RowStream
	limit int
	count int
	err   error
}

func (s *limitedRowStream) Next(ctx context.Context) bool {
	if s.err != nil {
		return false
	}
	if s.count >= s.limit {
		// Only a row beyond the limit is an error; exactly limit rows is not.
		if s.inner.Next(ctx) {
			s.err = &RowsLimitExceededError{Limit: s.limit}
		}
		return false
	}
	if !s.inner.Next(ctx) {
		return false
	}
	s.count++
	return true
}

func (s *limitedRowStream) Scan() (queryexec.Row, error) {
	return s.inner.Scan()
}

func (s *limitedRowStream) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.inner.Err()
}

func (s *limitedRowStream) Close() error {
	return s.inner.Close()
}
