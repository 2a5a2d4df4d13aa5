package queryexec

import "context"

// RowStream iterates the rows of one executed Query. Callers must call
// Close when done, even after an error or early exit, to release the
// underlying driver resources.
type RowStream interface {
	// Next advances to the next row, returning false at end of stream or
	// on error (check Err after Next returns false).
	Next(ctx context.Context) bool
	// Scan decodes the current row.
	Scan() (Row, error)
	// Err returns the error, if any, that stopped iteration.
	Err() error
	// Close releases the stream's resources.
	Close() error
}

// Executor runs a bound Query against the data source and returns a
// streaming RowStream, per spec.md section 6's external Executor
// interface.
type Executor interface {
	Query(ctx context.Context, q Query, opts Options) (RowStream, error)
}
