package queryrunner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/hierarchyengine/internal/queryexec"
)

// fakeExecutor and fakeRowStream let these tests exercise the runner's
// counting logic in isolation from any SQL driver, mirroring the
// teacher's RootIDFetcher tests' in-memory row fixtures without needing
// sqlmock's SQL-text matching for a layer that issues no SQL of its own.
type fakeExecutor struct {
	rows []queryexec.Row
	err  error
}

func (f *fakeExecutor) Query(ctx context.Context, q queryexec.Query, opts queryexec.Options) (queryexec.RowStream, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &fakeRowStream{rows: f.rows}, nil
}

type fakeRowStream struct {
	rows   []queryexec.Row
	pos    int
	closed bool
}

func (s *fakeRowStream) Next(ctx context.Context) bool {
	if s.pos >= len(s.rows) {
		return false
	}
	s.pos++
	return true
}

func (s *fakeRowStream) Scan() (queryexec.Row, error) {
	return s.rows[s.pos-1], nil
}

func (s *fakeRowStream) Err() error { return nil }

func (s *fakeRowStream) Close() error {
	s.closed = true
	return nil
}

func rowsOf(n int) []queryexec.Row {
	rows := make([]queryexec.Row, n)
	for i := range rows {
		rows[i] = queryexec.Row{"ECInstanceId": i}
	}
	return rows
}

func TestRunner_Run_StreamsWithinLimit(t *testing.T) {
	runner := New(&fakeExecutor{rows: rowsOf(3)})

	stream, err := runner.Run(context.Background(), queryexec.Query{}, queryexec.Options{}, 5)
	require.NoError(t, err)
	defer stream.Close()

	count := 0
	for stream.Next(context.Background()) {
		_, err := stream.Scan()
		require.NoError(t, err)
		count++
	}
	require.NoError(t, stream.Err())
	require.Equal(t, 3, count)
}

func TestRunner_Run_ExceedsLimitRaisesTypedError(t *testing.T) {
	runner := New(&fakeExecutor{rows: rowsOf(5)})

	stream, err := runner.Run(context.Background(), queryexec.Query{}, queryexec.Options{}, 3)
	require.NoError(t, err)
	defer stream.Close()

	count := 0
	for stream.Next(context.Background()) {
		count++
	}
	require.Equal(t, 3, count)
	require.Error(t, stream.Err())
	require.IsType(t, &RowsLimitExceededError{}, stream.Err())
	require.Equal(t, 3, stream.Err().(*RowsLimitExceededError).Limit)
}

func TestRunner_Run_ZeroLimitIsUnbounded(t *testing.T) {
	runner := New(&fakeExecutor{rows: rowsOf(1000)})

	stream, err := runner.Run(context.Background(), queryexec.Query{}, queryexec.Options{}, 0)
	require.NoError(t, err)
	defer stream.Close()

	count := 0
	for stream.Next(context.Background()) {
		count++
	}
	require.NoError(t, stream.Err())
	require.Equal(t, 1000, count)
}

func TestRunner_Run_DoesNotPrematerializeBeyondLimit(t *testing.T) {
	// Exactly 3 rows backing the fake stream with a limit of 3: once the
	// count equals the limit the runner asks the inner stream for a 4th
	// row only to learn whether one exists, finds none, and reports no
	// error.
	runner := New(&fakeExecutor{rows: rowsOf(3)})

	stream, err := runner.Run(context.Background(), queryexec.Query{}, queryexec.Options{}, 3)
	require.NoError(t, err)
	defer stream.Close()

	count := 0
	for stream.Next(context.Background()) {
		count++
	}
	require.Equal(t, 3, count)
	require.NoError(t, stream.Err())
}

func TestRunner_Run_PropagatesExecutorError(t *testing.T) {
	wantErr := context.DeadlineExceeded
	runner := New(&fakeExecutor{err: wantErr})

	_, err := runner.Run(context.Background(), queryexec.Query{}, queryexec.Options{}, 10)
	require.ErrorIs(t, err, wantErr)
}
