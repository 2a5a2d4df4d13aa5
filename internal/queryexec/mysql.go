package queryexec

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"github.com/dbsmedya/hierarchyengine/internal/hxconfig"
)

// MySQLExecutor is the default Executor, reading rows from a pooled
// `database/sql` connection. Connection lifecycle mirrors
// internal/database.Manager: retry-with-backoff connect, pooled sizing
// from configuration, graceful close.
type MySQLExecutor struct {
	db *sql.DB
}

// NewMySQLExecutor connects to the source database described by cfg,
// retrying with exponential backoff the way Manager.connectWithRetry does.
func NewMySQLExecutor(ctx context.Context, cfg *hxconfig.DatabaseConfig) (*MySQLExecutor, error) {
	db, err := connectWithRetry(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to source database: %w", err)
	}
	return &MySQLExecutor{db: db}, nil
}

// NewMySQLExecutorFromDB wraps an already-open, already-configured
// connection (used by tests with go-sqlmock).
func NewMySQLExecutorFromDB(db *sql.DB) *MySQLExecutor {
	return &MySQLExecutor{db: db}
}

func connectWithRetry(ctx context.Context, cfg *hxconfig.DatabaseConfig) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 3
	backoff := time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = connect(cfg)
		if err == nil {
			if pingErr := db.PingContext(ctx); pingErr == nil {
				return db, nil
			} else {
				db.Close()
				err = pingErr
			}
		}

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", maxRetries, err)
}

func connect(cfg *hxconfig.DatabaseConfig) (*sql.DB, error) {
	dsn := BuildDSN(cfg)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConnections)
	}
	lifetime := 10 * time.Minute
	if cfg.ConnMaxLifetimeSec > 0 {
		lifetime = time.Duration(cfg.ConnMaxLifetimeSec) * time.Second
	}
	db.SetConnMaxLifetime(lifetime)

	return db, nil
}

// BuildDSN constructs a MySQL DSN from configuration.
func BuildDSN(cfg *hxconfig.DatabaseConfig) string {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/", cfg.User, cfg.Password, cfg.Host, cfg.Port)
	if cfg.Database != "" {
		dsn += cfg.Database
	}

	params := "?parseTime=true&multiStatements=false"
	switch cfg.TLS {
	case "disable":
		params += "&tls=false"
	case "required":
		params += "&tls=true"
	case "preferred", "":
		params += "&tls=preferred"
	}

	return dsn + params
}

// Close closes the underlying connection.
func (e *MySQLExecutor) Close() error {
	return e.db.Close()
}

// Ping verifies the connection is alive.
func (e *MySQLExecutor) Ping(ctx context.Context) error {
	return e.db.PingContext(ctx)
}

// DB returns the underlying pooled connection, so a caller (e.g.
// cmd/hiertree) can share it with a metadata.SQLInspector or an
// hxlock.SingleFlight instead of opening a second connection pool.
func (e *MySQLExecutor) DB() *sql.DB {
	return e.db
}

// Query executes q and returns a streaming RowStream. The returned stream
// owns a derived context's cancel func when a statement timeout is set,
// releasing it on Close so the timeout stays in force for the whole
// streaming read rather than just the initial QueryContext call.
func (e *MySQLExecutor) Query(ctx context.Context, q Query, opts Options) (RowStream, error) {
	var cancel context.CancelFunc
	if opts.StatementTimeoutSeconds > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(opts.StatementTimeoutSeconds)*time.Second)
	}

	rows, err := e.db.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		if cancel != nil {
			cancel()
		}
		return nil, fmt.Errorf("query execution failed: %w", err)
	}

	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		if cancel != nil {
			cancel()
		}
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	return &sqlRowStream{rows: rows, cols: cols, cancel: cancel}, nil
}

// sqlRowStream adapts *sql.Rows to RowStream.
type sqlRowStream struct {
	rows   *sql.Rows
	cols   []string
	cancel context.CancelFunc
	err    error
}

func (s *sqlRowStream) Next(ctx context.Context) bool {
	if s.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		s.err = err
		return false
	}
	if !s.rows.Next() {
		s.err = s.rows.Err()
		return false
	}
	return true
}

func (s *sqlRowStream) Scan() (Row, error) {
	values := make([]any, len(s.cols))
	ptrs := make([]any, len(s.cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := s.rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	row := make(Row, len(s.cols))
	for i, col := range s.cols {
		row[col] = values[i]
	}
	return row, nil
}

func (s *sqlRowStream) Err() error {
	return s.err
}

func (s *sqlRowStream) Close() error {
	err := s.rows.Close()
	if s.cancel != nil {
		s.cancel()
	}
	return err
}
