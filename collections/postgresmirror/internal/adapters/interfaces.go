package adapters

import "context"

// DBAdapter defines the interface for database operations needed by the mirror.
type DBAdapter interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)
}

// DBRows defines the interface for query result rows. Err reports any
// failure that ended the iteration early, so callers can tell a clean
// exhaustion from a broken connection mid-scan.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
}
