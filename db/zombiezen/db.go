package zombiezen

import (
	"fmt"

	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/orlanda/accounts/db"
)

type Db struct {
	pool *sqlitex.Pool
}

// Verify interface implementations
var _ db.DbAuth = (*Db)(nil)
var _ db.DbOtp = (*Db)(nil)
var _ db.DbQueue = (*Db)(nil)
var _ db.DbApp = (*Db)(nil)

// New creates a new Db instance using an existing pool provided by the user.
// The lifecycle of the pool is managed externally; this type does not close it.
func New(pool *sqlitex.Pool) (*Db, error) {
	if pool == nil {
		return nil, fmt.Errorf("provided pool cannot be nil")
	}
	return &Db{pool: pool}, nil
}

// NewPool opens a sqlite pool for the given file path with the pragmas the
// application relies on (WAL for concurrent readers, foreign keys on).
func NewPool(path string, size int) (*sqlitex.Pool, error) {
	if size <= 0 {
		size = 4
	}
	uri := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	pool, err := sqlitex.NewPool(uri, sqlitex.PoolOptions{PoolSize: size})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite pool: %w", err)
	}
	return pool, nil
}
