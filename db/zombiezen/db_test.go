package zombiezen

import (
	"context"
	"io/fs"
	"testing"

	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/orlanda/accounts/migrations"
)

// newTestDB creates an in-memory SQLite database and applies the named schema
// files from the embedded migrations.
func newTestDB(t *testing.T, schemaFiles ...string) *Db {
	t.Helper()

	pool, err := sqlitex.NewPool("file::memory:", sqlitex.PoolOptions{
		PoolSize: 1,
	})
	if err != nil {
		t.Fatalf("failed to create db pool: %v", err)
	}

	t.Cleanup(func() {
		if err := pool.Close(); err != nil {
			t.Errorf("failed to close db pool: %v", err)
		}
	})

	conn, err := pool.Take(context.Background())
	if err != nil {
		t.Fatalf("failed to get db connection: %v", err)
	}
	defer pool.Put(conn)

	schemaFS := migrations.Schema()
	for _, name := range schemaFiles {
		sqlBytes, err := fs.ReadFile(schemaFS, name)
		if err != nil {
			t.Fatalf("failed to read %s: %v", name, err)
		}
		if err := sqlitex.ExecuteScript(conn, string(sqlBytes), nil); err != nil {
			t.Fatalf("failed to execute %s: %v", name, err)
		}
	}

	testDB, err := New(pool)
	if err != nil {
		t.Fatalf("failed to create db: %v", err)
	}
	return testDB
}
