package zombiezen

import (
	"context"
	"fmt"
	"io/fs"

	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/orlanda/accounts/migrations"
)

// Migrate applies the embedded schema. Every statement is idempotent
// (CREATE ... IF NOT EXISTS), so running it on startup is safe.
func (d *Db) Migrate(ctx context.Context) error {
	conn, err := d.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("migrate failed to get connection: %w", err)
	}
	defer d.pool.Put(conn)

	schema := migrations.Schema()
	entries, err := fs.ReadDir(schema, ".")
	if err != nil {
		return fmt.Errorf("failed to read schema dir: %w", err)
	}

	for _, entry := range entries {
		script, err := fs.ReadFile(schema, entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read schema %s: %w", entry.Name(), err)
		}
		if err := sqlitex.ExecuteScript(conn, string(script), nil); err != nil {
			return fmt.Errorf("failed to apply schema %s: %w", entry.Name(), err)
		}
	}
	return nil
}
