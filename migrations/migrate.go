// Package migrations applies the database schema.  The schema is
// idempotent (CREATE TABLE IF NOT EXISTS) so Apply can run at every
// startup and in test setup.
package migrations

import (
	"context"
	"database/sql"
	_ "embed"
	"strings"
)

//go:embed schema.sql
var schema string

// Apply executes every statement in schema.sql against the database.
func Apply(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
