package database

import (
	"database/sql"
	"fmt"
	"os"
)

// Migrate applies the catalog schema. Only the import tooling calls this;
// the bot itself treats the dataset as pre-built and read-only.
func Migrate(db *sql.DB) error {
	b, err := os.ReadFile("docs/schema.sql")
	if err != nil {
		return fmt.Errorf("read docs/schema.sql: %w", err)
	}

	if _, err := db.Exec(string(b)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
