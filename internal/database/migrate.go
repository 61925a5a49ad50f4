package database

import (
	"context"
	"fmt"
	"log/slog"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS credentials (
	user_id            TEXT PRIMARY KEY,
	access_token       TEXT NOT NULL,
	refresh_token      TEXT NOT NULL,
	access_expires_at  INTEGER NOT NULL,
	refresh_expires_at INTEGER NOT NULL,
	region             TEXT NOT NULL,
	created_at         INTEGER NOT NULL,
	updated_at         INTEGER NOT NULL
);
`

func (db *DB) EnsureSchema(ctx context.Context) error {
	if db == nil || db.Conn == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	if _, err := db.Conn.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	slog.Info("database schema ensured")
	return nil
}
