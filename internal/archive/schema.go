package archive

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the part of *pgxpool.Pool EnsureSchema needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id            uuid PRIMARY KEY,
		identity      text        NOT NULL,
		type          text        NOT NULL DEFAULT '',
		content       text        NOT NULL DEFAULT '',
		agent         text        NOT NULL DEFAULT '',
		task_progress jsonb,
		raw           jsonb       NOT NULL,
		received_at   timestamptz NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS chat_messages_identity_received_at_idx
		ON chat_messages (identity, received_at)`,
}

// EnsureSchema creates the chat_messages table and its index if missing.
func EnsureSchema(ctx context.Context, db Execer) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
