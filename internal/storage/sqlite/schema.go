package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied on every Open; statements are idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS settings (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    authorization_status TEXT NOT NULL DEFAULT 'notDetermined',
    allow_alert INTEGER NOT NULL DEFAULT 0,
    allow_sound INTEGER NOT NULL DEFAULT 0,
    allow_badge INTEGER NOT NULL DEFAULT 0,
    badge_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS pending (
    identifier TEXT PRIMARY KEY,
    request TEXT NOT NULL,
    scheduled_at INTEGER NOT NULL,
    fire_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pending_fire_at ON pending(fire_at);

CREATE TABLE IF NOT EXISTS delivered (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    identifier TEXT NOT NULL,
    request TEXT NOT NULL,
    delivered_at INTEGER NOT NULL
);

INSERT OR IGNORE INTO settings (id) VALUES (1);
`

func initSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
