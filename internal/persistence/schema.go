package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Schema statements are idempotent so first run creates the tables and
// every later run is a no-op.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id            BIGSERIAL PRIMARY KEY,
        username      TEXT NOT NULL UNIQUE,
        password_hash TEXT NOT NULL,
        role          TEXT NOT NULL DEFAULT 'user'
    )`,
	`CREATE TABLE IF NOT EXISTS tickets (
        id          BIGSERIAL PRIMARY KEY,
        owner_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        title       TEXT NOT NULL,
        description TEXT NOT NULL,
        status      TEXT NOT NULL DEFAULT 'Open',
        created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_owner_id ON tickets(owner_id)`,
}

// EnsureSchema creates the users and tickets tables when absent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping schema creation")
		return nil
	}

	for i, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	logger.Info("schema ensured", zap.Int("statements", len(schemaStatements)))
	return nil
}
