package db

import "context"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         UUID PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		phone      TEXT NOT NULL DEFAULT '',
		email      TEXT NOT NULL DEFAULT '',
		is_admin   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id               UUID PRIMARY KEY,
		user_id          UUID NOT NULL REFERENCES users(id),
		description      TEXT NOT NULL,
		hazard_type      TEXT NOT NULL,
		local_gov        TEXT NOT NULL,
		location_details TEXT NOT NULL,
		latitude         DOUBLE PRECISION NOT NULL,
		longitude        DOUBLE PRECISION NOT NULL,
		status           TEXT NOT NULL DEFAULT 'In progress',
		score            INTEGER NOT NULL DEFAULT 0,
		comments_count   INTEGER NOT NULL DEFAULT 0,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id         UUID PRIMARY KEY,
		report_id  UUID NOT NULL REFERENCES reports(id),
		user_id    UUID NOT NULL REFERENCES users(id),
		content    TEXT NOT NULL,
		score      INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_report ON comments(report_id)`,
	`CREATE TABLE IF NOT EXISTS report_votes (
		report_id  UUID NOT NULL REFERENCES reports(id),
		user_id    UUID NOT NULL,
		vote       SMALLINT NOT NULL CHECK (vote IN (-1, 1)),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (report_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS comment_votes (
		comment_id UUID NOT NULL REFERENCES comments(id),
		user_id    UUID NOT NULL,
		vote       SMALLINT NOT NULL CHECK (vote IN (-1, 1)),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (comment_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS metadata_checksums (
		key        TEXT PRIMARY KEY,
		token      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS metadata_stats (
		id          INTEGER PRIMARY KEY CHECK (id = 1),
		submitted   INTEGER NOT NULL DEFAULT 0,
		in_progress INTEGER NOT NULL DEFAULT 0,
		confirmed   INTEGER NOT NULL DEFAULT 0,
		resolved    INTEGER NOT NULL DEFAULT 0
	)`,
	`INSERT INTO metadata_stats (id) VALUES (1) ON CONFLICT (id) DO NOTHING`,
}

// Migrate creates the schema if it does not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
