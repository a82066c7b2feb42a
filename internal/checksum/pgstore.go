package checksum

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgChecksums implements Source and Store on Postgres. The checksum
// record is the metadata_checksums table, one row per key, so per-key
// upserts act as field-level merge writes on the logical record.
type PgChecksums struct {
	DB *pgxpool.Pool
}

func NewPgChecksums(pool *pgxpool.Pool) *PgChecksums {
	return &PgChecksums{DB: pool}
}

func (p *PgChecksums) ReportSet(ctx context.Context) (int, int64, error) {
	var count int
	var latest int64
	err := p.DB.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE((EXTRACT(EPOCH FROM MAX(created_at)) * 1000)::BIGINT, 0)
		FROM reports
	`).Scan(&count, &latest)
	return count, latest, err
}

func (p *PgChecksums) CommentSet(ctx context.Context, reportID uuid.UUID) (int, int64, error) {
	var count int
	var latest int64
	err := p.DB.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE((EXTRACT(EPOCH FROM MAX(created_at)) * 1000)::BIGINT, 0)
		FROM comments
		WHERE report_id = $1
	`, reportID).Scan(&count, &latest)
	return count, latest, err
}

func (p *PgChecksums) GlobalCommentCount(ctx context.Context) (int, error) {
	var count int
	err := p.DB.QueryRow(ctx, `SELECT COUNT(*) FROM comments`).Scan(&count)
	return count, err
}

func (p *PgChecksums) UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := p.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	return exists, err
}

func (p *PgChecksums) SetToken(ctx context.Context, key, token string) error {
	_, err := p.DB.Exec(ctx, `
		INSERT INTO metadata_checksums (key, token) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET token = EXCLUDED.token, updated_at = NOW()
	`, key, token)
	return err
}

func (p *PgChecksums) DeleteToken(ctx context.Context, key string) error {
	_, err := p.DB.Exec(ctx, `DELETE FROM metadata_checksums WHERE key = $1`, key)
	return err
}

func (p *PgChecksums) UsersVersion(ctx context.Context) (int64, error) {
	var version int64
	err := p.DB.QueryRow(ctx, `
		SELECT COALESCE((SELECT token::BIGINT FROM metadata_checksums WHERE key = $1), 0)
	`, KeyUsersVersion).Scan(&version)
	return version, err
}

// BumpUsersVersion advances the counter to the wall clock or, when the
// clock has not moved past the stored value, to stored+1. The whole
// bump is one statement, so concurrent bumps both land on strictly
// larger values.
func (p *PgChecksums) BumpUsersVersion(ctx context.Context) (int64, error) {
	var version int64
	err := p.DB.QueryRow(ctx, `
		INSERT INTO metadata_checksums (key, token) VALUES ($1, $2::TEXT)
		ON CONFLICT (key) DO UPDATE
		SET token = GREATEST(EXCLUDED.token::BIGINT, metadata_checksums.token::BIGINT + 1)::TEXT,
		    updated_at = NOW()
		RETURNING token::BIGINT
	`, KeyUsersVersion, time.Now().UnixMilli()).Scan(&version)
	return version, err
}

func (p *PgChecksums) All(ctx context.Context) (map[string]string, error) {
	rows, err := p.DB.Query(ctx, `SELECT key, token FROM metadata_checksums`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	record := make(map[string]string)
	for rows.Next() {
		var key, token string
		if err := rows.Scan(&key, &token); err != nil {
			return nil, err
		}
		record[key] = token
	}
	return record, rows.Err()
}
