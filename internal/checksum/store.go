package checksum

import (
	"context"

	"github.com/google/uuid"
)

// Source reads the collections a token summarizes.
type Source interface {
	// ReportSet returns the report count and the creation timestamp in
	// millis of the newest report (0 when the set is empty).
	ReportSet(ctx context.Context) (count int, latestMillis int64, err error)
	// CommentSet is ReportSet for one report's comments.
	CommentSet(ctx context.Context, reportID uuid.UUID) (count int, latestMillis int64, err error)
	GlobalCommentCount(ctx context.Context) (int, error)
	UserExists(ctx context.Context, userID uuid.UUID) (bool, error)
}

// Store holds the checksum record. Writes are per-key merges: updating
// one key never clobbers concurrent updates to another.
type Store interface {
	SetToken(ctx context.Context, key, token string) error
	DeleteToken(ctx context.Context, key string) error
	UsersVersion(ctx context.Context) (int64, error)
	// BumpUsersVersion advances the counter to a strictly larger value
	// and returns it.
	BumpUsersVersion(ctx context.Context) (int64, error)
	All(ctx context.Context) (map[string]string, error)
}
