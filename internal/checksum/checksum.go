// Package checksum maintains the metadata/checksums record: one opaque
// token per tracked collection that clients compare (never parse) to
// decide whether their cached copy is stale.
package checksum

import (
	"fmt"

	"github.com/google/uuid"
)

// Checksum record keys.
const (
	KeyReports        = "reports"
	KeyCommentsGlobal = "commentsGlobal"
	KeyUsersVersion   = "usersVersion"
)

// CommentsKey is the per-report comment set key.
func CommentsKey(reportID uuid.UUID) string {
	return "comments_" + reportID.String()
}

func UserKey(userID uuid.UUID) string {
	return "user_" + userID.String()
}

type ScopeType string

const (
	// ScopeReports recomputes the all-reports token.
	ScopeReports ScopeType = "reports"
	// ScopeComments recomputes one report's comment-set token.
	ScopeComments ScopeType = "comments"
	// ScopeCommentsPurge removes a deleted report's comment-set token.
	ScopeCommentsPurge ScopeType = "commentsPurge"
	// ScopeGlobalComments recomputes the coarse global comments token.
	ScopeGlobalComments ScopeType = "commentsGlobal"
	// ScopeUser recomputes a single user's profile token.
	ScopeUser ScopeType = "user"
	// ScopeUsersVersion bumps the global users version counter.
	ScopeUsersVersion ScopeType = "usersVersion"
)

// Scope names the target of one recomputation.
type Scope struct {
	Type     ScopeType
	ReportID uuid.UUID
	UserID   uuid.UUID
}

// collectionToken is the composite token for reports and per-report
// comment sets. It embeds the users version so a later profile write
// invalidates caches without re-touching the collection itself.
func collectionToken(count int, latestMillis, usersVersion int64) string {
	return fmt.Sprintf("%d_%d_u%d", count, latestMillis, usersVersion)
}

// globalCommentsToken deliberately mixes in the wall clock, so it can
// change with no underlying data change. False positives are accepted;
// false negatives are not.
func globalCommentsToken(count int, nowMillis int64) string {
	return fmt.Sprintf("global_%d_%d", count, nowMillis)
}

func userToken(userID uuid.UUID, nowMillis int64) string {
	return fmt.Sprintf("%s_%d", userID, nowMillis)
}

// CacheToken is the on-demand variant served by the cache-checksum
// endpoint: count and latest timestamp only, no users version.
func CacheToken(count int, latestMillis int64) string {
	return fmt.Sprintf("%d_%d", count, latestMillis)
}
