// Package cascade maps primary-entity write events to the checksum
// recomputations they invalidate.
package cascade

import (
	"github.com/gitgud/citywatch/internal/checksum"
	"github.com/google/uuid"
)

type EventKind string

const (
	Created EventKind = "created"
	Updated EventKind = "updated"
	Deleted EventKind = "deleted"
)

// Collections producing events.
const (
	CollectionReports  = "reports"
	CollectionComments = "comments"
	CollectionUsers    = "users"
)

// Image is the before or after state of a document, reduced to what the
// cascade needs. ReportID is set for comment images only.
type Image struct {
	ID       uuid.UUID
	ReportID uuid.UUID
}

// Event describes one write to a primary collection. Before is nil for
// creates, After is nil for deletes.
type Event struct {
	Kind       EventKind
	Collection string
	Before     *Image
	After      *Image
}

// ScopesFor maps an event to the recomputations it requires, in the
// order they must run. A user write bumps the users version first so
// the reports and global-comments tokens recomputed after it embed the
// new value.
func ScopesFor(ev Event) []checksum.Scope {
	switch ev.Collection {
	case CollectionReports:
		scopes := []checksum.Scope{{Type: checksum.ScopeReports}}
		// A deleted report takes its comment-set token with it.
		if ev.Kind == Deleted && ev.Before != nil {
			scopes = append(scopes, checksum.Scope{Type: checksum.ScopeCommentsPurge, ReportID: ev.Before.ID})
		}
		return scopes

	case CollectionComments:
		var scopes []checksum.Scope
		// For deletes only the before image still names a report.
		if ev.After != nil && ev.After.ReportID != uuid.Nil {
			scopes = append(scopes, checksum.Scope{Type: checksum.ScopeComments, ReportID: ev.After.ReportID})
		} else if ev.Before != nil && ev.Before.ReportID != uuid.Nil {
			scopes = append(scopes, checksum.Scope{Type: checksum.ScopeComments, ReportID: ev.Before.ReportID})
		}
		return append(scopes, checksum.Scope{Type: checksum.ScopeGlobalComments})

	case CollectionUsers:
		var userID uuid.UUID
		if ev.After != nil {
			userID = ev.After.ID
		} else if ev.Before != nil {
			userID = ev.Before.ID
		}
		return []checksum.Scope{
			{Type: checksum.ScopeUsersVersion},
			{Type: checksum.ScopeUser, UserID: userID},
			{Type: checksum.ScopeReports},
			{Type: checksum.ScopeGlobalComments},
		}
	}
	return nil
}
