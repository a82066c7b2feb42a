package cascade

import (
	"testing"

	"github.com/gitgud/citywatch/internal/checksum"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopesForReportEvents(t *testing.T) {
	t.Parallel()

	reportID := uuid.New()
	for _, kind := range []EventKind{Created, Updated} {
		scopes := ScopesFor(Event{
			Kind:       kind,
			Collection: CollectionReports,
			After:      &Image{ID: reportID},
		})
		require.Len(t, scopes, 1, "kind %s", kind)
		assert.Equal(t, checksum.ScopeReports, scopes[0].Type)
	}
}

func TestScopesForReportDeletedPurgesCommentsKey(t *testing.T) {
	t.Parallel()

	reportID := uuid.New()
	scopes := ScopesFor(Event{
		Kind:       Deleted,
		Collection: CollectionReports,
		Before:     &Image{ID: reportID},
	})

	require.Len(t, scopes, 2)
	assert.Equal(t, checksum.ScopeReports, scopes[0].Type)
	assert.Equal(t, checksum.ScopeCommentsPurge, scopes[1].Type)
	assert.Equal(t, reportID, scopes[1].ReportID)
}

func TestScopesForCommentCreated(t *testing.T) {
	t.Parallel()

	reportID := uuid.New()
	scopes := ScopesFor(Event{
		Kind:       Created,
		Collection: CollectionComments,
		After:      &Image{ID: uuid.New(), ReportID: reportID},
	})

	require.Len(t, scopes, 2)
	assert.Equal(t, checksum.ScopeComments, scopes[0].Type)
	assert.Equal(t, reportID, scopes[0].ReportID)
	assert.Equal(t, checksum.ScopeGlobalComments, scopes[1].Type)
}

func TestScopesForCommentDeletedUsesBeforeImage(t *testing.T) {
	t.Parallel()

	reportID := uuid.New()
	scopes := ScopesFor(Event{
		Kind:       Deleted,
		Collection: CollectionComments,
		Before:     &Image{ID: uuid.New(), ReportID: reportID},
	})

	require.Len(t, scopes, 2)
	assert.Equal(t, checksum.ScopeComments, scopes[0].Type)
	assert.Equal(t, reportID, scopes[0].ReportID)
	assert.Equal(t, checksum.ScopeGlobalComments, scopes[1].Type)
}

func TestScopesForCommentWithoutReportReference(t *testing.T) {
	t.Parallel()

	// A mass delete under a removed report carries no report reference;
	// only the global token needs refreshing.
	scopes := ScopesFor(Event{
		Kind:       Deleted,
		Collection: CollectionComments,
		Before:     &Image{},
	})

	require.Len(t, scopes, 1)
	assert.Equal(t, checksum.ScopeGlobalComments, scopes[0].Type)
}

func TestScopesForUserWriteBumpsVersionFirst(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	for _, ev := range []Event{
		{Kind: Created, Collection: CollectionUsers, After: &Image{ID: userID}},
		{Kind: Updated, Collection: CollectionUsers, Before: &Image{ID: userID}, After: &Image{ID: userID}},
		{Kind: Deleted, Collection: CollectionUsers, Before: &Image{ID: userID}},
	} {
		scopes := ScopesFor(ev)
		require.Len(t, scopes, 4, "kind %s", ev.Kind)
		assert.Equal(t, checksum.ScopeUsersVersion, scopes[0].Type)
		assert.Equal(t, checksum.ScopeUser, scopes[1].Type)
		assert.Equal(t, userID, scopes[1].UserID)
		assert.Equal(t, checksum.ScopeReports, scopes[2].Type)
		assert.Equal(t, checksum.ScopeGlobalComments, scopes[3].Type)
	}
}

func TestScopesForUnknownCollection(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ScopesFor(Event{Kind: Created, Collection: "votes"}))
}
