package rest

import (
	"testing"

	"github.com/gitgud/citywatch/internal/cascade"
	"github.com/gitgud/citywatch/internal/checksum"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentVoteEventCarriesReportReference(t *testing.T) {
	t.Parallel()

	commentID, reportID := uuid.New(), uuid.New()
	scopes := cascade.ScopesFor(commentVoteEvent(commentID, reportID))

	require.Len(t, scopes, 2)
	assert.Equal(t, checksum.ScopeComments, scopes[0].Type)
	assert.Equal(t, reportID, scopes[0].ReportID)
	assert.Equal(t, checksum.ScopeGlobalComments, scopes[1].Type)
}

func TestCommentVoteEventDegradesWhenLookupFails(t *testing.T) {
	t.Parallel()

	// A committed vote whose report lookup failed still produces an
	// event; without a report reference it refreshes the global comments
	// token rather than dropping the cascade entirely.
	scopes := cascade.ScopesFor(commentVoteEvent(uuid.New(), uuid.Nil))

	require.Len(t, scopes, 1)
	assert.Equal(t, checksum.ScopeGlobalComments, scopes[0].Type)
}
