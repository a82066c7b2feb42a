package checksum

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	reportCount   int
	reportLatest  int64
	commentCounts map[uuid.UUID]int
	commentLatest map[uuid.UUID]int64
	globalCount   int
	users         map[uuid.UUID]bool
}

func (f *fakeSource) ReportSet(context.Context) (int, int64, error) {
	return f.reportCount, f.reportLatest, nil
}

func (f *fakeSource) CommentSet(_ context.Context, reportID uuid.UUID) (int, int64, error) {
	return f.commentCounts[reportID], f.commentLatest[reportID], nil
}

func (f *fakeSource) GlobalCommentCount(context.Context) (int, error) {
	return f.globalCount, nil
}

func (f *fakeSource) UserExists(_ context.Context, userID uuid.UUID) (bool, error) {
	return f.users[userID], nil
}

type fakeStore struct {
	mu      sync.Mutex
	tokens  map[string]string
	version int64
	now     func() time.Time
}

func newFakeStore(now func() time.Time) *fakeStore {
	return &fakeStore{tokens: map[string]string{}, now: now}
}

func (f *fakeStore) SetToken(_ context.Context, key, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[key] = token
	return nil
}

func (f *fakeStore) DeleteToken(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, key)
	return nil
}

func (f *fakeStore) UsersVersion(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.version, nil
}

func (f *fakeStore) BumpUsersVersion(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := f.now().UnixMilli()
	if next <= f.version {
		next = f.version + 1
	}
	f.version = next
	return next, nil
}

func (f *fakeStore) All(context.Context) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record := make(map[string]string, len(f.tokens))
	for k, v := range f.tokens {
		record[k] = v
	}
	return record, nil
}

func (f *fakeStore) token(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokens[key]
}

func newTestRecalculator(source *fakeSource, store *fakeStore, now func() time.Time) *Recalculator {
	r := NewRecalculator(source, store, zap.NewNop())
	r.now = now
	return r
}

func fixedClock(millis int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(millis) }
}

func TestRecomputeReportsTokenFormat(t *testing.T) {
	t.Parallel()

	source := &fakeSource{reportCount: 3, reportLatest: 1700000000000}
	store := newFakeStore(fixedClock(1))
	store.version = 42
	recalc := newTestRecalculator(source, store, fixedClock(1))

	require.NoError(t, recalc.Recompute(context.Background(), Scope{Type: ScopeReports}))
	assert.Equal(t, "3_1700000000000_u42", store.token(KeyReports))
}

func TestRecomputeReportsEmptyCollection(t *testing.T) {
	t.Parallel()

	store := newFakeStore(fixedClock(1))
	recalc := newTestRecalculator(&fakeSource{}, store, fixedClock(1))

	require.NoError(t, recalc.Recompute(context.Background(), Scope{Type: ScopeReports}))
	assert.Equal(t, "0_0_u0", store.token(KeyReports))
}

func TestRecomputeIsIdempotent(t *testing.T) {
	t.Parallel()

	reportID := uuid.New()
	source := &fakeSource{
		reportCount:   2,
		reportLatest:  5000,
		commentCounts: map[uuid.UUID]int{reportID: 7},
		commentLatest: map[uuid.UUID]int64{reportID: 6000},
	}
	store := newFakeStore(fixedClock(1))
	recalc := newTestRecalculator(source, store, fixedClock(1))
	ctx := context.Background()

	require.NoError(t, recalc.Recompute(ctx, Scope{Type: ScopeReports}))
	first := store.token(KeyReports)
	require.NoError(t, recalc.Recompute(ctx, Scope{Type: ScopeReports}))
	assert.Equal(t, first, store.token(KeyReports))

	key := CommentsKey(reportID)
	require.NoError(t, recalc.Recompute(ctx, Scope{Type: ScopeComments, ReportID: reportID}))
	firstComments := store.token(key)
	require.NoError(t, recalc.Recompute(ctx, Scope{Type: ScopeComments, ReportID: reportID}))
	assert.Equal(t, firstComments, store.token(key))
}

func TestRecomputeFreshness(t *testing.T) {
	t.Parallel()

	source := &fakeSource{reportCount: 1, reportLatest: 1000}
	store := newFakeStore(fixedClock(1))
	recalc := newTestRecalculator(source, store, fixedClock(1))
	ctx := context.Background()

	require.NoError(t, recalc.Recompute(ctx, Scope{Type: ScopeReports}))
	before := store.token(KeyReports)

	source.reportCount = 2
	source.reportLatest = 2000
	require.NoError(t, recalc.Recompute(ctx, Scope{Type: ScopeReports}))
	assert.NotEqual(t, before, store.token(KeyReports))
}

func TestGlobalCommentsTokenAlwaysChanges(t *testing.T) {
	t.Parallel()

	source := &fakeSource{globalCount: 4}
	store := newFakeStore(fixedClock(1))
	millis := int64(100)
	recalc := newTestRecalculator(source, store, func() time.Time {
		millis++
		return time.UnixMilli(millis)
	})
	ctx := context.Background()

	require.NoError(t, recalc.Recompute(ctx, Scope{Type: ScopeGlobalComments}))
	first := store.token(KeyCommentsGlobal)
	assert.Equal(t, "global_4_101", first)

	// No data change, the wall clock alone moves the token.
	require.NoError(t, recalc.Recompute(ctx, Scope{Type: ScopeGlobalComments}))
	assert.NotEqual(t, first, store.token(KeyCommentsGlobal))
}

func TestRecomputeCommentsPurgeRemovesKey(t *testing.T) {
	t.Parallel()

	reportID := uuid.New()
	source := &fakeSource{
		commentCounts: map[uuid.UUID]int{reportID: 2},
		commentLatest: map[uuid.UUID]int64{reportID: 3000},
	}
	store := newFakeStore(fixedClock(1))
	recalc := newTestRecalculator(source, store, fixedClock(1))
	ctx := context.Background()

	key := CommentsKey(reportID)
	require.NoError(t, recalc.Recompute(ctx, Scope{Type: ScopeComments, ReportID: reportID}))
	require.NotEmpty(t, store.token(key))

	// After the owning report is deleted the key disappears from the
	// record instead of going stale.
	require.NoError(t, recalc.Recompute(ctx, Scope{Type: ScopeCommentsPurge, ReportID: reportID}))
	record, err := store.All(ctx)
	require.NoError(t, err)
	assert.NotContains(t, record, key)
}

func TestRecomputeUserSkipsMissingUser(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	store := newFakeStore(fixedClock(1))
	recalc := newTestRecalculator(&fakeSource{users: map[uuid.UUID]bool{}}, store, fixedClock(99))

	require.NoError(t, recalc.Recompute(context.Background(), Scope{Type: ScopeUser, UserID: userID}))
	assert.Empty(t, store.token(UserKey(userID)))
}

func TestRecomputeUserWritesToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	source := &fakeSource{users: map[uuid.UUID]bool{userID: true}}
	store := newFakeStore(fixedClock(1))
	recalc := newTestRecalculator(source, store, fixedClock(555))

	require.NoError(t, recalc.Recompute(context.Background(), Scope{Type: ScopeUser, UserID: userID}))
	assert.Equal(t, userID.String()+"_555", store.token(UserKey(userID)))
}

func TestBumpUsersVersionStrictlyIncreases(t *testing.T) {
	t.Parallel()

	store := newFakeStore(fixedClock(10))
	recalc := newTestRecalculator(&fakeSource{}, store, fixedClock(10))
	ctx := context.Background()

	require.NoError(t, recalc.Recompute(ctx, Scope{Type: ScopeUsersVersion}))
	first, err := store.UsersVersion(ctx)
	require.NoError(t, err)

	// The clock is frozen, the version must still advance.
	require.NoError(t, recalc.Recompute(ctx, Scope{Type: ScopeUsersVersion}))
	second, err := store.UsersVersion(ctx)
	require.NoError(t, err)
	assert.Greater(t, second, first)
}
