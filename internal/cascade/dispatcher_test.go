package cascade

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gitgud/citywatch/internal/checksum"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingRecomputer struct {
	mu     sync.Mutex
	scopes []checksum.Scope
	fail   map[checksum.ScopeType]error
}

func (r *recordingRecomputer) Recompute(_ context.Context, scope checksum.Scope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scopes = append(r.scopes, scope)
	if r.fail != nil {
		return r.fail[scope.Type]
	}
	return nil
}

func (r *recordingRecomputer) recorded() []checksum.Scope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]checksum.Scope(nil), r.scopes...)
}

func TestDispatcherProcessesEvents(t *testing.T) {
	t.Parallel()

	recomputer := &recordingRecomputer{}
	d := NewDispatcher(recomputer, zap.NewNop(), 2, 16)
	go d.Run()

	reportID := uuid.New()
	d.Publish(Event{Kind: Created, Collection: CollectionReports, After: &Image{ID: reportID}})
	d.Publish(Event{Kind: Created, Collection: CollectionComments, After: &Image{ID: uuid.New(), ReportID: reportID}})
	d.Stop()

	scopes := recomputer.recorded()
	assert.Contains(t, scopes, checksum.Scope{Type: checksum.ScopeReports})
	assert.Contains(t, scopes, checksum.Scope{Type: checksum.ScopeComments, ReportID: reportID})
	assert.Contains(t, scopes, checksum.Scope{Type: checksum.ScopeGlobalComments})
}

func TestDispatcherSwallowsRecomputeErrors(t *testing.T) {
	t.Parallel()

	recomputer := &recordingRecomputer{
		fail: map[checksum.ScopeType]error{
			checksum.ScopeReports: errors.New("store unavailable"),
		},
	}
	d := NewDispatcher(recomputer, zap.NewNop(), 1, 16)
	go d.Run()

	// The failing reports scope must not stop the comments event after it.
	d.Publish(Event{Kind: Updated, Collection: CollectionReports, After: &Image{ID: uuid.New()}})
	d.Publish(Event{Kind: Created, Collection: CollectionComments, After: &Image{ID: uuid.New(), ReportID: uuid.New()}})
	d.Stop()

	scopes := recomputer.recorded()
	assert.Contains(t, scopes, checksum.Scope{Type: checksum.ScopeGlobalComments})
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	t.Parallel()

	recomputer := &recordingRecomputer{}
	d := NewDispatcher(recomputer, zap.NewNop(), 1, 1)

	// Run is never started, so only the buffered slot accepts an event;
	// the second Publish must not block.
	d.Publish(Event{Kind: Created, Collection: CollectionReports})
	d.Publish(Event{Kind: Created, Collection: CollectionReports})
}

// TestUserWriteCascadeEmbedsNewVersion drives the real recalculator
// through the dispatcher with in-memory state: after a user write, the
// recomputed reports token must embed a users version strictly greater
// than before.
func TestUserWriteCascadeEmbedsNewVersion(t *testing.T) {
	t.Parallel()

	store := &versionStore{tokens: map[string]string{}}
	recalc := checksum.NewRecalculator(&staticSource{}, store, zap.NewNop())

	d := NewDispatcher(recalc, zap.NewNop(), 1, 16)
	go d.Run()

	userID := uuid.New()
	d.Publish(Event{Kind: Updated, Collection: CollectionUsers, After: &Image{ID: userID}})
	d.Stop()

	version, err := store.UsersVersion(context.Background())
	require.NoError(t, err)
	assert.Greater(t, version, int64(0))
	assert.Contains(t, store.tokens[checksum.KeyReports], "_u")
	assert.NotContains(t, store.tokens[checksum.KeyReports], "_u0")
}

type staticSource struct{}

func (staticSource) ReportSet(context.Context) (int, int64, error) { return 1, 1000, nil }

func (staticSource) CommentSet(context.Context, uuid.UUID) (int, int64, error) { return 0, 0, nil }

func (staticSource) GlobalCommentCount(context.Context) (int, error) { return 0, nil }

func (staticSource) UserExists(context.Context, uuid.UUID) (bool, error) { return true, nil }

type versionStore struct {
	mu      sync.Mutex
	tokens  map[string]string
	version int64
}

func (s *versionStore) SetToken(_ context.Context, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[key] = token
	return nil
}

func (s *versionStore) DeleteToken(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, key)
	return nil
}

func (s *versionStore) UsersVersion(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version, nil
}

func (s *versionStore) BumpUsersVersion(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	return s.version, nil
}

func (s *versionStore) All(context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record := make(map[string]string, len(s.tokens))
	for k, v := range s.tokens {
		record[k] = v
	}
	return record, nil
}
