package vote

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

type ballotKey struct {
	kind     Kind
	entityID uuid.UUID
	voterID  uuid.UUID
}

// memStore is an in-memory Store. A coarse lock serializes transactions,
// which matches the all-or-nothing semantics the aggregator relies on.
// conflictsLeft injects serialization failures for retry tests.
type memStore struct {
	mu            sync.Mutex
	scores        map[Kind]map[uuid.UUID]int
	ballots       map[ballotKey]int
	conflictsLeft int
}

func newMemStore() *memStore {
	return &memStore{
		scores:  map[Kind]map[uuid.UUID]int{KindReport: {}, KindComment: {}},
		ballots: map[ballotKey]int{},
	}
}

func (s *memStore) addEntity(kind Kind, id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[kind][id] = 0
}

func (s *memStore) score(kind Kind, id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scores[kind][id]
}

func (s *memStore) InTx(ctx context.Context, fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conflictsLeft > 0 {
		s.conflictsLeft--
		return ErrConflict
	}

	shadow := &memTx{
		scores:  map[Kind]map[uuid.UUID]int{KindReport: {}, KindComment: {}},
		ballots: map[ballotKey]int{},
		store:   s,
	}
	if err := fn(shadow); err != nil {
		return err
	}
	for kind, m := range shadow.scores {
		for id, score := range m {
			s.scores[kind][id] = score
		}
	}
	for key, ballot := range shadow.ballots {
		if ballot == 0 {
			delete(s.ballots, key)
		} else {
			s.ballots[key] = ballot
		}
	}
	return nil
}

type memTx struct {
	scores  map[Kind]map[uuid.UUID]int
	ballots map[ballotKey]int
	store   *memStore
}

func (t *memTx) Score(_ context.Context, kind Kind, entityID uuid.UUID) (int, error) {
	if score, ok := t.scores[kind][entityID]; ok {
		return score, nil
	}
	score, ok := t.store.scores[kind][entityID]
	if !ok {
		return 0, ErrNotFound
	}
	return score, nil
}

func (t *memTx) Ballot(_ context.Context, kind Kind, entityID, voterID uuid.UUID) (int, error) {
	key := ballotKey{kind, entityID, voterID}
	if ballot, ok := t.ballots[key]; ok {
		return ballot, nil
	}
	return t.store.ballots[key], nil
}

func (t *memTx) SetBallot(_ context.Context, kind Kind, entityID, voterID uuid.UUID, vote int) error {
	t.ballots[ballotKey{kind, entityID, voterID}] = vote
	return nil
}

func (t *memTx) DeleteBallot(_ context.Context, kind Kind, entityID, voterID uuid.UUID) error {
	t.ballots[ballotKey{kind, entityID, voterID}] = 0
	return nil
}

func (t *memTx) SetScore(_ context.Context, kind Kind, entityID uuid.UUID, score int) error {
	t.scores[kind][entityID] = score
	return nil
}

func newTestAggregator(store Store) *Aggregator {
	return NewAggregator(store, zap.NewNop(), 3, time.Millisecond)
}

func TestApplyInvalidVoteType(t *testing.T) {
	t.Parallel()

	agg := newTestAggregator(newMemStore())
	_, err := agg.Apply(context.Background(), KindReport, uuid.New(), uuid.New(), 2)
	assert.ErrorIs(t, err, ErrInvalidVote)
}

func TestApplyEntityNotFound(t *testing.T) {
	t.Parallel()

	agg := newTestAggregator(newMemStore())
	_, err := agg.Apply(context.Background(), KindReport, uuid.New(), uuid.New(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplyToggleLaw(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	reportID, voterID := uuid.New(), uuid.New()
	store.addEntity(KindReport, reportID)
	agg := newTestAggregator(store)
	ctx := context.Background()

	result, err := agg.Apply(ctx, KindReport, reportID, voterID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Score)
	assert.Equal(t, 1, result.Vote)

	// Same vote twice clears it and restores the original score.
	result, err = agg.Apply(ctx, KindReport, reportID, voterID, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 0, result.Vote)
}

func TestApplySwitchLaw(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	commentID, voterID := uuid.New(), uuid.New()
	store.addEntity(KindComment, commentID)
	agg := newTestAggregator(store)
	ctx := context.Background()

	result, err := agg.Apply(ctx, KindComment, commentID, voterID, 1)
	require.NoError(t, err)
	scoreAfterUp := result.Score

	result, err = agg.Apply(ctx, KindComment, commentID, voterID, -1)
	require.NoError(t, err)
	assert.Equal(t, scoreAfterUp-2, result.Score)
	assert.Equal(t, -1, result.Vote)
}

func TestApplyRemoveIdempotent(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	reportID, voterID := uuid.New(), uuid.New()
	store.addEntity(KindReport, reportID)
	agg := newTestAggregator(store)
	ctx := context.Background()

	_, err := agg.Apply(ctx, KindReport, reportID, voterID, -1)
	require.NoError(t, err)

	first, err := agg.Apply(ctx, KindReport, reportID, voterID, 0)
	require.NoError(t, err)
	second, err := agg.Apply(ctx, KindReport, reportID, voterID, 0)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 0, second.Score)
	assert.Equal(t, 0, second.Vote)
}

func TestApplyTwoVoterScenario(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	reportID := uuid.New()
	voterA, voterB := uuid.New(), uuid.New()
	store.addEntity(KindReport, reportID)
	agg := newTestAggregator(store)
	ctx := context.Background()

	result, err := agg.Apply(ctx, KindReport, reportID, voterA, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Score)
	assert.Equal(t, 1, result.Vote)

	result, err = agg.Apply(ctx, KindReport, reportID, voterB, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Score)

	// A resubmits the same vote: toggle off.
	result, err = agg.Apply(ctx, KindReport, reportID, voterA, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Score)
	assert.Equal(t, 0, result.Vote)

	// B switches to a downvote: delta -2.
	result, err = agg.Apply(ctx, KindReport, reportID, voterB, -1)
	require.NoError(t, err)
	assert.Equal(t, -1, result.Score)
	assert.Equal(t, -1, result.Vote)
}

func TestApplyRetriesOnConflict(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	reportID, voterID := uuid.New(), uuid.New()
	store.addEntity(KindReport, reportID)
	store.conflictsLeft = 2

	agg := newTestAggregator(store)
	result, err := agg.Apply(context.Background(), KindReport, reportID, voterID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Score)
}

func TestApplySurfacesConflictWhenRetriesExhausted(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	reportID, voterID := uuid.New(), uuid.New()
	store.addEntity(KindReport, reportID)
	store.conflictsLeft = 100

	agg := newTestAggregator(store)
	_, err := agg.Apply(context.Background(), KindReport, reportID, voterID, 1)
	assert.ErrorIs(t, err, ErrConflict)
	// The transaction never committed, so the score is unchanged.
	assert.Equal(t, 0, store.score(KindReport, reportID))
}

func TestApplyConcurrentVoters(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	reportID := uuid.New()
	store.addEntity(KindReport, reportID)
	agg := newTestAggregator(store)

	const voters = 25
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			voteType := 1
			if i%5 == 0 {
				voteType = -1
			}
			_, err := agg.Apply(context.Background(), KindReport, reportID, uuid.New(), voteType)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// 20 upvotes, 5 downvotes, all from distinct voters.
	assert.Equal(t, 15, store.score(KindReport, reportID))
}
