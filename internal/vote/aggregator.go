package vote

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Result is what the caller sees after a ballot is applied: the
// entity's new score and the voter's ballot as it now stands.
type Result struct {
	Score int
	Vote  int
}

// Aggregator applies ballots to votable entities. Each Apply call runs
// as one atomic transaction over the entity's score and the voter's
// ledger row; serialization conflicts are retried with backoff up to
// maxRetries before ErrConflict surfaces.
type Aggregator struct {
	store      Store
	logger     *zap.Logger
	maxRetries int
	interval   time.Duration
}

func NewAggregator(store Store, logger *zap.Logger, maxRetries int, interval time.Duration) *Aggregator {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	if interval <= 0 {
		interval = 25 * time.Millisecond
	}
	return &Aggregator{
		store:      store,
		logger:     logger,
		maxRetries: maxRetries,
		interval:   interval,
	}
}

// Apply records voteType (1, -1 or 0) for voterID on the entity. The
// same vote twice toggles it off, a different vote switches, 0 removes.
func (a *Aggregator) Apply(ctx context.Context, kind Kind, entityID, voterID uuid.UUID, voteType int) (Result, error) {
	if !validVoteType(voteType) {
		return Result{}, ErrInvalidVote
	}

	var result Result
	attempt := func() error {
		err := a.store.InTx(ctx, func(tx Tx) error {
			score, err := tx.Score(ctx, kind, entityID)
			if err != nil {
				return err
			}
			previous, err := tx.Ballot(ctx, kind, entityID, voterID)
			if err != nil {
				return err
			}

			resulting, delta := resolve(previous, voteType)
			if resulting == 0 {
				if err := tx.DeleteBallot(ctx, kind, entityID, voterID); err != nil {
					return err
				}
			} else {
				if err := tx.SetBallot(ctx, kind, entityID, voterID, resulting); err != nil {
					return err
				}
			}
			if err := tx.SetScore(ctx, kind, entityID, score+delta); err != nil {
				return err
			}

			result = Result{Score: score + delta, Vote: resulting}
			return nil
		})
		if err != nil && !errors.Is(err, ErrConflict) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(a.interval), uint64(a.maxRetries)),
		ctx,
	)
	if err := backoff.Retry(attempt, b); err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Err
		}
		if errors.Is(err, ErrConflict) {
			a.logger.Warn("vote transaction exhausted retries",
				zap.String("kind", string(kind)),
				zap.String("entity_id", entityID.String()),
				zap.String("voter_id", voterID.String()),
			)
		}
		return Result{}, err
	}
	return result, nil
}
