package vote

import (
	"context"

	"github.com/google/uuid"
)

// Tx is the transaction-scoped view of the entity store the aggregator
// works against. All five calls happen inside one atomic transaction.
type Tx interface {
	// Score returns the entity's denormalized score, or ErrNotFound.
	Score(ctx context.Context, kind Kind, entityID uuid.UUID) (int, error)
	// Ballot returns the voter's current ballot for the entity, 0 when
	// no ledger row exists.
	Ballot(ctx context.Context, kind Kind, entityID, voterID uuid.UUID) (int, error)
	SetBallot(ctx context.Context, kind Kind, entityID, voterID uuid.UUID, vote int) error
	DeleteBallot(ctx context.Context, kind Kind, entityID, voterID uuid.UUID) error
	SetScore(ctx context.Context, kind Kind, entityID uuid.UUID, score int) error
}

// Store runs a closure inside a serializable transaction. A conflicting
// concurrent transaction must surface as an error wrapping ErrConflict
// so the aggregator can retry.
type Store interface {
	InTx(ctx context.Context, fn func(Tx) error) error
}
