package vote

import (
	"context"

	"github.com/gitgud/citywatch/internal/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

// PgStore implements Store on the Postgres entity tables. Reports keep
// their ledger in report_votes, comments in comment_votes.
type PgStore struct {
	DB *db.DB
}

func NewPgStore(database *db.DB) *PgStore {
	return &PgStore{DB: database}
}

func (s *PgStore) InTx(ctx context.Context, fn func(Tx) error) error {
	err := s.DB.RunInSerializableTx(ctx, func(tx pgx.Tx) error {
		return fn(&pgTx{tx: tx})
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "40001", "40P01": // serialization_failure, deadlock_detected
				return errors.Wrap(ErrConflict, pgErr.Message)
			}
		}
		return err
	}
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

func tables(kind Kind) (entity, ledger, ref string) {
	if kind == KindComment {
		return "comments", "comment_votes", "comment_id"
	}
	return "reports", "report_votes", "report_id"
}

func (t *pgTx) Score(ctx context.Context, kind Kind, entityID uuid.UUID) (int, error) {
	entity, _, _ := tables(kind)
	var score int
	err := t.tx.QueryRow(ctx, `SELECT score FROM `+entity+` WHERE id = $1`, entityID).Scan(&score)
	if err == pgx.ErrNoRows {
		return 0, ErrNotFound
	}
	return score, err
}

func (t *pgTx) Ballot(ctx context.Context, kind Kind, entityID, voterID uuid.UUID) (int, error) {
	_, ledger, ref := tables(kind)
	var vote int
	err := t.tx.QueryRow(ctx,
		`SELECT vote FROM `+ledger+` WHERE `+ref+` = $1 AND user_id = $2`,
		entityID, voterID,
	).Scan(&vote)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	return vote, err
}

func (t *pgTx) SetBallot(ctx context.Context, kind Kind, entityID, voterID uuid.UUID, vote int) error {
	_, ledger, ref := tables(kind)
	_, err := t.tx.Exec(ctx,
		`INSERT INTO `+ledger+` (`+ref+`, user_id, vote) VALUES ($1, $2, $3)
		 ON CONFLICT (`+ref+`, user_id) DO UPDATE SET vote = EXCLUDED.vote`,
		entityID, voterID, vote,
	)
	return err
}

func (t *pgTx) DeleteBallot(ctx context.Context, kind Kind, entityID, voterID uuid.UUID) error {
	_, ledger, ref := tables(kind)
	_, err := t.tx.Exec(ctx,
		`DELETE FROM `+ledger+` WHERE `+ref+` = $1 AND user_id = $2`,
		entityID, voterID,
	)
	return err
}

func (t *pgTx) SetScore(ctx context.Context, kind Kind, entityID uuid.UUID, score int) error {
	entity, _, _ := tables(kind)
	_, err := t.tx.Exec(ctx, `UPDATE `+entity+` SET score = $1 WHERE id = $2`, score, entityID)
	return err
}
