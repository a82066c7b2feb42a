package rest

import (
	"context"

	"github.com/gitgud/citywatch/internal/vote"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func ledgerTables(kind vote.Kind) (table, ref string) {
	if kind == vote.KindComment {
		return "comment_votes", "comment_id"
	}
	return "report_votes", "report_id"
}

// GetUserVoteRepo reads a voter's current ballot, 0 when none exists.
func (api *API) GetUserVoteRepo(ctx context.Context, kind vote.Kind, entityID, userID uuid.UUID) (int, error) {
	table, ref := ledgerTables(kind)
	var ballot int
	err := api.DB.QueryRow(ctx,
		`SELECT vote FROM `+table+` WHERE `+ref+` = $1 AND user_id = $2`,
		entityID, userID,
	).Scan(&ballot)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	return ballot, err
}

// GetUserVotesBatchRepo reads one voter's ballots for many entities in
// a single query. Entities without a ballot map to 0.
func (api *API) GetUserVotesBatchRepo(ctx context.Context, kind vote.Kind, entityIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]int, error) {
	table, ref := ledgerTables(kind)
	rows, err := api.DB.Query(ctx,
		`SELECT `+ref+`, vote FROM `+table+` WHERE `+ref+` = ANY($1) AND user_id = $2`,
		entityIDs, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votes := make(map[uuid.UUID]int, len(entityIDs))
	for _, id := range entityIDs {
		votes[id] = 0
	}
	for rows.Next() {
		var id uuid.UUID
		var ballot int
		if err := rows.Scan(&id, &ballot); err != nil {
			return nil, err
		}
		votes[id] = ballot
	}
	return votes, rows.Err()
}
