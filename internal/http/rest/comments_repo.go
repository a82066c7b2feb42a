package rest

import (
	"context"

	"github.com/gitgud/citywatch/internal/model"
	"github.com/gitgud/citywatch/util"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AddCommentRepo inserts a comment and bumps the report's comment
// counter in the same transaction.
func (api *API) AddCommentRepo(ctx context.Context, comment model.Comment) (model.Comment, error) {
	err := api.Database.RunInTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reports WHERE id = $1)`, comment.ReportID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrReportNotFound
		}
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, comment.UserID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}

		err := tx.QueryRow(ctx, `
			INSERT INTO comments (id, report_id, user_id, content)
			VALUES ($1, $2, $3, $4)
			RETURNING id, score, created_at
		`, util.GenerateUUID(), comment.ReportID, comment.UserID, comment.Content).
			Scan(&comment.ID, &comment.Score, &comment.CreatedAt)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE reports SET comments_count = comments_count + 1, updated_at = NOW() WHERE id = $1`,
			comment.ReportID)
		return err
	})
	if err != nil {
		return model.Comment{}, err
	}
	return comment, nil
}

func (api *API) GetCommentsRepo(ctx context.Context, reportID uuid.UUID) ([]model.Comment, error) {
	query := `
		SELECT c.id, c.report_id, c.user_id, COALESCE(u.name, 'Anonymous'),
		       c.content, c.score, c.created_at
		FROM comments c
		LEFT JOIN users u ON u.id = c.user_id
		WHERE c.report_id = $1
		ORDER BY c.created_at DESC
	`
	rows, err := api.DB.Query(ctx, query, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var comment model.Comment
		err := rows.Scan(
			&comment.ID, &comment.ReportID, &comment.UserID, &comment.UserName,
			&comment.Content, &comment.Score, &comment.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func (api *API) GetCommentCountRepo(ctx context.Context, reportID uuid.UUID) (int, error) {
	var count int
	err := api.DB.QueryRow(ctx, `SELECT COUNT(*) FROM comments WHERE report_id = $1`, reportID).Scan(&count)
	return count, err
}

// UpdateCommentRepo rewrites a comment's content after an ownership
// check. Returns the owning report's ID for the cascade.
func (api *API) UpdateCommentRepo(ctx context.Context, id uuid.UUID, req model.UpdateCommentRequest) (uuid.UUID, error) {
	var reportID uuid.UUID
	err := api.Database.RunInTx(ctx, func(tx pgx.Tx) error {
		var ownerID uuid.UUID
		err := tx.QueryRow(ctx, `SELECT user_id, report_id FROM comments WHERE id = $1 FOR UPDATE`, id).
			Scan(&ownerID, &reportID)
		if err == pgx.ErrNoRows {
			return ErrCommentNotFound
		}
		if err != nil {
			return err
		}
		if ownerID != req.UserID {
			return ErrNotOwner
		}

		_, err = tx.Exec(ctx, `UPDATE comments SET content = $1 WHERE id = $2`, req.Content, id)
		return err
	})
	return reportID, err
}

// DeleteCommentRepo removes a comment, its votes, and decrements the
// report's comment counter. Returns the owning report's ID.
func (api *API) DeleteCommentRepo(ctx context.Context, id, userID uuid.UUID) (uuid.UUID, error) {
	var reportID uuid.UUID
	err := api.Database.RunInTx(ctx, func(tx pgx.Tx) error {
		var ownerID uuid.UUID
		err := tx.QueryRow(ctx, `SELECT user_id, report_id FROM comments WHERE id = $1 FOR UPDATE`, id).
			Scan(&ownerID, &reportID)
		if err == pgx.ErrNoRows {
			return ErrCommentNotFound
		}
		if err != nil {
			return err
		}
		if ownerID != userID {
			return ErrNotOwner
		}

		if _, err = tx.Exec(ctx, `DELETE FROM comment_votes WHERE comment_id = $1`, id); err != nil {
			return err
		}
		if _, err = tx.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id); err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE reports SET comments_count = comments_count - 1, updated_at = NOW() WHERE id = $1`,
			reportID)
		return err
	})
	return reportID, err
}

// CommentReportIDRepo resolves the report a comment belongs to.
func (api *API) CommentReportIDRepo(ctx context.Context, commentID uuid.UUID) (uuid.UUID, error) {
	var reportID uuid.UUID
	err := api.DB.QueryRow(ctx, `SELECT report_id FROM comments WHERE id = $1`, commentID).Scan(&reportID)
	if err == pgx.ErrNoRows {
		return uuid.Nil, ErrCommentNotFound
	}
	return reportID, err
}
