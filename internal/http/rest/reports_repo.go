package rest

import (
	"context"
	"errors"

	"github.com/gitgud/citywatch/internal/model"
	"github.com/gitgud/citywatch/util"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrReportNotFound  = errors.New("report not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrNotOwner        = errors.New("actor does not own the entity")
)

// statsColumn maps a report status to its metadata_stats counter.
func statsColumn(status string) string {
	switch status {
	case model.StatusSubmitted:
		return "submitted"
	case model.StatusConfirmed:
		return "confirmed"
	case model.StatusResolved:
		return "resolved"
	default:
		return "in_progress"
	}
}

// CreateReportRepo inserts a report and bumps the stats counter for its
// status in the same transaction.
func (api *API) CreateReportRepo(ctx context.Context, req model.CreateReportRequest) (model.CreateReportResponse, error) {
	var resp model.CreateReportResponse
	err := api.Database.RunInTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO reports (
				id, user_id, description, hazard_type, local_gov,
				location_details, latitude, longitude
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, status, score, created_at
		`
		err := tx.QueryRow(ctx, query,
			util.GenerateUUID(), req.UserID, req.Description, req.HazardType,
			req.LocalGov, req.LocationDetails, req.Latitude, req.Longitude,
		).Scan(&resp.ID, &resp.Status, &resp.Score, &resp.CreatedAt)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE metadata_stats SET `+statsColumn(resp.Status)+` = `+statsColumn(resp.Status)+` + 1 WHERE id = 1`)
		return err
	})
	if err != nil {
		return model.CreateReportResponse{}, err
	}
	return resp, nil
}

const reportColumns = `
	r.id, r.user_id, COALESCE(u.name, 'Anonymous'), r.description, r.hazard_type,
	r.local_gov, r.location_details, r.latitude, r.longitude, r.status,
	r.score, r.comments_count, r.created_at, r.updated_at
`

func scanReport(row pgx.Row) (model.Report, error) {
	var report model.Report
	err := row.Scan(
		&report.ID, &report.UserID, &report.UserName, &report.Description,
		&report.HazardType, &report.LocalGov, &report.LocationDetails,
		&report.Latitude, &report.Longitude, &report.Status, &report.Score,
		&report.CommentsCount, &report.CreatedAt, &report.UpdatedAt,
	)
	return report, err
}

func (api *API) GetAllReportsRepo(ctx context.Context) ([]model.Report, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM reports r
		LEFT JOIN users u ON u.id = r.user_id
		ORDER BY r.created_at DESC
	`
	rows, err := api.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

func (api *API) GetReportByIDRepo(ctx context.Context, id uuid.UUID) (model.Report, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM reports r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.id = $1
	`
	report, err := scanReport(api.DB.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return model.Report{}, ErrReportNotFound
	}
	return report, err
}

// UpdateReportRepo applies the provided fields after verifying the
// actor owns the report. A status change moves the stats counters.
func (api *API) UpdateReportRepo(ctx context.Context, id uuid.UUID, req model.UpdateReportRequest) error {
	return api.Database.RunInTx(ctx, func(tx pgx.Tx) error {
		var ownerID uuid.UUID
		var status string
		err := tx.QueryRow(ctx, `SELECT user_id, status FROM reports WHERE id = $1 FOR UPDATE`, id).
			Scan(&ownerID, &status)
		if err == pgx.ErrNoRows {
			return ErrReportNotFound
		}
		if err != nil {
			return err
		}
		if ownerID != req.UserID {
			return ErrNotOwner
		}

		_, err = tx.Exec(ctx, `
			UPDATE reports SET
				description      = COALESCE($1, description),
				hazard_type      = COALESCE($2, hazard_type),
				local_gov        = COALESCE($3, local_gov),
				location_details = COALESCE($4, location_details),
				latitude         = COALESCE($5, latitude),
				longitude        = COALESCE($6, longitude),
				status           = COALESCE($7, status),
				updated_at       = NOW()
			WHERE id = $8
		`, req.Description, req.HazardType, req.LocalGov, req.LocationDetails,
			req.Latitude, req.Longitude, req.Status, id)
		if err != nil {
			return err
		}

		if req.Status != nil && *req.Status != status {
			oldCol, newCol := statsColumn(status), statsColumn(*req.Status)
			if oldCol != newCol {
				_, err = tx.Exec(ctx, `
					UPDATE metadata_stats
					SET `+oldCol+` = `+oldCol+` - 1, `+newCol+` = `+newCol+` + 1
					WHERE id = 1
				`)
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// DeleteReportRepo removes a report with everything hanging off it:
// comment votes, comments, report votes and the stats counter for its
// prior status. One transaction; the per-report checksum key is purged
// by the cascade afterwards.
func (api *API) DeleteReportRepo(ctx context.Context, id, userID uuid.UUID) error {
	return api.Database.RunInTx(ctx, func(tx pgx.Tx) error {
		var ownerID uuid.UUID
		var status string
		err := tx.QueryRow(ctx, `SELECT user_id, status FROM reports WHERE id = $1 FOR UPDATE`, id).
			Scan(&ownerID, &status)
		if err == pgx.ErrNoRows {
			return ErrReportNotFound
		}
		if err != nil {
			return err
		}
		if ownerID != userID {
			return ErrNotOwner
		}

		statements := []string{
			`DELETE FROM comment_votes WHERE comment_id IN (SELECT id FROM comments WHERE report_id = $1)`,
			`DELETE FROM comments WHERE report_id = $1`,
			`DELETE FROM report_votes WHERE report_id = $1`,
			`DELETE FROM reports WHERE id = $1`,
		}
		for _, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt, id); err != nil {
				return err
			}
		}

		col := statsColumn(status)
		_, err = tx.Exec(ctx, `UPDATE metadata_stats SET `+col+` = `+col+` - 1 WHERE id = 1`)
		return err
	})
}
