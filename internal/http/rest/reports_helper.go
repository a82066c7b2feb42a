package rest

import (
	"context"
	"errors"

	"github.com/gitgud/citywatch/internal/cascade"
	"github.com/gitgud/citywatch/internal/model"
	"github.com/gitgud/citywatch/util/values"
	"github.com/google/uuid"
)

func (api *API) CreateReportHelper(ctx context.Context, req model.CreateReportRequest) (model.CreateReportResponse, string, string, error) {
	exists, err := api.UserExistsRepo(ctx, req.UserID)
	if err != nil {
		return model.CreateReportResponse{}, values.Error, "Failed to verify user", err
	}
	if !exists {
		return model.CreateReportResponse{}, values.NotFound, "User not found", ErrUserNotFound
	}

	resp, err := api.CreateReportRepo(ctx, req)
	if err != nil {
		return model.CreateReportResponse{}, values.Error, "Failed to create report", err
	}

	api.Events.Publish(cascade.Event{
		Kind:       cascade.Created,
		Collection: cascade.CollectionReports,
		After:      &cascade.Image{ID: resp.ID},
	})
	return resp, values.Created, "Report created successfully", nil
}

func (api *API) GetAllReportsHelper(ctx context.Context) ([]model.Report, string, string, error) {
	reports, err := api.GetAllReportsRepo(ctx)
	if err != nil {
		return nil, values.Error, "Failed to fetch reports", err
	}
	return reports, values.Success, "Reports fetched successfully", nil
}

func (api *API) GetReportByIDHelper(ctx context.Context, id uuid.UUID) (model.Report, string, string, error) {
	report, err := api.GetReportByIDRepo(ctx, id)
	if errors.Is(err, ErrReportNotFound) {
		return model.Report{}, values.NotFound, "Report not found", err
	}
	if err != nil {
		return model.Report{}, values.Error, "Failed to fetch report", err
	}
	return report, values.Success, "Report fetched successfully", nil
}

func (api *API) UpdateReportHelper(ctx context.Context, id uuid.UUID, req model.UpdateReportRequest) (string, string, error) {
	err := api.UpdateReportRepo(ctx, id, req)
	switch {
	case errors.Is(err, ErrReportNotFound):
		return values.NotFound, "Report not found", err
	case errors.Is(err, ErrNotOwner):
		return values.NotAuthorised, "You can only edit your own reports", err
	case err != nil:
		return values.Error, "Failed to update report", err
	}

	api.Events.Publish(cascade.Event{
		Kind:       cascade.Updated,
		Collection: cascade.CollectionReports,
		Before:     &cascade.Image{ID: id},
		After:      &cascade.Image{ID: id},
	})
	return values.Success, "Report updated successfully", nil
}

func (api *API) DeleteReportHelper(ctx context.Context, id, userID uuid.UUID) (string, string, error) {
	err := api.DeleteReportRepo(ctx, id, userID)
	switch {
	case errors.Is(err, ErrReportNotFound):
		return values.NotFound, "Report not found", err
	case errors.Is(err, ErrNotOwner):
		return values.NotAuthorised, "You can only delete your own reports", err
	case err != nil:
		return values.Error, "Failed to delete report", err
	}

	// The report-deleted event also purges the comments_{reportId} key.
	api.Events.Publish(cascade.Event{
		Kind:       cascade.Deleted,
		Collection: cascade.CollectionReports,
		Before:     &cascade.Image{ID: id},
	})
	// The report's comments went with it; only the global comments
	// token still needs refreshing.
	api.Events.Publish(cascade.Event{
		Kind:       cascade.Deleted,
		Collection: cascade.CollectionComments,
		Before:     &cascade.Image{},
	})
	return values.Success, "Report deleted successfully", nil
}
