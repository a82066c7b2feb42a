package rest

import (
	"errors"
	"net/http"

	"github.com/gitgud/citywatch/internal/cascade"
	"github.com/gitgud/citywatch/internal/model"
	"github.com/gitgud/citywatch/util"
	"github.com/gitgud/citywatch/util/tracing"
	"github.com/gitgud/citywatch/util/values"
	"github.com/go-chi/chi/v5"
)

func (api *API) CommentRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Method(http.MethodPost, "/votes/batch", api.handle(api.GetUserCommentVotesBatch))
	mux.Method(http.MethodPut, "/{commentID}", api.handle(api.UpdateComment))
	mux.Method(http.MethodDelete, "/{commentID}", api.handle(api.DeleteComment))
	mux.Method(http.MethodPost, "/{commentID}/votes", api.handle(api.VoteOnComment))
	mux.Method(http.MethodGet, "/{commentID}/votes", api.handle(api.GetUserCommentVote))

	return mux
}

func (api *API) CommentOnReport(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	reportID, err := util.StringToUUID(chi.URLParam(r, "reportID"))
	if err != nil {
		return api.respondWithError(err, "invalid report ID", values.BadRequestBody, &tc)
	}

	var req model.CreateCommentRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return api.respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return api.respondWithError(err, "validation failed", values.BadRequestBody, &tc)
	}

	comment := model.Comment{
		ReportID: reportID,
		UserID:   req.UserID,
		Content:  req.Content,
	}

	comment, err = api.AddCommentRepo(r.Context(), comment)
	switch {
	case errors.Is(err, ErrReportNotFound):
		return api.respondWithError(err, "report not found", values.NotFound, &tc)
	case errors.Is(err, ErrUserNotFound):
		return api.respondWithError(err, "user not found", values.NotFound, &tc)
	case err != nil:
		return api.respondWithError(err, "failed to add comment", values.Error, &tc)
	}

	api.Events.Publish(cascade.Event{
		Kind:       cascade.Created,
		Collection: cascade.CollectionComments,
		After:      &cascade.Image{ID: comment.ID, ReportID: reportID},
	})
	// The comment counter lives on the report document.
	api.Events.Publish(cascade.Event{
		Kind:       cascade.Updated,
		Collection: cascade.CollectionReports,
		Before:     &cascade.Image{ID: reportID},
		After:      &cascade.Image{ID: reportID},
	})

	return &ServerResponse{
		Message:    "Comment added successfully",
		Status:     values.Created,
		StatusCode: util.StatusCode(values.Created),
		Data:       comment,
	}
}

func (api *API) GetComments(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	reportID, err := util.StringToUUID(chi.URLParam(r, "reportID"))
	if err != nil {
		return api.respondWithError(err, "invalid report ID", values.BadRequestBody, &tc)
	}

	comments, err := api.GetCommentsRepo(r.Context(), reportID)
	if err != nil {
		return api.respondWithError(err, "failed to get comments", values.Error, &tc)
	}
	if comments == nil {
		comments = []model.Comment{}
	}

	return &ServerResponse{
		Message:    "Comments retrieved successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       comments,
	}
}

func (api *API) GetCommentCount(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	reportID, err := util.StringToUUID(chi.URLParam(r, "reportID"))
	if err != nil {
		return api.respondWithError(err, "invalid report ID", values.BadRequestBody, &tc)
	}

	count, err := api.GetCommentCountRepo(r.Context(), reportID)
	if err != nil {
		return api.respondWithError(err, "failed to get comment count", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Comment count retrieved successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       map[string]int{"count": count},
	}
}

func (api *API) UpdateComment(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	commentID, err := util.StringToUUID(chi.URLParam(r, "commentID"))
	if err != nil {
		return api.respondWithError(err, "invalid comment ID", values.BadRequestBody, &tc)
	}

	var req model.UpdateCommentRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return api.respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return api.respondWithError(err, "validation failed", values.BadRequestBody, &tc)
	}

	reportID, err := api.UpdateCommentRepo(r.Context(), commentID, req)
	switch {
	case errors.Is(err, ErrCommentNotFound):
		return api.respondWithError(err, "comment not found", values.NotFound, &tc)
	case errors.Is(err, ErrNotOwner):
		return api.respondWithError(err, "you can only edit your own comments", values.NotAuthorised, &tc)
	case err != nil:
		return api.respondWithError(err, "failed to update comment", values.Error, &tc)
	}

	api.Events.Publish(cascade.Event{
		Kind:       cascade.Updated,
		Collection: cascade.CollectionComments,
		Before:     &cascade.Image{ID: commentID, ReportID: reportID},
		After:      &cascade.Image{ID: commentID, ReportID: reportID},
	})

	return &ServerResponse{
		Message:    "Comment updated successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
	}
}

func (api *API) DeleteComment(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	commentID, err := util.StringToUUID(chi.URLParam(r, "commentID"))
	if err != nil {
		return api.respondWithError(err, "invalid comment ID", values.BadRequestBody, &tc)
	}

	userID, err := util.StringToUUID(r.URL.Query().Get("user_id"))
	if err != nil {
		return api.respondWithError(err, "invalid user ID", values.BadRequestBody, &tc)
	}

	reportID, err := api.DeleteCommentRepo(r.Context(), commentID, userID)
	switch {
	case errors.Is(err, ErrCommentNotFound):
		return api.respondWithError(err, "comment not found", values.NotFound, &tc)
	case errors.Is(err, ErrNotOwner):
		return api.respondWithError(err, "you can only delete your own comments", values.NotAuthorised, &tc)
	case err != nil:
		return api.respondWithError(err, "failed to delete comment", values.Error, &tc)
	}

	// For deletes the before image still names the report.
	api.Events.Publish(cascade.Event{
		Kind:       cascade.Deleted,
		Collection: cascade.CollectionComments,
		Before:     &cascade.Image{ID: commentID, ReportID: reportID},
	})
	api.Events.Publish(cascade.Event{
		Kind:       cascade.Updated,
		Collection: cascade.CollectionReports,
		Before:     &cascade.Image{ID: reportID},
		After:      &cascade.Image{ID: reportID},
	})

	return &ServerResponse{
		Message:    "Comment deleted successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
	}
}
