package rest

import (
	"errors"
	"net/http"

	"github.com/gitgud/citywatch/internal/cascade"
	"github.com/gitgud/citywatch/internal/model"
	"github.com/gitgud/citywatch/internal/vote"
	"github.com/gitgud/citywatch/util"
	"github.com/gitgud/citywatch/util/tracing"
	"github.com/gitgud/citywatch/util/values"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (api *API) VoteOnReport(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	reportID, err := util.StringToUUID(chi.URLParam(r, "reportID"))
	if err != nil {
		return api.respondWithError(err, "invalid report ID", values.BadRequestBody, &tc)
	}

	var req model.VoteRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return api.respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return api.respondWithError(err, "validation failed", values.BadRequestBody, &tc)
	}

	result, err := api.Votes.Apply(r.Context(), vote.KindReport, reportID, req.UserID, req.VoteType)
	if resp := api.voteErrorResponse(err, &tc); resp != nil {
		return resp
	}

	// The score lives on the report document, so a vote is a report
	// write as far as the cache cascade is concerned.
	api.Events.Publish(cascade.Event{
		Kind:       cascade.Updated,
		Collection: cascade.CollectionReports,
		Before:     &cascade.Image{ID: reportID},
		After:      &cascade.Image{ID: reportID},
	})

	return &ServerResponse{
		Message:    "Vote recorded successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       model.VoteResponse{Score: result.Score, UserVote: result.Vote},
	}
}

func (api *API) VoteOnComment(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	commentID, err := util.StringToUUID(chi.URLParam(r, "commentID"))
	if err != nil {
		return api.respondWithError(err, "invalid comment ID", values.BadRequestBody, &tc)
	}

	var req model.VoteRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return api.respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return api.respondWithError(err, "validation failed", values.BadRequestBody, &tc)
	}

	result, err := api.Votes.Apply(r.Context(), vote.KindComment, commentID, req.UserID, req.VoteType)
	if resp := api.voteErrorResponse(err, &tc); resp != nil {
		return resp
	}

	// The vote is committed at this point. A failed report lookup must
	// not silence the cascade: log it and publish without the report
	// reference, which still refreshes the global comments token.
	reportID, lookupErr := api.CommentReportIDRepo(r.Context(), commentID)
	if lookupErr != nil {
		api.Logger.Warn("report lookup for voted comment failed, cascading without report reference",
			zap.String("comment_id", commentID.String()),
			zap.Error(lookupErr),
		)
	}
	api.Events.Publish(commentVoteEvent(commentID, reportID))

	return &ServerResponse{
		Message:    "Vote recorded successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       model.VoteResponse{Score: result.Score, UserVote: result.Vote},
	}
}

// commentVoteEvent builds the cascade event for a comment vote. With no
// report reference (failed lookup) the cascade degrades to the global
// comments token only.
func commentVoteEvent(commentID, reportID uuid.UUID) cascade.Event {
	return cascade.Event{
		Kind:       cascade.Updated,
		Collection: cascade.CollectionComments,
		Before:     &cascade.Image{ID: commentID, ReportID: reportID},
		After:      &cascade.Image{ID: commentID, ReportID: reportID},
	}
}

// voteErrorResponse maps aggregator errors onto response statuses, nil
// when the vote succeeded.
func (api *API) voteErrorResponse(err error, tc *tracing.Context) *ServerResponse {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, vote.ErrInvalidVote):
		return api.respondWithError(err, "invalid vote type", values.BadRequestBody, tc)
	case errors.Is(err, vote.ErrNotFound):
		return api.respondWithError(err, "entity not found", values.NotFound, tc)
	case errors.Is(err, vote.ErrConflict):
		return api.respondWithError(err, "too many concurrent votes, try again", values.Conflict, tc)
	default:
		return api.respondWithError(err, "failed to record vote", values.Error, tc)
	}
}

func (api *API) GetUserReportVote(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	return api.getUserVote(r, vote.KindReport, "reportID")
}

func (api *API) GetUserCommentVote(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	return api.getUserVote(r, vote.KindComment, "commentID")
}

func (api *API) getUserVote(r *http.Request, kind vote.Kind, param string) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	entityID, err := util.StringToUUID(chi.URLParam(r, param))
	if err != nil {
		return api.respondWithError(err, "invalid entity ID", values.BadRequestBody, &tc)
	}
	userID, err := util.StringToUUID(r.URL.Query().Get("user_id"))
	if err != nil {
		return api.respondWithError(err, "invalid user ID", values.BadRequestBody, &tc)
	}

	ballot, err := api.GetUserVoteRepo(r.Context(), kind, entityID, userID)
	if err != nil {
		return api.respondWithError(err, "failed to get user vote", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Vote retrieved successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       model.UserVoteResponse{UserVote: ballot},
	}
}

func (api *API) GetUserReportVotesBatch(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	return api.getUserVotesBatch(r, vote.KindReport)
}

func (api *API) GetUserCommentVotesBatch(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	return api.getUserVotesBatch(r, vote.KindComment)
}

func (api *API) getUserVotesBatch(r *http.Request, kind vote.Kind) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.BatchVotesRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return api.respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return api.respondWithError(err, "validation failed", values.BadRequestBody, &tc)
	}

	votes, err := api.GetUserVotesBatchRepo(r.Context(), kind, req.EntityIDs, req.UserID)
	if err != nil {
		return api.respondWithError(err, "failed to get user votes", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Votes retrieved successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       map[string]map[uuid.UUID]int{"votes": votes},
	}
}
