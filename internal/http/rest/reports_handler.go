package rest

import (
	"net/http"

	"github.com/gitgud/citywatch/internal/model"
	"github.com/gitgud/citywatch/util"
	"github.com/gitgud/citywatch/util/tracing"
	"github.com/gitgud/citywatch/util/values"
	"github.com/go-chi/chi/v5"
)

func (api *API) ReportRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Method(http.MethodPost, "/", api.handle(api.CreateReport))
	mux.Method(http.MethodGet, "/", api.handle(api.GetAllReports))
	mux.Method(http.MethodPost, "/votes/batch", api.handle(api.GetUserReportVotesBatch))
	mux.Method(http.MethodGet, "/{reportID}", api.handle(api.GetReportByID))
	mux.Method(http.MethodPut, "/{reportID}", api.handle(api.UpdateReport))
	mux.Method(http.MethodDelete, "/{reportID}", api.handle(api.DeleteReport))
	mux.Method(http.MethodPost, "/{reportID}/votes", api.handle(api.VoteOnReport))
	mux.Method(http.MethodGet, "/{reportID}/votes", api.handle(api.GetUserReportVote))
	mux.Method(http.MethodPost, "/{reportID}/comments", api.handle(api.CommentOnReport))
	mux.Method(http.MethodGet, "/{reportID}/comments", api.handle(api.GetComments))
	mux.Method(http.MethodGet, "/{reportID}/comments/count", api.handle(api.GetCommentCount))

	return mux
}

func (api *API) CreateReport(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.CreateReportRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return api.respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}

	if err := util.ValidateStruct(req); err != nil {
		return api.respondWithError(err, "validation failed", values.BadRequestBody, &tc)
	}

	newReport, status, message, err := api.CreateReportHelper(r.Context(), req)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       newReport,
	}
}

func (api *API) GetAllReports(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	reports, status, message, err := api.GetAllReportsHelper(r.Context())
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}
	if reports == nil {
		reports = []model.Report{}
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       reports,
	}
}

func (api *API) GetReportByID(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	reportID, err := util.StringToUUID(chi.URLParam(r, "reportID"))
	if err != nil {
		return api.respondWithError(err, "invalid report ID", values.BadRequestBody, &tc)
	}

	report, status, message, err := api.GetReportByIDHelper(r.Context(), reportID)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       report,
	}
}

func (api *API) UpdateReport(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	reportID, err := util.StringToUUID(chi.URLParam(r, "reportID"))
	if err != nil {
		return api.respondWithError(err, "invalid report ID", values.BadRequestBody, &tc)
	}

	var req model.UpdateReportRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return api.respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}

	if err := util.ValidateStruct(req); err != nil {
		return api.respondWithError(err, "validation failed", values.BadRequestBody, &tc)
	}

	status, message, err := api.UpdateReportHelper(r.Context(), reportID, req)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
	}
}

func (api *API) DeleteReport(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	reportID, err := util.StringToUUID(chi.URLParam(r, "reportID"))
	if err != nil {
		return api.respondWithError(err, "invalid report ID", values.BadRequestBody, &tc)
	}

	userID, err := util.StringToUUID(r.URL.Query().Get("user_id"))
	if err != nil {
		return api.respondWithError(err, "invalid user ID", values.BadRequestBody, &tc)
	}

	status, message, err := api.DeleteReportHelper(r.Context(), reportID, userID)
	if err != nil {
		return api.respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
	}
}
