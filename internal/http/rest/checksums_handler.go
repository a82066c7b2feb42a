package rest

import (
	"net/http"

	"github.com/gitgud/citywatch/internal/checksum"
	"github.com/gitgud/citywatch/internal/model"
	"github.com/gitgud/citywatch/util"
	"github.com/gitgud/citywatch/util/tracing"
	"github.com/gitgud/citywatch/util/values"
	"github.com/go-chi/chi/v5"
)

func (api *API) ChecksumRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Method(http.MethodGet, "/", api.handle(api.GetChecksums))
	mux.Method(http.MethodGet, "/cache", api.handle(api.GetCacheChecksum))

	return mux
}

// GetChecksums serves the full checksum record. Clients compare each
// token with their stored copy and re-fetch only changed collections.
func (api *API) GetChecksums(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	record, err := api.Checksums.All(r.Context())
	if err != nil {
		return api.respondWithError(err, "failed to fetch checksums", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Checksums retrieved successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       record,
	}
}

// GetCacheChecksum computes a count + latest-timestamp probe on demand
// for one collection scope.
func (api *API) GetCacheChecksum(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var count int
	var latest int64
	var err error

	switch scope := r.URL.Query().Get("scope"); scope {
	case "reports":
		count, latest, err = api.Checksums.ReportSet(r.Context())
	case "comments":
		reportID, parseErr := util.StringToUUID(r.URL.Query().Get("report_id"))
		if parseErr != nil {
			return api.respondWithError(parseErr, "invalid or missing report_id for comments scope", values.BadRequestBody, &tc)
		}
		count, latest, err = api.Checksums.CommentSet(r.Context(), reportID)
	default:
		return api.respondWithError(nil, "invalid scope: use reports or comments", values.BadRequestBody, &tc)
	}
	if err != nil {
		return api.respondWithError(err, "failed to compute cache checksum", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Cache checksum computed successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data: model.CacheChecksum{
			Checksum:        checksum.CacheToken(count, latest),
			Count:           count,
			LatestTimestamp: latest,
		},
	}
}
